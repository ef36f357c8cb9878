package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joescharf/fitmin/internal/models"
)

//go:embed exercises.yaml
var builtinYAML []byte

// ErrExerciseNotFound is returned by Get for unknown IDs.
var ErrExerciseNotFound = errors.New("exercise not found")

// Catalog is a read-only, ordered exercise library.
type Catalog struct {
	exercises []models.Exercise
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(builtinYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog from a YAML file. An empty path yields the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML exercise list.
func Parse(data []byte) (*Catalog, error) {
	var exercises []models.Exercise
	if err := yaml.Unmarshal(data, &exercises); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	seen := make(map[string]bool, len(exercises))
	for i, ex := range exercises {
		if ex.ID == "" {
			return nil, fmt.Errorf("exercise %d: missing id", i)
		}
		if seen[ex.ID] {
			return nil, fmt.Errorf("exercise %s: duplicate id", ex.ID)
		}
		seen[ex.ID] = true

		if ex.Category == models.CategoryAll || !ex.Category.Valid() {
			return nil, fmt.Errorf("exercise %s: invalid category %q", ex.ID, ex.Category)
		}
		if (ex.Duration > 0) == (ex.Reps > 0) {
			return nil, fmt.Errorf("exercise %s: exactly one of duration or reps must be set", ex.ID)
		}
		switch ex.Intensity {
		case models.IntensityEasy, models.IntensityMedium, models.IntensityHard:
		default:
			return nil, fmt.Errorf("exercise %s: invalid intensity %q", ex.ID, ex.Intensity)
		}
	}

	return &Catalog{exercises: exercises}, nil
}

// All returns every exercise in catalog order.
func (c *Catalog) All() []models.Exercise {
	return append([]models.Exercise(nil), c.exercises...)
}

// Filter returns the exercises in the given category. CategoryAll (or an
// empty category) returns the full list.
func (c *Catalog) Filter(cat models.Category) []models.Exercise {
	if cat == "" || cat == models.CategoryAll {
		return c.All()
	}
	var out []models.Exercise
	for _, ex := range c.exercises {
		if ex.Category == cat {
			out = append(out, ex)
		}
	}
	return out
}

// Get looks up an exercise by ID.
func (c *Catalog) Get(id string) (models.Exercise, error) {
	for _, ex := range c.exercises {
		if ex.ID == id {
			return ex, nil
		}
	}
	return models.Exercise{}, fmt.Errorf("%w: %s", ErrExerciseNotFound, id)
}

// Daily returns the exercise offered as the daily routine.
func (c *Catalog) Daily() (models.Exercise, bool) {
	if len(c.exercises) == 0 {
		return models.Exercise{}, false
	}
	return c.exercises[0], true
}
