package models

// Category groups exercises by the body area they target.
type Category string

const (
	CategoryAll   Category = "all"
	CategoryAbs   Category = "abs"
	CategoryChest Category = "chest"
	CategoryLegs  Category = "legs"
	CategoryArms  Category = "arms"
	CategoryFull  Category = "full"
)

// Categories is the fixed category taxonomy in display order.
var Categories = []Category{CategoryAll, CategoryAbs, CategoryChest, CategoryLegs, CategoryArms, CategoryFull}

// Valid reports whether c is part of the taxonomy.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Intensity is the difficulty tier of an exercise.
type Intensity string

const (
	IntensityEasy   Intensity = "easy"
	IntensityMedium Intensity = "medium"
	IntensityHard   Intensity = "hard"
)

// Exercise is an immutable catalog entry. Exactly one of Duration (seconds)
// or Reps is meaningful.
type Exercise struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Category    Category  `json:"category" yaml:"category"`
	Duration    int       `json:"duration,omitempty" yaml:"duration,omitempty"`
	Reps        int       `json:"reps,omitempty" yaml:"reps,omitempty"`
	Emoji       string    `json:"emoji" yaml:"emoji"`
	Intensity   Intensity `json:"intensity" yaml:"intensity"`
	Description string    `json:"description" yaml:"description"`
}

// Timed reports whether the exercise is measured by a countdown.
func (e *Exercise) Timed() bool {
	return e.Duration > 0
}
