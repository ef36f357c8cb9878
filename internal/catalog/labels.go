package catalog

import (
	"fmt"

	"github.com/joescharf/fitmin/internal/models"
)

var categoryLabels = map[models.Category]string{
	models.CategoryAll:   "الكل",
	models.CategoryAbs:   "البطن",
	models.CategoryChest: "الصدر",
	models.CategoryLegs:  "الساقين",
	models.CategoryArms:  "الذراعين",
	models.CategoryFull:  "كامل الجسم",
}

var intensityLabels = map[models.Intensity]string{
	models.IntensityEasy:   "سهل",
	models.IntensityMedium: "متوسط",
	models.IntensityHard:   "صعب",
}

// CategoryLabel returns the display label for a category.
func CategoryLabel(c models.Category) string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// IntensityLabel returns the display label for an intensity tier.
func IntensityLabel(i models.Intensity) string {
	if l, ok := intensityLabels[i]; ok {
		return l
	}
	return string(i)
}

// Badge renders the short measure shown next to an exercise: seconds for
// timed exercises, repetitions otherwise.
func Badge(ex models.Exercise) string {
	if ex.Timed() {
		return fmt.Sprintf("%dث", ex.Duration)
	}
	return fmt.Sprintf("%dت", ex.Reps)
}

// CompletionMessage is shown when a workout finishes.
const CompletionMessage = "عمل رائع! تم الإنجاز 🔥"
