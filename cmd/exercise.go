package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joescharf/fitmin/internal/catalog"
	"github.com/joescharf/fitmin/internal/models"
	"github.com/joescharf/fitmin/internal/output"
)

var exerciseCategory string

var exerciseCmd = &cobra.Command{
	Use:     "exercise",
	Aliases: []string{"ex"},
	Short:   "Browse the exercise library",
}

var exerciseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List exercises, optionally filtered by category",
	RunE: func(cmd *cobra.Command, args []string) error {
		return exerciseListRun()
	},
}

var exerciseShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one exercise",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return exerciseShowRun(args[0])
	},
}

var exerciseDailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Show the featured exercise of the day",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := getCatalog()
		if err != nil {
			return err
		}
		ex, ok := cat.Daily()
		if !ok {
			return fmt.Errorf("exercise library is empty")
		}
		return exerciseShowRun(ex.ID)
	},
}

func init() {
	exerciseListCmd.Flags().StringVarP(&exerciseCategory, "category", "c", "all", "Category: all, abs, chest, legs, arms, full")
	exerciseCmd.AddCommand(exerciseListCmd)
	exerciseCmd.AddCommand(exerciseShowCmd)
	exerciseCmd.AddCommand(exerciseDailyCmd)
	rootCmd.AddCommand(exerciseCmd)
}

func exerciseListRun() error {
	cat, err := getCatalog()
	if err != nil {
		return err
	}
	category := models.Category(exerciseCategory)
	if category != "" && !category.Valid() {
		return fmt.Errorf("unknown category: %s", exerciseCategory)
	}

	exercises := cat.Filter(category)
	if len(exercises) == 0 {
		ui.Info("No exercises in %s", catalog.CategoryLabel(category))
		return nil
	}

	table := ui.Table([]string{"ID", "", "Name", "Category", "Target", "Intensity"})
	for _, ex := range exercises {
		_ = table.Append([]string{
			ex.ID,
			ex.Emoji,
			ex.Name,
			catalog.CategoryLabel(ex.Category),
			catalog.Badge(ex),
			output.IntensityColor(string(ex.Intensity), catalog.IntensityLabel(ex.Intensity)),
		})
	}
	return table.Render()
}

func exerciseShowRun(id string) error {
	cat, err := getCatalog()
	if err != nil {
		return err
	}
	ex, err := cat.Get(id)
	if err != nil {
		return err
	}

	fmt.Fprintf(ui.Out, "%s %s\n", ex.Emoji, output.Cyan(ex.Name))
	fmt.Fprintf(ui.Out, "  ID:        %s\n", ex.ID)
	fmt.Fprintf(ui.Out, "  Category:  %s\n", catalog.CategoryLabel(ex.Category))
	fmt.Fprintf(ui.Out, "  Target:    %s\n", catalog.Badge(ex))
	fmt.Fprintf(ui.Out, "  Intensity: %s\n", output.IntensityColor(string(ex.Intensity), catalog.IntensityLabel(ex.Intensity)))
	if ex.Description != "" {
		fmt.Fprintf(ui.Out, "\n  %s\n", ex.Description)
	}
	return nil
}
