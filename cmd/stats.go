package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joescharf/fitmin/internal/models"
	"github.com/joescharf/fitmin/internal/output"
)

const historyBarWidth = 20

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show activity stats",
	Long: `Show the streak, workout and minute totals, and the last seven days
of activity. Running bare 'fitmin' is the same as 'fitmin stats'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statsShowRun(cmd.Context())
	},
}

var statsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the initial stats snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return statsResetRun(cmd.Context())
	},
}

func init() {
	statsCmd.AddCommand(statsResetCmd)
	rootCmd.AddCommand(statsCmd)
}

func statsShowRun(ctx context.Context) error {
	renderStats(ui, loadStats(ctx).Snapshot())
	return nil
}

func statsResetRun(ctx context.Context) error {
	if dryRun {
		ui.DryRunMsg("Would reset stats to the initial snapshot")
		return nil
	}

	release, err := acquireWriter()
	if err != nil {
		return err
	}
	defer release()

	st, err := loadStats(ctx).Reset(ctx)
	if err != nil {
		return fmt.Errorf("save stats: %w", err)
	}
	ui.Success("Stats reset")
	renderStats(ui, st)
	return nil
}

// renderStats prints the summary table followed by the weekly bars.
func renderStats(u *output.UI, st models.Stats) {
	table := u.Table([]string{"Streak", "Workouts", "Minutes"})
	_ = table.Append([]string{
		output.Cyan(strconv.Itoa(st.Streak)),
		strconv.Itoa(st.TotalWorkouts),
		strconv.Itoa(st.TotalMinutes),
	})
	_ = table.Render()
	fmt.Fprintln(u.Out)

	labels := make([]string, len(st.History))
	values := make([]float64, len(st.History))
	for i, p := range st.History {
		labels[i] = p.Date
		values[i] = p.Value
	}
	_ = u.History(labels, values, historyBarWidth)
}
