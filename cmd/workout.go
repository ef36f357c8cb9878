package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/fitmin/internal/catalog"
	"github.com/joescharf/fitmin/internal/models"
	"github.com/joescharf/fitmin/internal/output"
	"github.com/joescharf/fitmin/internal/stats"
	"github.com/joescharf/fitmin/internal/workout"
)

const progressBarWidth = 24

var workoutCmd = &cobra.Command{
	Use:   "workout [exercise-id]",
	Short: "Run a workout session",
	Long: `Run one exercise. Without an ID the daily featured exercise is used.

Timed exercises count down automatically; rep-based ones wait for you.
Type a key and press Enter:

  p  pause / resume the countdown
  f  finish now and record the workout
  q  quit without recording`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id string
		if len(args) > 0 {
			id = args[0]
		}
		return workoutRun(cmd.Context(), id, os.Stdin)
	},
}

func init() {
	rootCmd.AddCommand(workoutCmd)
}

// completionRecorder records into the aggregator and hands the new stats to
// the waiting command.
type completionRecorder struct {
	agg      *stats.Aggregator
	recorded chan models.Stats
}

func (r *completionRecorder) RecordCompletion(ctx context.Context, minutes float64) (models.Stats, error) {
	st, err := r.agg.RecordCompletion(ctx, minutes)
	select {
	case r.recorded <- st:
	default:
	}
	return st, err
}

// progressPrinter serializes progress lines from the cadence goroutine with
// the command loop.
type progressPrinter struct {
	mu  sync.Mutex
	out io.Writer
}

func (p *progressPrinter) print(snap workout.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "\r\033[K%s", progressLine(snap))
}

func (p *progressPrinter) newline() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out)
}

// progressLine renders one status line for the session.
func progressLine(snap workout.Snapshot) string {
	if snap.Mode == workout.ModeReps {
		return fmt.Sprintf("  %s  %s", catalog.Badge(snap.Exercise), output.StateColor(string(snap.State)))
	}
	clock := fmt.Sprintf("%02d:%02d", snap.Remaining/60, snap.Remaining%60)
	line := fmt.Sprintf("  %s %s %3.0f%%", clock, output.ProgressBar(snap.Progress/100, progressBarWidth), snap.Progress)
	if snap.State != workout.StateRunning {
		line += "  " + output.StateColor(string(snap.State))
	}
	return line
}

// readCommands streams trimmed input lines until EOF.
func readCommands(in io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			ch <- strings.ToLower(strings.TrimSpace(sc.Text()))
		}
	}()
	return ch
}

func workoutRun(ctx context.Context, id string, in io.Reader) error {
	cat, err := getCatalog()
	if err != nil {
		return err
	}

	var ex models.Exercise
	if id == "" {
		var ok bool
		if ex, ok = cat.Daily(); !ok {
			return fmt.Errorf("exercise library is empty")
		}
	} else if ex, err = cat.Get(id); err != nil {
		return err
	}

	release, err := acquireWriter()
	if err != nil {
		return err
	}
	defer release()

	printer := &progressPrinter{out: ui.Out}
	rec := &completionRecorder{agg: loadStats(ctx), recorded: make(chan models.Stats, 1)}
	mgr := workout.NewManager(rec, slog.Default(), workout.WithTickHook(printer.print))

	sess, err := mgr.Start(ex)
	if err != nil {
		return err
	}
	defer func() { _ = mgr.Close() }()

	fmt.Fprintf(ui.Out, "%s %s  (%s)\n", ex.Emoji, output.Cyan(ex.Name), catalog.Badge(ex))
	fmt.Fprintln(ui.Out, "  [p] pause/resume  [f] finish  [q] quit")
	printer.print(sess.Snapshot())

	ctx, stop := signal.NotifyContext(ctx, shutdownSignals()...)
	defer stop()

	cmds := readCommands(in)
	for {
		select {
		case <-sess.Done():
			printer.newline()
			return workoutDone(sess, rec)

		case <-ctx.Done():
			printer.newline()
			ui.Warning("Workout abandoned")
			return nil

		case key, ok := <-cmds:
			if !ok {
				cmds = nil
				// Without input a rep-based session can never finish.
				if sess.State() == workout.StateActive {
					printer.newline()
					ui.Warning("Input closed; workout abandoned")
					return nil
				}
				continue
			}
			switch key {
			case "p":
				sess.TogglePause()
				printer.print(sess.Snapshot())
			case "f":
				sess.Finish()
			case "q":
				printer.newline()
				ui.Warning("Workout closed without recording")
				return nil
			case "":
			default:
				printer.newline()
				ui.Warning("Unknown key %q (use p, f or q)", key)
			}
		}
	}
}

// workoutDone reports a finished session once its stats are recorded.
func workoutDone(sess *workout.Session, rec *completionRecorder) error {
	snap := sess.Snapshot()
	if snap.State != workout.StateFinished {
		return nil
	}

	ui.Success("%s", catalog.CompletionMessage)
	ui.Info("+%g min", snap.Minutes)

	select {
	case st := <-rec.recorded:
		fmt.Fprintln(ui.Out)
		renderStats(ui, st)
	case <-time.After(2 * time.Second):
		ui.Warning("Stats update is taking longer than expected")
	}
	return nil
}
