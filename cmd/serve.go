package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/fitmin/internal/api"
	"github.com/joescharf/fitmin/internal/workout"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the REST API",
	Long: `Start an HTTP server exposing stats, the exercise library, workout
sessions and the coach under /api/v1. By default it listens on port 8080.
Only one fitmin process may write stats at a time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveRun(cmd.Context())
	},
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a fitmin process holds the stats writer lock",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveStatusRun()
	},
}

func init() {
	serveCmd.AddCommand(serveStatusCmd)
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on")
	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
}

func serveRun(ctx context.Context) error {
	release, err := acquireWriter()
	if err != nil {
		return err
	}
	defer release()

	cat, err := getCatalog()
	if err != nil {
		return err
	}

	log := newLogger(slog.LevelInfo)
	agg := loadStats(ctx)
	workouts := workout.NewManager(agg, log)
	defer func() { _ = workouts.Close() }()

	srv := api.NewServer(cat, agg, workouts, newTranscript(ctx), log)

	addr := fmt.Sprintf(":%d", viper.GetInt("port"))
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, shutdownSignals()...)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()
	ui.Success("Serving API at http://localhost%s/api/v1", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	ui.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func serveStatusRun() error {
	l, err := writerLock()
	if err != nil {
		return err
	}
	pid, running := l.Holder()
	if !running {
		ui.Info("No fitmin process is writing stats")
		return nil
	}
	ui.Success("Stats writer running (PID %d)", pid)
	return nil
}
