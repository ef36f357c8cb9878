package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/fitmin/internal/catalog"
	"github.com/joescharf/fitmin/internal/lock"
	"github.com/joescharf/fitmin/internal/output"
	"github.com/joescharf/fitmin/internal/stats"
	"github.com/joescharf/fitmin/internal/store"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui        *output.UI
	dataStore store.Store

	verbose bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "fitmin",
	Short: "Home fitness tracker - timed workouts, activity stats and an AI coach",
	Long: `fitmin runs short no-equipment workouts from the terminal.
It counts down timed exercises, records completed sessions into a
rolling seven-day activity summary, and answers fitness questions
through an Arabic-speaking AI coach.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	defer closeStore()
	if err := rootCmd.Execute(); err != nil {
		closeStore()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return statsShowRun(cmd.Context())
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/fitmin/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "fitmin")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("FITMIN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	home, _ := os.UserHomeDir()
	setDefaults(filepath.Join(home, ".config", "fitmin"))

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

// setDefaults registers every config key's default relative to stateDir.
func setDefaults(stateDir string) {
	viper.SetDefault("state_dir", stateDir)
	viper.SetDefault("store.driver", store.DriverSQLite)
	viper.SetDefault("db_path", filepath.Join(stateDir, "fitmin.db"))
	viper.SetDefault("store.dsn", "")
	viper.SetDefault("catalog_path", "")
	viper.SetDefault("advice.provider", "gemini")
	viper.SetDefault("advice.timeout", "60s")
	viper.SetDefault("gemini.api_key", "")
	viper.SetDefault("gemini.model", "gemini-2.5-flash")
	viper.SetDefault("anthropic.api_key", "")
	viper.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	viper.SetDefault("port", 8080)
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(newLogger(level))

	// Store is opened lazily so config/version run without a database.
}

// newLogger returns a text logger on stderr. Verbose mode always wins.
func newLogger(level slog.Level) *slog.Logger {
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// getStore returns the shared store, initializing it on first call.
func getStore(ctx context.Context) (store.Store, error) {
	if dataStore != nil {
		return dataStore, nil
	}

	s, err := store.Open(ctx, store.Config{
		Driver: viper.GetString("store.driver"),
		Path:   viper.GetString("db_path"),
		DSN:    viper.GetString("store.dsn"),
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	dataStore = s
	return dataStore, nil
}

func closeStore() {
	if dataStore != nil {
		_ = dataStore.Close()
		dataStore = nil
	}
}

// loadStats reads the aggregate. An unavailable store degrades to the
// in-memory seed so the session still works.
func loadStats(ctx context.Context) *stats.Aggregator {
	s, err := getStore(ctx)
	if err != nil {
		slog.Warn("stats will not be saved", "error", err)
		return stats.Load(ctx, nil, slog.Default())
	}
	return stats.Load(ctx, s, slog.Default())
}

// getCatalog returns the exercise library, preferring catalog_path if set.
func getCatalog() (*catalog.Catalog, error) {
	path := viper.GetString("catalog_path")
	if path == "" {
		return catalog.Default(), nil
	}
	c, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return c, nil
}

// writerLock returns the lock that keeps one process writing stats.
func writerLock() (*lock.Lock, error) {
	dir := viper.GetString("state_dir")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return lock.New(filepath.Join(dir, "fitmin.pid")), nil
}

// acquireWriter takes the stats writer lock and returns its release func.
func acquireWriter() (func(), error) {
	l, err := writerLock()
	if err != nil {
		return nil, err
	}
	if err := l.Acquire(); err != nil {
		return nil, err
	}
	return func() {
		if err := l.Release(); err != nil {
			slog.Warn("failed to release writer lock", "error", err)
		}
	}, nil
}
