package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configForce bool

// configDirFunc returns the config directory path, replaceable in tests.
var configDirFunc = defaultConfigDir

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "fitmin"), nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Show or manage fitmin configuration.

Running bare 'fitmin config' is the same as 'fitmin config show'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with commented defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration with sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configEditRun()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

// configTemplate is the template for generating config.yaml with comments.
const configTemplate = `# fitmin configuration
# See: fitmin config show (for effective values and sources)

# State/data directory (default: ~/.config/fitmin)
# state_dir: {{ .StateDir }}

# SQLite database path (default: ~/.config/fitmin/fitmin.db)
# db_path: {{ .DBPath }}

# Exercise library override (YAML list; empty uses the built-in library)
catalog_path: "{{ .CatalogPath }}"

# Stats storage
store:
  # Backend: "sqlite" or "postgres"
  driver: "{{ .StoreDriver }}"

  # Postgres connection URL (postgres driver only)
  dsn: "{{ .StoreDSN }}"

# AI coach
advice:
  # Provider: "gemini" or "anthropic"
  provider: "{{ .AdviceProvider }}"

  # Per-request timeout
  timeout: "{{ .AdviceTimeout }}"

gemini:
  # API key (falls back to $GEMINI_API_KEY, then $GOOGLE_API_KEY)
  # api_key: ""
  model: "{{ .GeminiModel }}"

anthropic:
  # API key (falls back to $ANTHROPIC_API_KEY)
  # api_key: ""
  model: "{{ .AnthropicModel }}"

# REST API port for 'fitmin serve'
port: {{ .Port }}
`

type configTemplateData struct {
	StateDir       string
	DBPath         string
	CatalogPath    string
	StoreDriver    string
	StoreDSN       string
	AdviceProvider string
	AdviceTimeout  string
	GeminiModel    string
	AnthropicModel string
	Port           int
}

func configFilePath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func configInitRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if file already exists
	if _, err := os.Stat(cfgPath); err == nil {
		if !configForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cfgPath)
		}
		ui.Warning("Overwriting existing config file")
	}

	// Build template data from current viper values
	data := configTemplateData{
		StateDir:       viper.GetString("state_dir"),
		DBPath:         viper.GetString("db_path"),
		CatalogPath:    viper.GetString("catalog_path"),
		StoreDriver:    viper.GetString("store.driver"),
		StoreDSN:       viper.GetString("store.dsn"),
		AdviceProvider: viper.GetString("advice.provider"),
		AdviceTimeout:  viper.GetDuration("advice.timeout").String(),
		GeminiModel:    viper.GetString("gemini.model"),
		AnthropicModel: viper.GetString("anthropic.model"),
		Port:           viper.GetInt("port"),
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execute error: %w", err)
	}

	if dryRun {
		ui.DryRunMsg("Would create config file: %s", cfgPath)
		fmt.Fprintln(ui.Out)
		fmt.Fprint(ui.Out, buf.String())
		return nil
	}

	// Create config directory
	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	ui.Success("Config file created: %s", cfgPath)
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, buf.String())
	return nil
}

// configKeyInfo describes a config key for display purposes.
type configKeyInfo struct {
	Key    string
	EnvVar string
	Secret bool
}

var configKeys = []configKeyInfo{
	{Key: "state_dir", EnvVar: "FITMIN_STATE_DIR"},
	{Key: "db_path", EnvVar: "FITMIN_DB_PATH"},
	{Key: "catalog_path", EnvVar: "FITMIN_CATALOG_PATH"},
	{Key: "store.driver", EnvVar: "FITMIN_STORE_DRIVER"},
	{Key: "store.dsn", EnvVar: "FITMIN_STORE_DSN", Secret: true},
	{Key: "advice.provider", EnvVar: "FITMIN_ADVICE_PROVIDER"},
	{Key: "advice.timeout", EnvVar: "FITMIN_ADVICE_TIMEOUT"},
	{Key: "gemini.api_key", EnvVar: "FITMIN_GEMINI_API_KEY", Secret: true},
	{Key: "gemini.model", EnvVar: "FITMIN_GEMINI_MODEL"},
	{Key: "anthropic.api_key", EnvVar: "FITMIN_ANTHROPIC_API_KEY", Secret: true},
	{Key: "anthropic.model", EnvVar: "FITMIN_ANTHROPIC_MODEL"},
	{Key: "port", EnvVar: "FITMIN_PORT"},
}

func configShowRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if config file exists
	if _, err := os.Stat(cfgPath); err == nil {
		ui.Info("Config file: %s", cfgPath)
	} else {
		ui.Info("Config file: (none)")
	}
	fmt.Fprintln(ui.Out)

	// Read config file values to determine file source
	fileValues := readConfigFileValues(cfgPath)

	for _, k := range configKeys {
		val := viper.Get(k.Key)
		if k.Secret {
			val = maskSecret(viper.GetString(k.Key))
		}
		source := detectSource(k.Key, k.EnvVar, fileValues)
		fmt.Fprintf(ui.Out, "  %-22s %v  %s\n", k.Key, val, source)
	}

	return nil
}

// maskSecret hides all but the last four characters of a credential.
func maskSecret(v string) string {
	if v == "" {
		return ""
	}
	if len(v) <= 4 {
		return "****"
	}
	return "****" + v[len(v)-4:]
}

// readConfigFileValues reads the raw YAML file and returns a flat map of keys present in it.
func readConfigFileValues(path string) map[string]bool {
	result := make(map[string]bool)

	data, err := os.ReadFile(path)
	if err != nil {
		return result
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return result
	}

	// Flatten nested keys with dot notation
	flattenKeys("", parsed, result)
	return result
}

// flattenKeys recursively flattens a nested map to dot-notation keys.
func flattenKeys(prefix string, m map[string]any, result map[string]bool) {
	for key, val := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			flattenKeys(fullKey, nested, result)
		} else {
			result[fullKey] = true
		}
	}
}

// detectSource determines where a config value is coming from.
func detectSource(key, envVar string, fileValues map[string]bool) string {
	if _, ok := os.LookupEnv(envVar); ok {
		return fmt.Sprintf("(env: %s)", envVar)
	}
	if fileValues[key] {
		return "(file)"
	}
	return "(default)"
}

func configEditRun() error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		return fmt.Errorf("$EDITOR is not set; set it to your preferred editor (e.g. export EDITOR=vim)")
	}

	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s (run 'fitmin config init' first)", cfgPath)
	}

	if dryRun {
		ui.DryRunMsg("Would open %s in %s", cfgPath, editor)
		return nil
	}

	editCmd := exec.Command(editor, cfgPath)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	return editCmd.Run()
}
