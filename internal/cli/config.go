package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/customsgate/internal/catalog"
	"github.com/ppiankov/customsgate/internal/model"
)

// setDefaults registers every config key so env overrides apply to all
func setDefaults(v *viper.Viper) {
	d := model.DefaultConfig()

	v.SetDefault("conversion_rate", d.ConversionRate)
	v.SetDefault("de_minimis_threshold", d.DeMinimisThreshold)
	v.SetDefault("default_duty_rate", d.DefaultDutyRate)
	v.SetDefault("duty_gate", d.DutyGate)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("catalog", d.Catalog)

	v.SetDefault("classifier.mode", d.Classifier.Mode)
	v.SetDefault("classifier.url", d.Classifier.URL)
	v.SetDefault("classifier.auth_header", d.Classifier.AuthHeader)
	v.SetDefault("classifier.timeout", d.Classifier.Timeout)
	v.SetDefault("classifier.requests_per_second", d.Classifier.RequestsPerSecond)
	v.SetDefault("classifier.burst", d.Classifier.Burst)
	v.SetDefault("classifier.cache", d.Classifier.Cache)
	v.SetDefault("classifier.cache_dir", d.Classifier.CacheDir)
	v.SetDefault("classifier.cache_ttl", d.Classifier.CacheTTL)
	v.SetDefault("classifier.http_proxy", d.Classifier.HTTPProxy)
	v.SetDefault("classifier.https_proxy", d.Classifier.HTTPSProxy)
	v.SetDefault("classifier.no_proxy", d.Classifier.NoProxy)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)

	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.metrics_file", d.Output.MetricsFile)
	v.SetDefault("output.verbose", d.Output.Verbose)
}

// loadConfig resolves the effective configuration from defaults, config
// file, environment and bound flags
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Provider keys follow the usual vendor variables when not configured
	if cfg.LLM.APIKey == "" && cfg.LLM.Provider == "openai" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.LLM.BaseURL == "" && cfg.LLM.Provider == "ollama" {
		cfg.LLM.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *model.Config) error {
	if cfg.ConversionRate <= 0 {
		return fmt.Errorf("conversion_rate must be positive, got %g", cfg.ConversionRate)
	}
	if cfg.DeMinimisThreshold < 0 {
		return fmt.Errorf("de_minimis_threshold must not be negative, got %g", cfg.DeMinimisThreshold)
	}
	if cfg.DefaultDutyRate < 0 || cfg.DefaultDutyRate > 1 {
		return fmt.Errorf("default_duty_rate must be a fraction between 0 and 1, got %g", cfg.DefaultDutyRate)
	}
	switch cfg.DutyGate {
	case model.DutyGateDailyTotal, model.DutyGateRevenueRisk:
	default:
		return fmt.Errorf("unknown duty_gate: %s (supported: %s, %s)", cfg.DutyGate, model.DutyGateDailyTotal, model.DutyGateRevenueRisk)
	}
	if cfg.Classifier.Mode == model.ClassifierRemote && cfg.Classifier.URL == "" {
		return fmt.Errorf("classifier.url is required in remote mode")
	}
	return nil
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage customsgate configuration",
	Long: `Manage customsgate configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (CUSTOMSGATE_*)
3. Config file (~/.customsgate/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after applying defaults, config file and environment variables. Secrets are never printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(out, "  Current Configuration")
		fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(out)

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
		fmt.Fprintln(out, string(yamlData))

		fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Configuration hierarchy (highest to lowest priority):")
		fmt.Fprintln(out, "  1. CLI flags")
		fmt.Fprintln(out, "  2. Environment variables (CUSTOMSGATE_*, OPENAI_API_KEY, OLLAMA_BASE_URL)")
		fmt.Fprintln(out, "  3. Config file (~/.customsgate/config.yaml)")
		fmt.Fprintln(out, "  4. Defaults")
		fmt.Fprintln(out)

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.customsgate/config.yaml with all available options.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error finding home directory: %w", err)
		}

		configPath := filepath.Join(home, ".customsgate", "config.yaml")
		if err := writeDefaultConfig(configPath); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Created default configuration: %s\n", configPath)
		fmt.Fprintf(out, "\nTo view the configuration:\n")
		fmt.Fprintf(out, "  customsgate config show\n")
		fmt.Fprintf(out, "\nTo customize, edit the file with your preferred editor:\n")
		fmt.Fprintf(out, "  $EDITOR %s\n\n", configPath)
		return nil
	},
}

// writeDefaultConfig writes the documented defaults, refusing to
// overwrite an existing file
func writeDefaultConfig(configPath string) (err error) {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s\nUse 'customsgate config show' to view it, or delete it first to recreate", configPath)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close config file: %w", closeErr)
		}
	}()

	printf := func(format string, a ...interface{}) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(f, format, a...)
	}

	printf("# customsgate configuration file\n")
	printf("#\n")
	printf("# Configuration hierarchy (highest to lowest priority):\n")
	printf("#   1. CLI flags\n")
	printf("#   2. Environment variables (CUSTOMSGATE_*)\n")
	printf("#   3. This config file\n")
	printf("#   4. Built-in defaults\n\n")

	yamlData, mErr := yaml.Marshal(model.DefaultConfig())
	if mErr != nil {
		return fmt.Errorf("error marshaling config: %w", mErr)
	}
	printf("%s", yamlData)

	printf("\n# Secrets are read from the environment only:\n")
	printf("#   export CUSTOMSGATE_CLASSIFIER_AUTH_HEADER='Bearer ...'\n")
	printf("#   export OPENAI_API_KEY=sk-...\n")
	printf("#   export OLLAMA_BASE_URL=http://localhost:11434\n")

	return err
}

var catalogPath string

var configCatalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the rule catalog as YAML",
	Long: `Print the classification rules and risk profiles in effect.

The output is a valid catalog file: edit it and pass it back with
--catalog (or the "catalog" config key) to override either section.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := catalogPath
		if path == "" {
			path = viper.GetString("catalog")
		}
		cat, err := catalog.Load(path)
		if err != nil {
			return err
		}
		return cat.Dump(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configCatalogCmd)

	configCatalogCmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog override file to load")
}
