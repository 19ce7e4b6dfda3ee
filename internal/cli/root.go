package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// Version is the release of the binary
const Version = "v0.3.0"

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "customsgate",
	Short: "customsgate - four-stage customs screening for e-commerce imports",
	Long: `customsgate screens e-commerce order exports for a border authority.

Every declared line item passes four stages:
  L1 Identity     same-day orders by one importer are aggregated to expose split shipments
  L2 Classify     each item gets a six-digit HS code (rules, remote service or LLM)
  L3 Valuation    duty is owed only when the importer-day exceeds the de-minimis threshold
  L4 Protection   dangerous and controlled goods are flagged for inspection

A run is a deterministic batch transform: the same inputs and settings
always produce byte-identical outputs.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "customsgate %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.customsgate/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			slog.Warn("cannot find home directory", "error", err)
		} else {
			viper.AddConfigPath(filepath.Join(home, ".customsgate"))
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// CUSTOMSGATE_CLASSIFIER_URL overrides classifier.url
	viper.SetEnvPrefix("CUSTOMSGATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// initLogging installs the process-wide structured logger on stderr
func initLogging() {
	level := slog.LevelInfo
	if verbose || viper.GetBool("output.verbose") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
