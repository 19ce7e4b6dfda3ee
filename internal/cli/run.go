package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/customsgate/internal/catalog"
	"github.com/ppiankov/customsgate/internal/classify"
	"github.com/ppiankov/customsgate/internal/metrics"
	"github.com/ppiankov/customsgate/internal/model"
	"github.com/ppiankov/customsgate/internal/pipeline"
)

var (
	ordersPath string
	tariffPath string
	runTimeout time.Duration
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process an order export through all four stages",
	Long: `Run reads an order export and a tariff table and writes:
- customs_processing_results.csv   every item with its stage results
- customs_processing_results.json  per-order rollup
- processing_summary.json          per-stage statistics
- high_priority_alerts.csv         revenue risks, flagged goods, unclassified items

A missing input file or required column aborts the run before any
output is written. Unparsable rows are excluded and counted.

Example:
  customsgate run --orders orders.csv --tariff tariff.csv
  customsgate run --orders orders.csv --tariff tariff.csv --output-dir ./out --workers 8
  customsgate run --orders orders.csv --tariff tariff.csv --classifier remote --classifier-url https://hs.example.com/predict`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.StringVar(&ordersPath, "orders", "", "order export CSV (required)")
	f.StringVar(&tariffPath, "tariff", "", "tariff table CSV (required)")
	f.DurationVar(&runTimeout, "timeout", 30*time.Minute, "overall run timeout")
	_ = runCmd.MarkFlagRequired("orders")
	_ = runCmd.MarkFlagRequired("tariff")

	f.String("output-dir", "", "output directory")
	f.Int("workers", 0, "concurrent classification workers")
	f.Float64("rate", 0, "INR to AED conversion rate")
	f.Float64("threshold", 0, "de-minimis threshold in AED")
	f.Float64("default-duty-rate", 0, "fallback duty rate as a fraction")
	f.String("duty-gate", "", "duty gate: daily_total or revenue_risk")
	f.String("catalog", "", "rule catalog override (YAML)")
	f.String("metrics-file", "", "write Prometheus textfile metrics here")
	f.String("classifier", "", "classifier: rules, remote or llm")
	f.String("classifier-url", "", "remote classification service URL")
	f.Bool("no-cache", false, "disable caching of remote classifications")
	f.String("llm-provider", "", "LLM provider (openai, ollama)")
	f.String("llm-model", "", "LLM model name")

	bindFlag("output.dir", "output-dir")
	bindFlag("workers", "workers")
	bindFlag("conversion_rate", "rate")
	bindFlag("de_minimis_threshold", "threshold")
	bindFlag("default_duty_rate", "default-duty-rate")
	bindFlag("duty_gate", "duty-gate")
	bindFlag("catalog", "catalog")
	bindFlag("output.metrics_file", "metrics-file")
	bindFlag("classifier.mode", "classifier")
	bindFlag("classifier.url", "classifier-url")
	bindFlag("llm.provider", "llm-provider")
	bindFlag("llm.model", "llm-model")
}

// bindFlag binds a run flag to a config key; unset flags leave the key alone
func bindFlag(key, flag string) {
	_ = viper.BindPFlag(key, runCmd.Flags().Lookup(flag))
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Classifier.Cache = false
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	errOut := cmd.ErrOrStderr()
	fmt.Fprintf(errOut, "\n")
	fmt.Fprintf(errOut, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(errOut, "  customsgate run\n")
	fmt.Fprintf(errOut, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(errOut, "\n")
	fmt.Fprintf(errOut, "  Orders:       %s\n", ordersPath)
	fmt.Fprintf(errOut, "  Tariff:       %s\n", tariffPath)
	fmt.Fprintf(errOut, "  Classifier:   %s\n", cfg.Classifier.Mode)
	fmt.Fprintf(errOut, "  Threshold:    %g AED (gate: %s)\n", cfg.DeMinimisThreshold, cfg.DutyGate)
	fmt.Fprintf(errOut, "  Workers:      %d\n", cfg.Workers)
	fmt.Fprintf(errOut, "  Output dir:   %s\n", cfg.Output.Dir)
	fmt.Fprintf(errOut, "\n")

	cat, err := catalog.Load(cfg.Catalog)
	if err != nil {
		return err
	}

	classifier, err := classify.New(cfg, cat)
	if err != nil {
		return err
	}

	m := metrics.New()
	p := pipeline.New(cfg, cat, classifier, m)

	result, err := p.RunFiles(ctx, ordersPath, tariffPath)
	if err != nil {
		if model.IsFatal(err) {
			return fmt.Errorf("run aborted, no output written: %w", err)
		}
		return fmt.Errorf("run failed: %w", err)
	}

	for _, perr := range result.Excluded {
		slog.Debug("row excluded", "row", perr.Row, "column", perr.Column, "value", perr.Value)
	}

	start := time.Now()
	paths, err := pipeline.NewRenderer(cfg.Output.Dir).RenderAll(result)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	m.ObserveStage("render", time.Since(start))

	if cfg.Output.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.Output.MetricsFile); err != nil {
			slog.Warn("cannot write metrics file", "path", cfg.Output.MetricsFile, "error", err)
		} else {
			paths = append(paths, cfg.Output.MetricsFile)
		}
	}

	pipeline.PrintBanner(errOut, result.Summary, paths)
	return nil
}
