package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/customsgate/internal/catalog"
	"github.com/ppiankov/customsgate/internal/classify"
	"github.com/ppiankov/customsgate/internal/model"
	"github.com/ppiankov/customsgate/internal/protection"
)

var (
	singleMode  string
	singlePrice float64
)

// classifyCmd classifies one goods description
var classifyCmd = &cobra.Command{
	Use:   "classify <description>",
	Short: "Classify a single goods description",
	Long: `Classify prints the HS code the configured classifier assigns to a
goods description, the same way a run would.

Example:
  customsgate classify "mens cotton shirt"
  customsgate classify "20000mah power bank" --mode llm`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		if singleMode != "" {
			cfg.Classifier.Mode = singleMode
		}

		cat, err := catalog.Load(cfg.Catalog)
		if err != nil {
			return err
		}
		c, err := classify.New(cfg, cat)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		res := c.Classify(ctx, strings.ToLower(strings.Join(args, " ")))
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "HS code:     %s\n", res.Code)
		fmt.Fprintf(out, "Chapter:     %02d\n", classify.Chapter(res.Code))
		fmt.Fprintf(out, "Status:      %s\n", res.Status)
		fmt.Fprintf(out, "Classifier:  %s\n", c.Name())
		if res.Err != nil {
			fmt.Fprintf(out, "Error:       %v\n", res.Err)
		}
		return nil
	},
}

// riskCmd checks one goods description against the risk profiles
var riskCmd = &cobra.Command{
	Use:   "risk <description>",
	Short: "Check a single goods description against risk profiles",
	Long: `Risk prints the risk profiles that fire for a goods description at
the given normalized price.

Example:
  customsgate risk "kitchen knife set"
  customsgate risk "22k gold chain" --price 6200`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Load(viper.GetString("catalog"))
		if err != nil {
			return err
		}

		a := protection.NewEngine(cat.Profiles).Check(strings.ToLower(strings.Join(args, " ")), singlePrice)
		out := cmd.OutOrStdout()
		if len(a.Codes) == 0 {
			fmt.Fprintf(out, "✓ %s\n", model.NoRisk)
			return nil
		}
		for i, code := range a.Codes {
			fmt.Fprintf(out, "⚠️  %s  %s\n", code, a.Reasons[i])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(riskCmd)

	classifyCmd.Flags().StringVar(&singleMode, "mode", "", "classifier override: rules, remote or llm")
	riskCmd.Flags().Float64Var(&singlePrice, "price", 0, "normalized item price in AED")
}
