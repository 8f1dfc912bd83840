// hfsurv fits Cox proportional-hazards models over the heart-failure cohort,
// discovers covariate transformations through the symbolic-regression
// service, and compares model discrimination by ROC/AUC.
//
// Usage:
//
//	hfsurv validate  --study <study.yaml> | --data <csv>
//	hfsurv fit       --study <study.yaml> [--covariates a,b,c] [--save]
//	hfsurv transform --study <study.yaml> -o <derived.csv>
//	hfsurv discover  --study <study.yaml> [--rounds n]
//	hfsurv evaluate  --study <study.yaml> [--covariates a,b,c] [--roc]
//	hfsurv compare   --study <study.yaml> [--save]
//	hfsurv runs      --study <study.yaml>
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hfsurv/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	logLevel  string
	logFormat string
}

var rootCmd = &cobra.Command{
	Use:   "hfsurv",
	Short: "Survival modeling for heart-failure mortality",
	Long: "hfsurv fits Cox proportional-hazards models on raw and transformed\n" +
		"covariate sets and compares their predictive discrimination.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		level, err := logging.ParseLevel(rootFlags.logLevel)
		if err != nil {
			return err
		}
		logging.Init(level, rootFlags.logFormat)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(fitCmd)
	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
