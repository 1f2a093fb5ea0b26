// Command carbonctl runs the carbon pipeline from the command line.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/carbovista/backend/internal/config"
	"github.com/carbovista/backend/internal/logging"
)

var (
	// Global flags
	verbose    bool
	modelPath  string
	imageryURL string
	timeout    time.Duration

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "carbonctl",
	Short: "Estimate above-ground tree carbon from Sentinel-2 imagery",
	Long: `carbonctl runs the CarboVista carbon pipeline without the HTTP server.

It validates an area of interest, samples imagery (the remote imagery service
when IMAGERY_SERVICE_URL is set, synthetic pixels otherwise), predicts per-pixel
carbon with the configured model and prints the summary as JSON.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, _ = config.Load()
		if modelPath != "" {
			cfg.ModelPath = modelPath
		}
		if imageryURL != "" {
			cfg.ImageryServiceURL = imageryURL
		}

		level := "warn"
		if verbose {
			level = "debug"
		}
		var err error
		logger, err = logging.New(true, level)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&modelPath, "model", "", "model artifact path (overrides MODEL_PATH)")
	rootCmd.PersistentFlags().StringVar(&imageryURL, "imagery-url", "", "imagery service URL (overrides IMAGERY_SERVICE_URL)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 3*time.Minute, "overall operation timeout")

	rootCmd.AddCommand(analyzeCmd, predictCmd, validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
