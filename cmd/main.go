package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"studentperf/config"
	"studentperf/logger"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath   string
	artifactPath string
	verbose      bool

	config *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "studentperf",
		Short: "Predict a student's performance cluster from a trained model artifact",
		Long: `studentperf serves a form that asks for a student's background and grade
points and shows the predicted performance cluster (Rendah, Sedang, Tinggi).

The model artifact is produced by the training script; this tool only loads it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "config.yaml", "Config file (missing file means defaults)")
	root.PersistentFlags().StringVarP(&a.artifactPath, "artifact", "a", "", "Model artifact path (overrides config)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newPredictCmd(a))
	root.AddCommand(newInspectCmd(a))
	root.AddCommand(newHistoryCmd(a))
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.artifactPath != "" {
		cfg.Artifact.Path = a.artifactPath
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.config = cfg
	a.logger = log
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
