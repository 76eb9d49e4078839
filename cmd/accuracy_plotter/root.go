package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"github.com/user/accuracy_plotter_go/internal/config"
	"github.com/user/accuracy_plotter_go/internal/logging"
)

func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "accuracy_plotter",
		Short: "Plot mean accuracy per neuron count and threshold method for each dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			if err := logging.Init(cfg.LogLevel, cfg.LogFile); err != nil {
				return err
			}
			defer logging.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return NewApp(cfg, cmd.OutOrStdout()).Run(ctx)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			if cfg.ConfigPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "config file: %s\n", cfg.ConfigPath)
			}
			pp.ColoringEnabled = !color.NoColor
			_, err = pp.Fprintln(cmd.OutOrStdout(), cfg)
			return err
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default ./accuracy_plotter.yaml if present)")
	flags.String("input-dir", ".", "directory holding the result files")
	flags.String("output-dir", ".", "directory the charts are written to")
	flags.String("filename-template", config.DefaultFilenameTemplate, "result file name, {method} and {dataset} are substituted")
	flags.StringP("format", "f", "png", "chart format: png, pdf or svg")
	flags.StringSlice("datasets", config.DefaultDatasets, "datasets to plot, in order")
	flags.Float64("width", 12, "chart width in inches")
	flags.Float64("height", 7, "chart height in inches")
	flags.String("report", "", "also write a PDF report with every chart to this path")
	flags.Bool("summary", true, "print a summary table of every series")
	flags.Bool("fail-fast", false, "stop at the first dataset that fails")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-file", "", "append log output to this file")

	rootCmd.AddCommand(configCmd)
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
