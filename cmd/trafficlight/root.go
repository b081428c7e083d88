package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/anggasct/moore"
	"github.com/anggasct/moore/pkg/config"
)

// app carries state shared by the subcommands
type app struct {
	configPath string
	logLevel   string
	logFormat  string
	tablePath  string

	cfg    *config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:          "trafficlight",
		Short:        "Table-driven traffic light controller",
		Long:         "Drive a two-road intersection with a pedestrian crossing from a Moore state table.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&a.logFormat, "log-format", "", "log format (text, json)")
	flags.StringVarP(&a.tablePath, "table", "t", "", "YAML transition table, overrides the config")

	rootCmd.AddCommand(
		newRunCmd(a),
		newTableCmd(a),
		newCheckCmd(a),
		newDotCmd(a),
	)
	return rootCmd
}

// load reads the config file and applies flag overrides
func (a *app) load(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(a.configPath); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}
	if a.tablePath != "" {
		cfg.TableFile = a.tablePath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = cfg.NewLogger(a.stderr)
	return nil
}

// table returns the configured table with its entry state
func (a *app) table() (*moore.Table, moore.StateID, error) {
	return a.cfg.Table()
}
