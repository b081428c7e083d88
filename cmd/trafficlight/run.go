package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/anggasct/moore"
	"github.com/anggasct/moore/pkg/config"
	"github.com/anggasct/moore/pkg/observers"
	"github.com/anggasct/moore/pkg/ports/gpio"
	"github.com/anggasct/moore/pkg/ports/serial"
	"github.com/anggasct/moore/pkg/ports/sim"
)

type runOptions struct {
	backend string
	entry   string
	steps   uint64
	tick    time.Duration
	script  []int
	quiet   bool
}

func newRunCmd(a *app) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the controller",
		Long:  "Run the control loop against the simulated intersection, GPIO lines or a serial IO expander until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.backend, "backend", "b", "", "IO backend (sim, gpio, serial)")
	flags.StringVarP(&opts.entry, "entry", "e", "", "entry state name or short code")
	flags.Uint64VarP(&opts.steps, "steps", "n", 0, "stop after this many steps (0 runs forever)")
	flags.DurationVar(&opts.tick, "tick", 0, "timer tick length")
	flags.IntSliceVar(&opts.script, "script", nil, "sim: raw sensor readings replayed in order")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "sim: do not draw the intersection")
	return cmd
}

func (a *app) run(cmd *cobra.Command, opts *runOptions) error {
	cfg := a.cfg
	if opts.backend != "" {
		cfg.Backend = config.Backend(opts.backend)
	}
	if opts.tick > 0 {
		cfg.Tick = opts.tick
	}
	if len(opts.script) > 0 {
		cfg.Sim.Script = cfg.Sim.Script[:0]
		for _, r := range opts.script {
			if r < 0 || r > 0xFF {
				return fmt.Errorf("script reading %d does not fit a byte", r)
			}
			cfg.Sim.Script = append(cfg.Sim.Script, uint8(r))
		}
	}
	if opts.quiet {
		cfg.Sim.Render = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	table, entry, err := a.table()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("entry") {
		if entry, err = moore.ParseStateID(opts.entry); err != nil {
			return err
		}
	}

	port, closePort, err := openPort(cfg, a.stdout, a.logger)
	if err != nil {
		return err
	}
	defer closePort()

	metrics := observers.NewMetricsObserver()
	engine, err := moore.NewEngine(table, port, moore.NewSleepTimer(cfg.Tick),
		moore.WithInitialState(entry),
		moore.WithLogger(a.logger),
		moore.WithMaxSteps(opts.steps),
		moore.WithObserver(observers.NewLoggingObserver(a.logger, observers.LogInfo)),
		moore.WithObserver(metrics),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = engine.Run(ctx)
	printSummary(a.stdout, metrics)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// openPort builds the IO port for the configured backend
func openPort(cfg *config.Config, stdout io.Writer, logger *slog.Logger) (moore.IOPort, func(), error) {
	switch cfg.Backend {
	case config.BackendGPIO:
		p, err := gpio.Open(cfg.GPIOPins())
		if err != nil {
			return nil, nil, err
		}
		return p, closeLogged(logger, string(cfg.Backend), p), nil
	case config.BackendSerial:
		p, err := serial.Open(cfg.SerialPort())
		if err != nil {
			return nil, nil, err
		}
		return p, closeLogged(logger, string(cfg.Backend), p), nil
	default:
		opts := []sim.Option{sim.WithScript(cfg.Sim.Script...)}
		if cfg.Sim.Render {
			opts = append(opts, sim.WithRenderer(stdout))
		}
		return sim.NewIntersection(opts...), func() {}, nil
	}
}

// closeLogged releases a port. A failed close may leave lamps lit, so it
// is logged as an error.
func closeLogged(logger *slog.Logger, backend string, c io.Closer) func() {
	return func() {
		if err := c.Close(); err != nil {
			logger.Error("failed to release port, outputs may still be driven", "backend", backend, "error", err)
		}
	}
}

func printSummary(w io.Writer, metrics *observers.MetricsObserver) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "STATE\tVISITS\tTICKS\n")
	for _, row := range metrics.Summary() {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", row.State.Code(), row.Visits, row.Ticks)
	}
	fmt.Fprintf(tw, "steps\t%d\t\n", metrics.GetStepCount())
	tw.Flush()
}
