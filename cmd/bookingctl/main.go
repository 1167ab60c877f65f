package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-booking-client/client"
	"github.com/jrsteele09/go-booking-client/internal/config"
	"github.com/jrsteele09/go-booking-client/session"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	a := &app{stdout: stdout, stderr: stderr}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(context.Background())
	if cerr := a.teardown(); err == nil {
		err = cerr
	}
	return err
}

// app is the state shared by every command of one invocation.
type app struct {
	configPath string
	verbose    bool
	jsonOutput bool
	timeout    time.Duration

	stdout io.Writer
	stderr io.Writer

	cfg    config.Config
	logger zerolog.Logger
	client *client.Client
	route  session.Route
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "bookingctl.yaml"
	}
	return filepath.Join(home, ".bookingctl", "config.yaml")
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "bookingctl",
		Short: "Command line client for the event booking API",
		Long: `bookingctl signs in to the event booking API, browses events and
manages bookings and profile details.

The session token is kept in the configured credential store (a YAML file
by default) so later invocations stay signed in.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			displayAppname(cmd.OutOrStdout(), a.cfg.GetAppName())
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", defaultConfigPath(), "Config file (YAML)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "Print results as JSON")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 30*time.Second, "Overall command timeout")

	root.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newEventsCmd(a),
		newEventCmd(a),
		newBookingsCmd(a),
		newBookCmd(a),
		newProfileCmd(a),
		newPaymentInfoCmd(a),
		newPasswordCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(a.stderr, cfg.GetLogLevel(), a.verbose)

	navigator := session.NavigatorFunc(func(r session.Route) { a.route = r })
	c, err := client.New(cfg, client.WithLogger(a.logger), client.WithNavigator(navigator))
	if err != nil {
		return fmt.Errorf("[bookingctl setup] %w", err)
	}
	a.client = c

	ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
	defer cancel()
	return c.WaitReady(ctx)
}

func (a *app) teardown() error {
	if a.client == nil {
		return nil
	}
	return a.client.Close()
}

// context returns the command context bounded by --timeout.
func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, a.timeout)
}

func newLogger(w io.Writer, level string, verbose bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: zerolog.SyncWriter(w), TimeFormat: time.Kitchen}).
		Level(lvl).
		With().Timestamp().Logger()
}

func displayAppname(w io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(w, myFigure.String())
}
