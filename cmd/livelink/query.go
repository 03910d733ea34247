package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"livelink/internal/alert"
	"livelink/internal/client"
	"livelink/internal/departure"
	"livelink/internal/output"
	"livelink/internal/stop"
)

const watchInterval = 30 * time.Second

var (
	flagStops   []string
	flagWatch   bool
	flagPincode string
	flagLine    string
	flagSearch  string
)

func init() {
	departuresCmd.Flags().StringSliceVarP(&flagStops, "stop", "s", nil, "Stop id(s) instead of a pincode (repeatable or comma-separated)")
	departuresCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "Watch mode: refresh every 30 seconds")

	alertsCmd.Flags().StringVar(&flagPincode, "pincode", "", "Only alerts for lines serving this pincode")
	alertsCmd.Flags().StringVarP(&flagLine, "line", "l", "", "Only alerts affecting this line number")
	alertsCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "Watch mode: refresh every 30 seconds")
	alertsCmd.MarkFlagsMutuallyExclusive("pincode", "line")

	stopsCmd.Flags().StringVarP(&flagSearch, "search", "q", "", "Free-text search on stop name or address")
}

var departuresCmd = &cobra.Command{
	Use:   "departures [pincode]",
	Short: "Show upcoming departures for a pincode or stops",
	Example: `  livelink departures 71634
  livelink departures --stop stop_a
  livelink departures --stop stop_a,stop_b --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDepartures,
}

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show active service alerts",
	Example: `  livelink alerts
  livelink alerts --pincode 71634
  livelink alerts --line S4`,
	Args: cobra.NoArgs,
	RunE: runAlerts,
}

var stopsCmd = &cobra.Command{
	Use:   "stops [pincode]",
	Short: "List stops in a pincode or search stops by name",
	Example: `  livelink stops 71634
  livelink stops --search "haupt"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStops,
}

func newClient() *client.Client {
	return client.New(flagServer, newLogger(logLevelOr("warn")))
}

func logLevelOr(fallback string) string {
	if flagLogLevel != "" {
		return flagLogLevel
	}
	return fallback
}

func runDepartures(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && len(flagStops) == 0 {
		return errors.New("a pincode or --stop is required")
	}
	if len(args) == 1 && len(flagStops) > 0 {
		return errors.New("give either a pincode or --stop, not both")
	}

	c := newClient()
	fetchAndRender := func(ctx context.Context, w io.Writer, colors *output.Colors) error {
		var (
			deps any
			err  error
		)
		switch {
		case len(args) == 1:
			deps, err = c.Departures(ctx, args[0])
		case len(flagStops) == 1:
			deps, err = c.DeparturesForStop(ctx, flagStops[0])
		default:
			deps, err = c.LiveDepartures(ctx, flagStops)
		}
		if err != nil {
			return describe(err)
		}
		return render(w, colors, deps)
	}

	return runQuery(fetchAndRender, flagWatch)
}

func runAlerts(cmd *cobra.Command, args []string) error {
	c := newClient()
	fetchAndRender := func(ctx context.Context, w io.Writer, colors *output.Colors) error {
		var (
			alerts any
			err    error
		)
		if flagLine != "" {
			alerts, err = c.AlertsForLine(ctx, flagLine)
		} else {
			alerts, err = c.Alerts(ctx, flagPincode)
		}
		if err != nil {
			return describe(err)
		}
		return render(w, colors, alerts)
	}
	return runQuery(fetchAndRender, flagWatch)
}

func runStops(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && flagSearch == "" {
		return errors.New("a pincode or --search is required")
	}

	c := newClient()
	fetchAndRender := func(ctx context.Context, w io.Writer, colors *output.Colors) error {
		var (
			stops any
			err   error
		)
		if flagSearch != "" {
			stops, err = c.SearchStops(ctx, flagSearch)
		} else {
			stops, err = c.Stops(ctx, args[0])
		}
		if err != nil {
			return describe(err)
		}
		return render(w, colors, stops)
	}
	return runQuery(fetchAndRender, false)
}

type renderFunc func(ctx context.Context, w io.Writer, colors *output.Colors) error

// runQuery renders once, or in watch mode clears and re-renders every
// watchInterval until interrupted.
func runQuery(fn renderFunc, watch bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	colors := output.NewColors(output.ParseColorMode(flagColor))
	if !watch {
		return fn(ctx, os.Stdout, colors)
	}

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	output.HideCursor(os.Stdout)
	defer output.ShowCursor(os.Stdout)

	for {
		output.ClearScreen(os.Stdout)
		if err := fn(ctx, os.Stdout, colors); err != nil && ctx.Err() == nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		output.Footer(os.Stdout, colors, time.Now(), watchInterval)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			output.ClearScreen(os.Stdout)
			fmt.Println("Watch mode ended.")
			return nil
		}
	}
}

// render prints v as JSON when --json is set, otherwise as a table.
func render(w io.Writer, colors *output.Colors, v any) error {
	if flagJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	switch v := v.(type) {
	case []departure.Projection:
		output.RenderDepartures(w, v, colors)
	case []alert.Alert:
		output.RenderAlerts(w, v, colors)
	case []stop.Stop:
		output.RenderStops(w, v, colors)
	default:
		return fmt.Errorf("cannot render %T", v)
	}
	return nil
}

// describe turns API errors into messages suitable for a terminal.
func describe(err error) error {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrNotFound) && errors.As(err, &apiErr) && apiErr.Message != "":
		return errors.New(apiErr.Message)
	case errors.Is(err, client.ErrInvalidRequest) && errors.As(err, &apiErr) && apiErr.Message != "":
		return fmt.Errorf("invalid request: %s", apiErr.Message)
	case errors.Is(err, client.ErrServerError):
		return fmt.Errorf("server error, check the livelink logs: %w", err)
	}
	return err
}
