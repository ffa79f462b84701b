package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/stacklok/vsync-reactor/internal/replay"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a vsync trace on a simulated clock",
		Long: `Replay a recorded vsync trace against a reactor driven by a simulated clock.

The trace lists the display, the initial listeners and timed events (resyncs,
present fences, period and phase changes). The command prints every listener
firing, the outcome of every event and the final reactor state.

Examples:
  vsync-reactor replay --trace trace.yaml
  vsync-reactor replay --trace trace.yaml --format json`,
		RunE: runReplay,
	}

	cmd.Flags().String("trace", "", "Path to the trace file (YAML format, required)")
	cmd.Flags().String("format", formatTable, "Output format (table or json)")
	if err := cmd.MarkFlagRequired("trace"); err != nil {
		panic(err)
	}
	return cmd
}

func runReplay(cmd *cobra.Command, _ []string) error {
	tracePath, err := cmd.Flags().GetString("trace")
	if err != nil {
		return fmt.Errorf("failed to get trace flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != formatTable && format != formatJSON {
		return fmt.Errorf("unsupported output format %q", format)
	}

	trace, err := replay.Load(tracePath)
	if err != nil {
		return fmt.Errorf("failed to load trace: %w", err)
	}
	result, err := replay.Run(cmd.Context(), trace)
	if err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}

	if format == formatJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return renderResult(cmd.OutOrStdout(), result)
}

// renderResult prints firings, event outcomes and the final state as tables
func renderResult(w io.Writer, result *replay.Result) error {
	firings := tablewriter.NewWriter(w)
	firings.Header("Listener", "Wakeup")
	for _, f := range result.Firings {
		if err := firings.Append([]string{f.Listener, offset(f.Wakeup.Nanoseconds())}); err != nil {
			return err
		}
	}
	if err := firings.Render(); err != nil {
		return fmt.Errorf("failed to render firings: %w", err)
	}

	outcomes := tablewriter.NewWriter(w)
	outcomes.Header("#", "At", "Kind", "Detail")
	for _, o := range result.Outcomes {
		row := []string{strconv.Itoa(o.Index), offset(o.At.Nanoseconds()), o.Kind, o.Detail}
		if err := outcomes.Append(row); err != nil {
			return err
		}
	}
	if err := outcomes.Render(); err != nil {
		return fmt.Errorf("failed to render outcomes: %w", err)
	}

	final := result.Final
	if _, err := fmt.Fprintf(w, "period %v, pending fences %d/%d, more samples needed %t\n",
		final.Period, final.PendingFences, final.PendingFenceLimit, final.MoreSamplesNeeded); err != nil {
		return err
	}

	listeners := tablewriter.NewWriter(w)
	listeners.Header("Listener", "Phase", "Period", "Last call", "Running")
	for _, l := range final.Listeners {
		row := []string{
			l.Name,
			l.Phase.String(),
			l.Period.String(),
			offset(l.LastCallTime.Nanoseconds()),
			strconv.FormatBool(l.Running),
		}
		if err := listeners.Append(row); err != nil {
			return err
		}
	}
	if err := listeners.Render(); err != nil {
		return fmt.Errorf("failed to render listeners: %w", err)
	}
	return nil
}

// offset formats a simulated timestamp as the time since replay start
func offset(ns int64) string {
	return time.Duration(ns).String()
}
