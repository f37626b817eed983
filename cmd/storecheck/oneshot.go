package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/storecheck/storecheck/internal/runner"
	api "github.com/storecheck/storecheck/lib-storecheck"
)

func (cmd *Command) RunOneshot(ctx context.Context, r *runner.Runner) (exitCode int) {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGHUP)
	defer stop()

	res, err := r.Run(ctx)

	PrintSummary(cmd.OutStream, res)

	if err != nil {
		fmt.Fprintf(cmd.ErrStream, "error: %s\n", err)
	}

	return res.ExitCode()
}

func statusMark(s api.Status) string {
	switch s {
	case api.StatusHealthy:
		return "[ OK ]"
	case api.StatusDegraded:
		return "[WARN]"
	default:
		return "[FAIL]"
	}
}

// PrintSummary writes the human readable result of a run.
func PrintSummary(w io.Writer, res runner.Result) {
	for _, e := range res.Entries {
		fmt.Fprintf(w, "%s %s: %sms\n", statusMark(e.Status), e.Name, humanize.Comma(e.Latency.Milliseconds()))
	}

	s := res.Summary
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Health summary:")
	fmt.Fprintf(w, "  healthy:  %d\n", s.Healthy)
	fmt.Fprintf(w, "  degraded: %d\n", s.Degraded)
	fmt.Fprintf(w, "  down:     %d\n", s.Down)
	fmt.Fprintf(w, "  overall:  %d%%\n", s.HealthPercentage())

	if s.CriticalSystemDown() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "CRITICAL SYSTEMS DOWN:")
		for _, name := range s.CriticalDown {
			fmt.Fprintf(w, "  - %s\n", name)
		}
		fmt.Fprintln(w, "  revenue impact, immediate action required")
	}

	if res.State == runner.StateFailed {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "snapshot was not saved")
	}
}
