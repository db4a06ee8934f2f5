package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/healthops/health"
)

// errUnhealthy makes the process exit 1 without printing an error.
var errUnhealthy = errors.New("unhealthy")

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [name...]",
		Short: "Run checks once and exit 1 if the overall status is at or past --fail-on",
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			failOn, _ := cmd.Flags().GetString("fail-on")
			threshold, err := health.ParseStatus(failOn)
			if err != nil {
				return err
			}
			return runChecks(cmd.Context(), cmd.OutOrStdout(), configPath(cmd), args, asJSON, threshold)
		},
	}
	cmd.Flags().Bool("json", false, "print the detailed JSON report")
	cmd.Flags().String("fail-on", "unhealthy", "lowest overall status that exits 1 (degraded or unhealthy)")
	return cmd
}

func runChecks(ctx context.Context, out io.Writer, path string, names []string, asJSON bool, failOn health.Status) error {
	rt, err := newRuntime(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close(context.Background()) }()

	var results map[string]health.Result
	if len(names) == 0 {
		results = rt.agg.CheckAll(ctx)
	} else {
		results = make(map[string]health.Result, len(names))
		for _, name := range names {
			result, err := rt.agg.Check(ctx, name)
			if err != nil {
				return fmt.Errorf("%w: %q", err, name)
			}
			results[name] = result
		}
	}
	status := rt.agg.OverallStatus(results)

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(health.NewReport(status, results)); err != nil {
			return err
		}
	} else if err := printTable(out, rt, results); err != nil {
		return err
	}

	if status != health.StatusHealthy && status >= failOn {
		return errUnhealthy
	}
	return nil
}

func printTable(out io.Writer, rt *runtime, results map[string]health.Result) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tSTATUS\tDURATION\tMESSAGE")
	for _, name := range sortedNames(results) {
		r := results[name]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", name, rt.doc.Checks[name].Kind, r.Status, r.Duration.Round(time.Millisecond), r.Message)
	}
	return tw.Flush()
}

func sortedNames(results map[string]health.Result) []string {
	set := make(map[string]bool, len(results))
	for name := range results {
		set[name] = true
	}
	return sortedKeys(set)
}
