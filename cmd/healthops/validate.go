package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/healthops/adapters"
	"github.com/jonwraymond/healthops/config"
	"github.com/jonwraymond/healthops/probe"
	"github.com/jonwraymond/healthops/secret"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration without contacting any service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(cmd.Context(), cmd.OutOrStdout(), configPath(cmd))
		},
	}
}

// validateConfig resolves secrets and validates every check against its
// adapter without building any client.
func validateConfig(ctx context.Context, out io.Writer, path string) error {
	doc, err := config.Load(path)
	if err != nil {
		return err
	}
	resolver, err := secret.DefaultRegistry.Build(doc.Secrets)
	if err != nil {
		return err
	}
	defer func() { _ = resolver.Close() }()

	set, err := doc.Options(ctx, resolver)
	if err != nil {
		return err
	}

	if err := validateSet(doc, set, probe.NewServices()); err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "%s: %d checks valid\n", path, len(set))
	return err
}

func newKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the built-in check kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tMODES\tPARAMS")
			for _, d := range adapters.Describe() {
				modes := make([]string, len(d.Modes))
				for i, m := range d.Modes {
					modes[i] = m.String()
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Kind, strings.Join(modes, ","), strings.Join(d.Params, ","))
			}
			return tw.Flush()
		},
	}
}
