package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X main.Version=...".
var Version = "dev"

const defaultConfigPath = "healthops.yaml"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "healthops",
		Short:         "Run configured dependency health checks",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "configuration file (default $HEALTHOPS_CONFIG or "+defaultConfigPath+")")

	root.AddCommand(newServeCmd(), newCheckCmd(), newValidateCmd(), newKindsCmd())
	return root
}

func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("HEALTHOPS_CONFIG")
	}
	if path == "" {
		path = defaultConfigPath
	}
	return path
}
