package main

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/dpex/internal/config"
	"github.com/kailas-cloud/dpex/internal/version"
)

type rootOptions struct {
	env      string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "dpex",
		Short: "Explore the ADEME energy performance diagnostics (DPE) dataset",
		Long: `dpex filters the public DPE dataset of existing dwellings by postal code,
commune, surface, energy label, building type and diagnosis date.

It runs as an HTTP API (dpex serve) or answers one-off searches from the
command line (dpex search, dpex query).`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "configuration environment (config/<env>.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")

	cmd.AddCommand(
		newServeCmd(opts),
		newSearchCmd(opts),
		newQueryCmd(opts),
	)
	return cmd
}
