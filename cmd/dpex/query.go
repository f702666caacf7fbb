package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newQueryCmd(opts *rootOptions) *cobra.Command {
	flags := &filterFlags{}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Print the dataset query and API URL for a filter without running it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), opts, "cli")
			if err != nil {
				return err
			}
			defer a.Close()

			q, url := a.search.Describe(flags.state())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "query: %s\n", q)
			fmt.Fprintf(out, "url:   %s\n", url)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
