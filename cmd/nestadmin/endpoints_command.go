package main

import (
	"github.com/spf13/cobra"

	"nestadmin/internal/api"
)

func newEndpointsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "endpoints",
		Short:       "List the API endpoint catalog",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoints := api.Endpoints()
			if ctx.jsonOutput() {
				out := make(map[string]string, len(endpoints))
				for _, e := range endpoints {
					out[e.Name] = e.Template
				}
				return writeJSON(cmd, out)
			}
			rows := make([][]string, 0, len(endpoints))
			for _, e := range endpoints {
				rows = append(rows, []string{e.Name, e.Template})
			}
			printTable(cmd, []string{"Name", "Path"}, rows, nil)
			return nil
		},
	}
}
