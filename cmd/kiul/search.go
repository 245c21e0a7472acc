package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/2014Akamanzi/kiul-app-sub001/internal/adapter/assistantclient"
)

func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search publication file names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := assistantclient.NewClient(baseURL, cliLogger())
			results, err := client.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "no publications found")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tTITLE\tPATH")
			for _, r := range results {
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.Category, r.Title, r.Path)
			}
			return w.Flush()
		},
	}
	addClientFlags(cmd)
	return cmd
}
