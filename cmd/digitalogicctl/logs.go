package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/digitalogic/catalog/internal/audit"
	"github.com/spf13/cobra"
)

func logsCmd() *cobra.Command {
	var (
		limit  int
		action string
		format string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent activity log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			out, apiErr := a.audit.List(cliContext(), audit.Filter{
				Action: action,
				Limit:  limit,
			})
			if apiErr != nil {
				return apiErr
			}

			if format == "json" {
				return json.NewEncoder(os.Stdout).Encode(out)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tUSER\tACTION\tOBJECT\tOBJECT ID")
			for _, entry := range out.Logs {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\n",
					entry.ID,
					entry.CreatedAt.Format("2006-01-02 15:04:05"),
					entry.UserID,
					entry.Action,
					entry.ObjectType,
					entry.ObjectID,
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of entries to show")
	cmd.Flags().StringVar(&action, "action", "", "filter by action")
	cmd.Flags().StringVar(&format, "format", "table", "output format (table|json)")
	return cmd
}
