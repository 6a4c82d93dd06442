package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"eventdesk/event"
	"eventdesk/storage"
)

var (
	listDBPath  string
	listStatus  string
	listCompany string
	listJSON    bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored events",
	Long: `List events from the local SQLite database, ordered by start date.

Filters combine: --status and --company each narrow the result.`,
	Example: `
  # List everything
  eventdesk list

  # Announced events only
  eventdesk list --status ANNOUNCED

  # One company's events as JSON
  eventdesk list --company "Acme" --json
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := storage.EventFilter{Company: listCompany}
		if listStatus != "" {
			status, err := event.ParseStatus(listStatus)
			if err != nil {
				return err
			}
			filter.Status = string(status)
		}

		store, err := storage.OpenSQLite(listDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		events, err := store.ListEvents(filter)
		if err != nil {
			return err
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(events)
		}

		writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(writer, "ID\tNAME\tSTATUS\tSTART\tVENUE\tCOMPANY\tCATEGORY")
		for _, ev := range events {
			fmt.Fprintf(writer, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
				ev.ID, ev.Name, ev.Status, ev.StartDate, ev.Venue, ev.Company, ev.Category)
		}
		if err := writer.Flush(); err != nil {
			return err
		}
		fmt.Printf("Total: %d\n", len(events))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listDBPath, "db", "./eventdesk.db", "Path to local SQLite database")
	listCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status: PENDING|ANNOUNCED")
	listCmd.Flags().StringVar(&listCompany, "company", "", "Filter by exact company name")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print JSON instead of a table")
}
