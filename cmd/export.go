package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"eventdesk/event"
	"eventdesk/output"
	"eventdesk/storage"
)

var (
	exportFormat  string
	exportOutput  string
	exportDBPath  string
	exportStatus  string
	exportCompany string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export events from SQLite to CSV/Excel",
	Long: `Export stored events with their resolved venue, company, category, and
sub-category names.

Output format can be selected explicitly via --format or inferred from the
--output extension.`,
	Example: `
  # Export all events to CSV
  eventdesk export --db ./eventdesk.db --output ./events.csv

  # Export announced events to Excel
  eventdesk export --status ANNOUNCED --output ./announced.xlsx

  # Force Excel format independent of extension
  eventdesk export --format excel --output ./events.out
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := exportFormat
		if strings.TrimSpace(format) == "" {
			format = detectExportFormat(exportOutput)
		}

		filter := storage.EventFilter{Company: exportCompany}
		if exportStatus != "" {
			status, err := event.ParseStatus(exportStatus)
			if err != nil {
				return err
			}
			filter.Status = string(status)
		}

		store, err := storage.OpenSQLite(exportDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		events, err := store.ListEvents(filter)
		if err != nil {
			return err
		}

		writer, err := output.WriterForFormat(format)
		if err != nil {
			return err
		}
		if err := writer.Write(exportOutput, events); err != nil {
			return err
		}

		fmt.Printf("Export completed. Rows: %d, Format: %s, File: %s\n", len(events), format, exportOutput)
		return nil
	},
}

func detectExportFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "csv":
		return "csv"
	case "xlsx", "xlsm", "xls":
		return "excel"
	default:
		return "csv"
	}
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")
	exportCmd.Flags().StringVar(&exportDBPath, "db", "./eventdesk.db", "Path to local SQLite database")
	exportCmd.Flags().StringVar(&exportStatus, "status", "", "Filter by status: PENDING|ANNOUNCED")
	exportCmd.Flags().StringVar(&exportCompany, "company", "", "Filter by exact company name")

	_ = exportCmd.MarkFlagRequired("output")
}
