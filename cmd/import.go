package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"eventdesk/config"
	"eventdesk/importer"
	"eventdesk/storage"
)

var (
	importInputs  []string
	importFormat  string
	importDBPath  string
	importWorkers int
)

// importSummary tallies one import run across all input files.
type importSummary struct {
	FilesProcessed int
	RowsRead       int
	RowsImported   int
	RowsSkipped    int
	RowsFailed     int
}

// rowFailure pins a failed or skipped row to its source file and row number.
type rowFailure struct {
	File      string
	RowNumber int
	Skipped   bool
	Message   string
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import CSV/Excel event spreadsheets into a local SQLite database",
	Long: `Read source files, normalize each row, and persist events in SQLite.

Headers are matched loosely (wrapped, quoted, and glyph-mangled variants are
accepted). Venues and companies are created on first sight; category and
sub-category values must match the fixed set or the row fails. Rows whose
(title, start date, venue, company) key already exists are skipped, so
re-importing the same file is safe.

When --format is omitted, format is inferred from each input file extension.`,
	Example: `
  # Import one Excel export
  eventdesk import -i events-2026.xlsx --db ./eventdesk.db

  # Import multiple files in one run
  eventdesk import -i confirmed.xlsx -i tentative.csv

  # Force the CSV reader regardless of extension
  eventdesk import -i export.dat --format csv

  # Process rows concurrently
  eventdesk import -i events-2026.xlsx --workers 8
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		workers := importWorkers
		if workers <= 0 {
			workers = cfg.Import.Workers
		}

		store, err := storage.OpenSQLite(importDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		summary, failures, err := runImport(store, importInputs, importFormat, workers)
		if err != nil {
			return err
		}

		for _, failure := range failures {
			outcome := "failed"
			if failure.Skipped {
				outcome = "skipped"
			}
			fmt.Printf("%s row %d %s: %s\n", failure.File, failure.RowNumber, outcome, failure.Message)
		}

		fmt.Printf("Import completed. Files: %d, Rows read: %d, Rows imported: %d, Rows skipped: %d, Rows failed: %d\n",
			summary.FilesProcessed,
			summary.RowsRead,
			summary.RowsImported,
			summary.RowsSkipped,
			summary.RowsFailed,
		)
		return nil
	},
}

func runImport(store *storage.SQLiteStore, inputs []string, format string, workers int) (importSummary, []rowFailure, error) {
	var summary importSummary
	var failures []rowFailure

	executor := importer.NewExecutor(store, workers)

	for _, input := range inputs {
		resolved, err := importer.InferFormat(input, format)
		if err != nil {
			return summary, failures, err
		}
		reader, err := importer.ReaderForFormat(resolved)
		if err != nil {
			return summary, failures, err
		}

		records, err := reader.Read(input)
		if err != nil {
			return summary, failures, err
		}

		rawRows := make([]map[string]any, len(records))
		for i, record := range records {
			rawRows[i] = record.Values
		}

		results := executor.Run(importer.NormalizeRows(rawRows))
		for i, result := range results {
			switch {
			case result.Success:
				summary.RowsImported++
			case result.Skipped:
				summary.RowsSkipped++
				failures = append(failures, rowFailure{
					File:      input,
					RowNumber: records[i].RowNumber,
					Skipped:   true,
					Message:   result.Error,
				})
			default:
				summary.RowsFailed++
				failures = append(failures, rowFailure{
					File:      input,
					RowNumber: records[i].RowNumber,
					Message:   result.Error,
				})
			}
		}

		summary.FilesProcessed++
		summary.RowsRead += len(records)
	}

	return summary, failures, nil
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringArrayVarP(&importInputs, "input", "i", nil, "Input file path (repeatable)")
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "Input format: csv|excel (optional, inferred from extension when omitted)")
	importCmd.Flags().StringVar(&importDBPath, "db", "./eventdesk.db", "Path to local SQLite database")
	importCmd.Flags().IntVar(&importWorkers, "workers", 0, "Row-processing concurrency (0 = use import.workers from config)")

	_ = importCmd.MarkFlagRequired("input")
}
