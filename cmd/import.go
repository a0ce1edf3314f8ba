package main

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/restolead/catalog-cli/internal/batch"
	"github.com/restolead/catalog-cli/internal/ingest"
	"github.com/restolead/catalog-cli/internal/model"
	"github.com/restolead/catalog-cli/internal/resolver"
)

var (
	importScope       string
	importSource      string
	importWindow      int
	importDelayMillis int
	importSheet       string
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a feed file and resolve rows into the catalog",
	Long:  "Reads a JSON or XLSX feed, converts each row to a record through the alias table, and resolves rows in concurrent windows. Feed merges prefer longer values over stored ones.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]

		records, err := readFeed(path)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return eris.Errorf("feed %s has no rows", path)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		res := initResolver(st, importScope, false)

		items := make([]batch.Item, 0, len(records))
		for _, rec := range records {
			items = append(items, batch.Item{
				SourceURL: rec.SourceURL,
				Do: func(ctx context.Context) (*model.ItemResult, error) {
					return res.Resolve(ctx, rec, resolver.MergeFeed)
				},
			})
		}

		window := importWindow
		if window <= 0 {
			window = cfg.Import.WindowSize
		}
		delay := time.Duration(importDelayMillis) * time.Millisecond
		if importDelayMillis < 0 {
			delay = time.Duration(cfg.Import.DelayMillis) * time.Millisecond
		}

		report, err := batch.New().RunWindowed(ctx, items, window, delay)
		if err != nil {
			return err
		}
		return printReport(report)
	},
}

func readFeed(path string) ([]*model.Record, error) {
	source := importSource
	if source == "" {
		source = "feed"
	}
	switch {
	case strings.HasSuffix(path, ".xlsx"):
		return ingest.FromXLSX(path, source, ingest.XLSXOptions{SheetName: importSheet})
	case strings.HasSuffix(path, ".csv"):
		return ingest.FromCSVFile(path, source)
	case strings.HasSuffix(path, ".json"):
		return ingest.FromJSONFile(path, source)
	default:
		return nil, eris.Errorf("unsupported feed format: %s", path)
	}
}

func init() {
	importCmd.Flags().StringVar(&importScope, "scope", "", "source link scope (default from config)")
	importCmd.Flags().StringVar(&importSource, "source", "", "source label stored on imported leads")
	importCmd.Flags().IntVar(&importWindow, "window", 0, "concurrent window size (default from config)")
	importCmd.Flags().IntVar(&importDelayMillis, "delay", -1, "delay between windows in milliseconds (default from config)")
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "XLSX sheet name (default first sheet)")
	rootCmd.AddCommand(importCmd)
}
