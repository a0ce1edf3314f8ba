package main

import (
	"bufio"
	"context"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/restolead/catalog-cli/internal/batch"
	"github.com/restolead/catalog-cli/internal/model"
	"github.com/restolead/catalog-cli/internal/resolver"
)

var (
	scrapeScope        string
	scrapeRefreshNames bool
	scrapeDelayMillis  int
	scrapeURLFile      string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [url...]",
	Short: "Scrape listing URLs and resolve them into the catalog",
	Long:  "Fetches each listing page, extracts and normalizes its fields, and upserts the result as a master lead. URLs run sequentially with a delay between fetches.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		urls := args
		if scrapeURLFile != "" {
			fileURLs, err := readURLFile(scrapeURLFile)
			if err != nil {
				return err
			}
			urls = append(urls, fileURLs...)
		}
		if len(urls) == 0 {
			return eris.New("no urls given")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		registry, err := initRegistry()
		if err != nil {
			return err
		}
		res := initResolver(st, scrapeScope, scrapeRefreshNames)

		items := make([]batch.Item, 0, len(urls))
		for _, url := range urls {
			items = append(items, batch.Item{
				SourceURL: url,
				Do: func(ctx context.Context) (*model.ItemResult, error) {
					rec, err := registry.Extract(ctx, url)
					if err != nil {
						return nil, err
					}
					return res.Resolve(ctx, rec, resolver.MergeScrape)
				},
			})
		}

		delay := time.Duration(scrapeDelayMillis) * time.Millisecond
		if scrapeDelayMillis < 0 {
			delay = time.Duration(cfg.Scrape.DelayMillis) * time.Millisecond
		}

		report, err := batch.New().RunSequential(ctx, items, delay)
		if err != nil {
			return err
		}
		return printReport(report)
	},
}

func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open url file %s", path)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, eris.Wrap(scanner.Err(), "read url file")
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeScope, "scope", "", "source link scope (default from config)")
	scrapeCmd.Flags().BoolVar(&scrapeRefreshNames, "refresh-names", false, "overwrite existing lead names on merge")
	scrapeCmd.Flags().IntVar(&scrapeDelayMillis, "delay", -1, "delay between fetches in milliseconds (default from config)")
	scrapeCmd.Flags().StringVar(&scrapeURLFile, "file", "", "file with one listing URL per line")
	rootCmd.AddCommand(scrapeCmd)
}
