package cmd

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"sjsage522/partwatch/config"
	"sjsage522/partwatch/internal/crawler"
	"sjsage522/partwatch/internal/ledger"
	"sjsage522/partwatch/services/cache"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [part-number...]",
	Short: "Fetch the search page once and print the offers found",
	Long:  "Fetches and parses the search results for the given part numbers (or PART_NUMBERS) without sending any notification.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		if len(args) > 0 {
			cfg.PartNumbers = config.SplitList(strings.Join(args, ","))
		}
		if err := cfg.ValidateForScrape(); err != nil {
			return err
		}

		fetcher := crawler.CreateFetcher(cfg, cache.New(cfg.MemcacheAddr))
		extractor := crawler.CreateExtractor(cfg)
		filter := ledger.NewFilter(cfg.MaxPrice, ledger.New())

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Part", "Title", "Price", "Qualifies", "URL"})

		var errs []error
		for _, part := range cfg.PartNumbers {
			raw, err := fetcher.Fetch(cmd.Context(), part)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			offers, err := extractor.Extract(part, raw)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			for _, offer := range offers {
				t.AppendRow(table.Row{
					offer.Identifier,
					offer.Title,
					offer.Price.StringFixed(2),
					filter.WithinBudget(offer),
					offer.URL,
				})
			}
		}

		t.AppendFooter(table.Row{"", "", "", "<= " + cfg.MaxPrice.String(), fmt.Sprintf("%d offers", t.Length())})
		t.SetStyle(table.StyleRounded)
		t.Render()

		return stderrors.Join(errs...)
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}
