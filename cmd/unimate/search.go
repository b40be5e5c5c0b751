package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/unimate/listing-search/services"
)

type searchFlags struct {
	query       services.SearchQuery
	priceMin    float64
	priceMax    float64
	distanceMin float64
	distanceMax float64
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	f := &searchFlags{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run one listing search and print the results as a table",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := opts.cfg

			store, err := openStore(ctx, cfg)
			if err != nil {
				return fmt.Errorf("opening %s store: %w", cfg.Store.Driver, err)
			}
			defer store.Close()

			searcher, closeCache, err := newSearcher(ctx, cfg, store, nil)
			if err != nil {
				return err
			}
			defer closeCache()

			result, err := searcher.Search(ctx, f.build(cmd))
			if err != nil {
				return err
			}
			renderResults(cmd.OutOrStdout(), result)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.query.Text, "q", "", "Free-text query")
	flags.StringVar(&f.query.Type, "type", "", "Listing type, or all")
	flags.StringVar(&f.query.Gender, "gender", "", "Gender, or all")
	flags.StringVar(&f.query.KeyMoney, "key-money", "", "with, without or all")
	flags.StringVar(&f.query.Sort, "sort", "", "newest, name_asc, name_desc, price_asc, price_desc, distance_asc, distance_desc")
	flags.IntVar(&f.query.Page, "page", 1, "Page number")
	flags.IntVar(&f.query.Limit, "limit", 0, "Page size; 0 returns every match")
	flags.Float64Var(&f.priceMin, "price-min", 0, "Minimum price")
	flags.Float64Var(&f.priceMax, "price-max", 0, "Maximum price")
	flags.Float64Var(&f.distanceMin, "distance-min", 0, "Minimum distance")
	flags.Float64Var(&f.distanceMax, "distance-max", 0, "Maximum distance")
	flags.StringVar(&f.query.SimilarTo, "similar-to", "", "Rank listings similar to this listing ID")
	return cmd
}

// build returns the query with only the bounds that were set on the command line.
func (f *searchFlags) build(cmd *cobra.Command) services.SearchQuery {
	q := f.query
	bound := func(name string, v float64) *float64 {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		return &v
	}
	q.PriceMin = bound("price-min", f.priceMin)
	q.PriceMax = bound("price-max", f.priceMax)
	q.DistanceMin = bound("distance-min", f.distanceMin)
	q.DistanceMax = bound("distance-max", f.distanceMax)
	return q
}

// renderResults prints hits as an ASCII table followed by a summary line.
func renderResults(w io.Writer, result services.SearchResult) {
	if len(result.Listings) == 0 {
		fmt.Fprintln(w, result.Message)
		return
	}

	data := make([][]string, 0, len(result.Listings))
	for _, hit := range result.Listings {
		boarding := "-"
		if hit.Boarding != nil {
			boarding = hit.Boarding.Name
		}
		keyMoney := "-"
		if hit.KeyMoney != nil {
			keyMoney = formatFloat(*hit.KeyMoney)
		}
		score := ""
		if hit.RelevanceScore != nil {
			score = strconv.FormatFloat(*hit.RelevanceScore, 'f', 3, 64)
		}
		data = append(data, []string{
			hit.ID,
			hit.Name,
			hit.Type,
			hit.Gender,
			formatFloat(hit.Price),
			formatFloat(hit.Distance),
			keyMoney,
			boarding,
			score,
		})
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Name", "Type", "Gender", "Price", "Distance", "Key Money", "Boarding", "Score"})
	table.Bulk(data)
	table.Render()

	summary := fmt.Sprintf("%d of %d listings (%s)", len(result.Listings), result.Total, result.Mode)
	if result.Page != nil && result.Pages != nil {
		summary += fmt.Sprintf(", page %d of %d", *result.Page, *result.Pages)
	}
	fmt.Fprintln(w, summary)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
