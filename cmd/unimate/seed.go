package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/unimate/listing-search/model"
)

// seedFile is the JSON layout accepted by the seed command.
type seedFile struct {
	Boardings []model.Boarding `json:"boardings"`
	Listings  []model.Listing  `json:"listings"`
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load boardings and listings from a JSON file into the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := opts.cfg

			data, err := loadSeedFile(path)
			if err != nil {
				return err
			}

			store, err := openStore(ctx, cfg)
			if err != nil {
				return fmt.Errorf("opening %s store: %w", cfg.Store.Driver, err)
			}
			defer store.Close()

			if err := store.PutBoardings(ctx, data.Boardings); err != nil {
				return fmt.Errorf("seeding boardings: %w", err)
			}
			if err := store.PutListings(ctx, data.Listings); err != nil {
				return fmt.Errorf("seeding listings: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d boardings and %d listings into %s\n",
				len(data.Boardings), len(data.Listings), cfg.Store.Driver)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "Path to a JSON file with boardings and listings")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func loadSeedFile(path string) (*seedFile, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- operator supplied path
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	var data seedFile
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing seed file %s: %w", path, err)
	}
	return &data, nil
}
