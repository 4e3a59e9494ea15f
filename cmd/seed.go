package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/greta-mvc/flowmap/internal/log"
	"github.com/greta-mvc/flowmap/internal/store"
)

// sampleSeedName selects the seed data embedded in the binary.
const sampleSeedName = "sample"

var seedCmd = &cobra.Command{
	Use:   "seed [file]",
	Short: "Create or migrate the local database and load seed data",
	Long: `Create the local registry database if needed, migrate it to the latest
schema and load a YAML seed file into it. Seeding is idempotent: firms and
domains are upserted by their codes.

Without an argument db.seed_file is used, and without that the built-in
sample data.

Example:
  flowmap seed
  flowmap seed ./seed.yaml --db ./registry.db`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	file := cfg.DB.SeedFile
	if len(args) == 1 {
		file = args[0]
	}
	if file == "" {
		file = sampleSeedName
	}

	s, err := store.Open(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("opening registry db: %w", err)
	}
	defer func() { _ = s.Close() }()

	data, err := seedStore(cmd.Context(), s, file)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d corporations and %d domains into %s\n",
		len(data.Corporations), len(data.Domains), cfg.DB.Path)
	return nil
}

func loadSeed(file string) (store.SeedData, error) {
	if file == sampleSeedName {
		return store.SampleSeed()
	}
	data, err := store.LoadSeedFile(file)
	if err != nil {
		return store.SeedData{}, fmt.Errorf("loading seed file: %w", err)
	}
	return data, nil
}

func seedStore(ctx context.Context, s *store.Store, file string) (store.SeedData, error) {
	data, err := loadSeed(file)
	if err != nil {
		return store.SeedData{}, err
	}
	if err := s.Seed(ctx, data); err != nil {
		return store.SeedData{}, fmt.Errorf("seeding %s: %w", s.Path(), err)
	}
	log.Info(log.CatDB, "seeded", "file", file, "corporations", len(data.Corporations), "domains", len(data.Domains))
	return data, nil
}
