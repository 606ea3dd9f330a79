package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cardforge/card-services/internal/cardctl/config"
	"github.com/cardforge/card-services/internal/cardsvc/store"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "cardctl",
	Short: "Manage your card collection from the terminal",
	Long: `Cardctl works on the same local collection as the card service:
list saved cards, import batches from CSV and zip archives, render cards
to PNG files, and delete cards.`,
}

var dataDirFlag string

func init() {
	RootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "override the data directory from the config file")

	RootCmd.AddCommand(listCmd)
	RootCmd.AddCommand(importCmd)
	RootCmd.AddCommand(exportCmd)
	RootCmd.AddCommand(deleteCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

// openStores loads the config and initializes both local stores.
func openStores() (*config.Config, *store.CardStore, *store.BlobStore, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error loading config: %v", err)
	}
	if dataDirFlag != "" {
		cfg.DataDir = dataDirFlag
	}

	blobs := store.NewBlobStore(filepath.Join(cfg.DataDir, "blobs"))
	if err := blobs.Init(); err != nil {
		return nil, nil, nil, fmt.Errorf("error opening blob store: %v", err)
	}

	cards := store.NewCardStore(cfg.DataDir)
	if err := cards.Init(); err != nil {
		return nil, nil, nil, fmt.Errorf("error opening collection: %v", err)
	}

	return cfg, cards, blobs, nil
}
