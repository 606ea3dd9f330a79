package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cardforge/card-services/internal/cardsvc/batch"
	"github.com/cardforge/card-services/internal/cardsvc/service"
)

var importImagesFlag string

func init() {
	importCmd.Flags().StringVar(&importImagesFlag, "images", "", "zip archive with images referenced by imageFileName")
}

var importCmd = &cobra.Command{
	Use:   "import <cards.csv>",
	Short: "Import cards from a CSV file, with an optional image archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cards, blobs, err := openStores()
		if err != nil {
			return err
		}

		csvFile, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("error opening CSV: %v", err)
		}
		defer csvFile.Close()

		var zipBytes []byte
		if importImagesFlag != "" {
			zipBytes, err = os.ReadFile(importImagesFlag)
			if err != nil {
				return fmt.Errorf("error reading image archive: %v", err)
			}
		}

		pipeline := batch.NewPipeline(blobs)
		svc := service.NewBatchService(pipeline, cards, nil)

		report, err := svc.Import(context.Background(), csvFile, zipBytes)
		if err != nil {
			return err
		}

		if report.ArchiveWarning != "" {
			color.Yellow("warning: %s", report.ArchiveWarning)
		}
		color.Green("Created %d cards.", report.SuccessCount)
		if report.ErrorCount > 0 {
			color.Red("%d rows failed.", report.ErrorCount)
		}
		if report.DroppedCount > 0 {
			fmt.Printf("%d rows without a title were skipped.\n", report.DroppedCount)
		}
		return nil
	},
}
