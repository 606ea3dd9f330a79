package cmd

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cardforge/card-services/internal/cardsvc/service"
)

var deleteCmd = &cobra.Command{
	Use:   "rm <card-id...>",
	Short: "Delete cards from the collection",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cards, blobs, err := openStores()
		if err != nil {
			return err
		}

		svc := service.NewCardService(cards, blobs, nil)
		if err := svc.DeleteMany(context.Background(), args); err != nil {
			return err
		}

		color.Green("Deleted %d cards.", len(args))
		return nil
	},
}
