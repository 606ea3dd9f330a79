package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cardforge/card-services/internal/cardsvc/store"
)

var frameColors = map[string]*color.Color{
	"white":     color.New(color.FgHiWhite),
	"blue":      color.New(color.FgBlue),
	"black":     color.New(color.FgHiBlack),
	"red":       color.New(color.FgRed),
	"purple":    color.New(color.FgMagenta),
	"green":     color.New(color.FgGreen),
	"gold":      color.New(color.FgYellow),
	"sepia":     color.New(color.FgYellow),
	"colorless": color.New(color.FgWhite),
}

var listCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the saved cards in the collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cards, _, err := openStores()
		if err != nil {
			return err
		}

		all, err := cards.List(context.Background())
		if err != nil {
			return fmt.Errorf("error listing cards: %v", err)
		}

		if len(all) == 0 {
			fmt.Println("No cards in the collection yet.")
			fmt.Println("Import some with 'cardctl import cards.csv --images art.zip'.")
			return nil
		}

		for _, c := range all {
			fc, ok := frameColors[c.Color]
			if !ok {
				fc = frameColors["colorless"]
			}
			fc.Printf("%-30s", c.Title)
			fmt.Printf(" %-10s %-10s", c.Color, c.Layout)
			if store.IsBlobRef(c.Image) {
				fmt.Printf(" [art]")
			}
			fmt.Printf("  %s\n", c.ID)
		}
		fmt.Printf("\n%d cards\n", len(all))
		return nil
	},
}
