package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cardforge/card-services/internal/cardsvc/render"
	"github.com/cardforge/card-services/internal/cardsvc/service"
)

var (
	exportAllFlag bool
	exportOutFlag string
)

func init() {
	exportCmd.Flags().BoolVar(&exportAllFlag, "all", false, "render every card in the collection")
	exportCmd.Flags().StringVarP(&exportOutFlag, "out", "o", ".", "directory for the rendered PNG files")
}

var exportCmd = &cobra.Command{
	Use:   "export [card-id...]",
	Short: "Render cards to PNG files",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !exportAllFlag && len(args) == 0 {
			return fmt.Errorf("pass card ids or --all")
		}

		cfg, cards, blobs, err := openStores()
		if err != nil {
			return err
		}

		ctx := context.Background()
		ids := args
		if exportAllFlag {
			all, err := cards.List(ctx)
			if err != nil {
				return fmt.Errorf("error listing cards: %v", err)
			}
			ids = ids[:0]
			for _, c := range all {
				ids = append(ids, c.ID)
			}
		}

		if err := os.MkdirAll(exportOutFlag, 0755); err != nil {
			return fmt.Errorf("error creating output directory: %v", err)
		}

		renderer := render.NewRenderer(blobs, cfg.FontDir, cfg.TextureDir)
		svc := service.NewExportService(cards, renderer)

		rendered := 0
		for _, id := range ids {
			png, name, err := svc.ExportOne(ctx, id)
			if err != nil {
				color.Red("skipping %s: %v", id, err)
				continue
			}
			out := filepath.Join(exportOutFlag, name)
			if err := os.WriteFile(out, png, 0644); err != nil {
				return fmt.Errorf("error writing %s: %v", out, err)
			}
			fmt.Printf("  %s\n", out)
			rendered++
		}

		color.Green("Rendered %d cards.", rendered)
		return nil
	},
}
