package service

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/klauspost/compress/zip"
	log "github.com/sirupsen/logrus"

	"github.com/cardforge/card-services/internal/cardsvc/render"
	"github.com/cardforge/card-services/internal/cardsvc/store"
	"github.com/cardforge/card-services/internal/comm"
)

// ExportService renders cards to PNG, one at a time or bundled into a zip.
type ExportService struct {
	cards    *store.CardStore
	renderer *render.Renderer
}

func NewExportService(cards *store.CardStore, renderer *render.Renderer) *ExportService {
	return &ExportService{cards: cards, renderer: renderer}
}

// ExportOne renders one card and returns the PNG bytes plus a download
// filename derived from the title.
func (s *ExportService) ExportOne(ctx context.Context, id string) ([]byte, string, error) {
	card, err := s.cards.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if card == nil {
		return nil, "", ErrCardNotFound
	}

	png, err := s.renderer.RenderPNG(*card)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render card %s: %w", id, err)
	}
	return png, exportName(card.Title) + ".png", nil
}

// ExportMany renders the requested cards into a single zip archive. Ids that
// cannot be rendered are skipped and reported; they never abort the export.
func (s *ExportService) ExportMany(ctx context.Context, ids []string) ([]byte, *comm.ExportReport, error) {
	report := &comm.ExportReport{}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	used := make(map[string]int)

	for _, id := range ids {
		card, err := s.cards.Get(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if card == nil {
			report.FailedIds = append(report.FailedIds, id)
			continue
		}

		png, err := s.renderer.RenderPNG(*card)
		if err != nil {
			log.Errorf("export: failed to render %q: %v", card.Title, err)
			report.FailedIds = append(report.FailedIds, id)
			continue
		}

		name := exportName(card.Title)
		used[name]++
		if n := used[name]; n > 1 {
			name = fmt.Sprintf("%s-%d", name, n)
		}

		w, err := zw.Create(name + ".png")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to add %s to archive: %w", name, err)
		}
		if _, err := w.Write(png); err != nil {
			return nil, nil, fmt.Errorf("failed to write %s to archive: %w", name, err)
		}
		report.RenderedCount++
	}

	if err := zw.Close(); err != nil {
		return nil, nil, fmt.Errorf("failed to finalize export archive: %w", err)
	}
	return buf.Bytes(), report, nil
}

var unsafeNameChars = regexp.MustCompile(`[^a-z0-9-]+`)

func exportName(title string) string {
	name := strings.ToLower(strings.TrimSpace(title))
	name = strings.ReplaceAll(name, " ", "-")
	name = unsafeNameChars.ReplaceAllString(name, "")
	if name == "" {
		name = "card"
	}
	return name
}
