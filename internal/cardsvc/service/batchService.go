package service

import (
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/cardforge/card-services/internal/cardsvc/batch"
	"github.com/cardforge/card-services/internal/cardsvc/store"
	"github.com/cardforge/card-services/internal/cardsvc/ws"
	"github.com/cardforge/card-services/internal/comm"
)

// BatchService runs the import pipeline and persists its output into the
// collection.
type BatchService struct {
	pipeline *batch.Pipeline
	cards    *store.CardStore
	hub      *ws.Hub
}

func NewBatchService(pipeline *batch.Pipeline, cards *store.CardStore, hub *ws.Hub) *BatchService {
	return &BatchService{pipeline: pipeline, cards: cards, hub: hub}
}

// Import processes a CSV plus optional image archive and appends every
// validated card to the collection. A row that validated but fails to
// persist moves from the success to the error count; the batch keeps going.
func (s *BatchService) Import(ctx context.Context, csvFile io.Reader, zipBytes []byte) (*comm.BatchReport, error) {
	res, err := s.pipeline.Run(ctx, csvFile, zipBytes)
	if err != nil {
		return nil, fmt.Errorf("batch import failed: %w", err)
	}

	report := &comm.BatchReport{
		ErrorCount:     res.ErrorCount,
		DroppedCount:   res.DroppedCount,
		ArchiveWarning: res.ArchiveWarning,
	}

	for _, card := range res.Cards {
		if err := s.cards.Upsert(ctx, card); err != nil {
			log.Errorf("batch: failed to persist %q: %v", card.Title, err)
			report.ErrorCount++
			continue
		}
		report.SuccessCount++
	}

	log.Infof("batch import done: %d created, %d errors, %d dropped",
		report.SuccessCount, report.ErrorCount, report.DroppedCount)
	s.hub.Broadcast("batch_complete", report)
	return report, nil
}
