// Package batch turns a CSV of card records plus an optional zip of artwork
// into validated cards, isolating per-row failures from the batch.
package batch

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/cardforge/card-services/internal/cardsvc/archive"
	"github.com/cardforge/card-services/internal/cardsvc/models"
	"github.com/cardforge/card-services/internal/cardsvc/store"
)

// ErrParseFailure aborts the whole batch: the CSV itself is malformed, as
// opposed to a single bad row.
var ErrParseFailure = errors.New("card data cannot be parsed")

// Result is the outcome of one batch run. Cards are in source order.
type Result struct {
	Cards          []models.Card
	SuccessCount   int
	ErrorCount     int
	DroppedCount   int
	ArchiveWarning string
}

// Pipeline correlates CSV rows with archived artwork and produces validated
// cards. Artwork found in the archive is persisted through the blob store so
// the collection itself stays free of binary data.
type Pipeline struct {
	blobs *store.BlobStore
}

func NewPipeline(blobs *store.BlobStore) *Pipeline {
	return &Pipeline{blobs: blobs}
}

// Run processes every row of the CSV in order. Rows without a title are
// silently dropped; a row whose artwork cannot be stored counts as an error
// and processing continues. Only an unparseable CSV aborts the run.
func (p *Pipeline) Run(ctx context.Context, csvFile io.Reader, zipBytes []byte) (*Result, error) {
	res := &Result{}

	images, err := archive.Extract(zipBytes)
	if err != nil {
		// Degrade to "no archive": rows fall back to direct locators
		// or the placeholder.
		log.Warnf("batch archive unreadable, continuing without images: %v", err)
		res.ArchiveWarning = err.Error()
		images = map[string][]byte{}
	}

	reader := csv.NewReader(csvFile)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	fields := newHeaderIndex(header)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
		}
		if blankRow(row) {
			continue
		}

		raw := models.RawRecord{
			Title:         fields.get(row, "title"),
			Category:      fields.get(row, "type"),
			Color:         fields.get(row, "color"),
			RulesText:     fields.get(row, "rulestext"),
			FlavorText:    fields.get(row, "flavortext"),
			Image:         fields.get(row, "image"),
			Layout:        fields.get(row, "layout"),
			Font:          fields.get(row, "font"),
			Texture:       fields.get(row, "texture"),
			ImagePosition: fields.get(row, "imageposition"),
		}

		if strings.TrimSpace(raw.Title) == "" {
			res.DroppedCount++
			continue
		}

		imageFileName := strings.TrimSpace(fields.get(row, "imagefilename"))
		if content, ok := images[imageFileName]; imageFileName != "" && ok {
			ref, err := p.blobs.Save(content, mimeFromName(imageFileName), imageFileName)
			if err != nil {
				log.Errorf("batch row %q: failed to store image %s: %v", raw.Title, imageFileName, err)
				res.ErrorCount++
				continue
			}
			raw.Image = ref
		}

		card, err := models.Normalize(raw)
		if err != nil {
			log.Errorf("batch row %q: %v", raw.Title, err)
			res.ErrorCount++
			continue
		}

		res.Cards = append(res.Cards, card)
		res.SuccessCount++
	}

	return res, nil
}

// headerIndex maps lowercased header names to column positions. Unrecognized
// headers simply never get looked up.
type headerIndex map[string]int

func newHeaderIndex(header []string) headerIndex {
	idx := make(headerIndex, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return idx
}

func (h headerIndex) get(row []string, field string) string {
	i, ok := h[field]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func mimeFromName(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(lower, ".gif"):
		return "image/gif"
	case strings.HasSuffix(lower, ".webp"):
		return "image/webp"
	default:
		return "image/png"
	}
}
