package comm

import (
	"encoding/json"
)

type WSMessage struct {
	Type     string          `json:"type"` // e.g. "card_saved", "batch_complete"
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid"`
}

type CardEvent struct {
	CardId string `json:"card_id"`
	Title  string `json:"title"`
}

type CardsDeleted struct {
	CardIds []string `json:"card_ids"`
}

type BatchReport struct {
	SuccessCount   int    `json:"success_count"`
	ErrorCount     int    `json:"error_count"`
	DroppedCount   int    `json:"dropped_count"`
	ArchiveWarning string `json:"archive_warning,omitempty"`
}

type ExportReport struct {
	RenderedCount int      `json:"rendered_count"`
	FailedIds     []string `json:"failed_ids,omitempty"`
}
