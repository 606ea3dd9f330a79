package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/cardforge/card-services/internal/cardsvc/batch"
	"github.com/cardforge/card-services/internal/cardsvc/models"
	"github.com/cardforge/card-services/internal/cardsvc/service"
	"github.com/cardforge/card-services/internal/cardsvc/store"
	"github.com/cardforge/card-services/internal/cardsvc/ws"
)

const maxUploadBytes = 64 << 20

type Handler struct {
	cardService   *service.CardService
	batchService  *service.BatchService
	exportService *service.ExportService
	blobs         *store.BlobStore
	hub           *ws.Hub
	upgrader      websocket.Upgrader
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

func NewHandler(cardService *service.CardService, batchService *service.BatchService,
	exportService *service.ExportService, blobs *store.BlobStore, hub *ws.Hub) *Handler {
	return &Handler{
		cardService:   cardService,
		batchService:  batchService,
		exportService: exportService,
		blobs:         blobs,
		hub:           hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) errorResponse(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrCardNotFound):
		code = http.StatusNotFound
	case errors.Is(err, models.ErrInvalidRecord), errors.Is(err, batch.ErrParseFailure):
		code = http.StatusBadRequest
	case errors.Is(err, store.ErrStorageUnavailable):
		code = http.StatusServiceUnavailable
	}
	h.CreateResponse(w, Response{Message: "request failed", Code: code, Error: err.Error()})
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "card service is running at port " + os.Getenv("CARD_SERVICE_PORT"),
		Code:    200,
		Data:    nil,
	}
	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode health response: %v", err)
	}
}

func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.cardService.List(r.Context())
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "cards", Code: 200, Data: cards})
}

func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "cardID")
	card, err := h.cardService.Get(r.Context(), id)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	if card == nil {
		h.errorResponse(w, service.ErrCardNotFound)
		return
	}
	h.CreateResponse(w, Response{Message: "card", Code: 200, Data: card})
}

func (h *Handler) SaveCard(w http.ResponseWriter, r *http.Request) {
	var card models.Card
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil {
		h.CreateResponse(w, Response{Message: "invalid payload", Code: 400, Error: err.Error()})
		return
	}

	saved, err := h.cardService.Save(r.Context(), card)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "card saved", Code: 200, Data: saved})
}

func (h *Handler) DuplicateCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "cardID")
	dup, err := h.cardService.Duplicate(r.Context(), id)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "card duplicated", Code: 200, Data: dup})
}

func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "cardID")
	if err := h.cardService.Delete(r.Context(), id); err != nil {
		h.errorResponse(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "card deleted", Code: 200})
}

func (h *Handler) DeleteCards(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Ids []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.CreateResponse(w, Response{Message: "invalid payload", Code: 400, Error: err.Error()})
		return
	}

	if err := h.cardService.DeleteMany(r.Context(), payload.Ids); err != nil {
		h.errorResponse(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "cards deleted", Code: 200})
}

// BatchImport accepts a multipart form with a "cards" CSV and an optional
// "images" zip and runs the import pipeline.
func (h *Handler) BatchImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.CreateResponse(w, Response{Message: "invalid multipart form", Code: 400, Error: err.Error()})
		return
	}

	csvFile, _, err := r.FormFile("cards")
	if err != nil {
		h.CreateResponse(w, Response{Message: "missing cards file", Code: 400, Error: err.Error()})
		return
	}
	defer csvFile.Close()

	var zipBytes []byte
	if zipFile, _, err := r.FormFile("images"); err == nil {
		defer zipFile.Close()
		zipBytes, err = io.ReadAll(zipFile)
		if err != nil {
			h.CreateResponse(w, Response{Message: "unreadable images file", Code: 400, Error: err.Error()})
			return
		}
	}

	report, err := h.batchService.Import(r.Context(), csvFile, zipBytes)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "batch complete", Code: 200, Data: report})
}

// UploadImage stores a single artwork file for the editor flow and returns
// its blob reference plus the resolved display path.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.CreateResponse(w, Response{Message: "invalid multipart form", Code: 400, Error: err.Error()})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		h.CreateResponse(w, Response{Message: "missing image file", Code: 400, Error: err.Error()})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.CreateResponse(w, Response{Message: "unreadable image file", Code: 400, Error: err.Error()})
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	ref, err := h.cardService.UploadImage(r.Context(), data, mimeType, header.Filename)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	display, err := h.cardService.ResolveImage(ref)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	h.CreateResponse(w, Response{Message: "image stored", Code: 200, Data: map[string]string{
		"reference": ref,
		"url":       display,
	}})
}

// ServeBlob streams a stored artwork payload.
func (h *Handler) ServeBlob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "blobID")
	data, meta, err := h.blobs.Open(id)
	if err != nil {
		h.CreateResponse(w, Response{Message: "blob not found", Code: 404, Error: err.Error()})
		return
	}

	w.Header().Set("Content-Type", meta.MimeType)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	if _, err := w.Write(data); err != nil {
		log.Errorf("Failed to stream blob %s: %v", id, err)
	}
}

// ExportCard renders one card and offers it as a PNG download.
func (h *Handler) ExportCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "cardID")
	png, name, err := h.exportService.ExportOne(r.Context(), id)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := w.Write(png); err != nil {
		log.Errorf("Failed to stream export for card %s: %v", id, err)
	}
}

// ExportCards renders the requested cards into one zip download.
func (h *Handler) ExportCards(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Ids []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.CreateResponse(w, Response{Message: "invalid payload", Code: 400, Error: err.Error()})
		return
	}

	archive, report, err := h.exportService.ExportMany(r.Context(), payload.Ids)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	log.Infof("bulk export: %d rendered, %d failed", report.RenderedCount, len(report.FailedIds))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="cards.zip"`)
	if _, err := w.Write(archive); err != nil {
		log.Errorf("Failed to stream export archive: %v", err)
	}
}

// HandleWebSocket upgrades gallery clients onto the event hub.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("Failed to upgrade to WebSocket: %v", err)
		http.Error(w, "Failed to upgrade to WebSocket", http.StatusInternalServerError)
		return
	}

	socketId := uuid.New().String()
	h.hub.StoreConnection(socketId, conn)

	log.Infof("New WebSocket connection established: %s", socketId)

	go h.handleConnection(conn, socketId)
}

func (h *Handler) handleConnection(conn *websocket.Conn, socketId string) {
	defer func() {
		log.Infof("Closing WebSocket connection: %s", socketId)
		conn.Close()
		h.hub.RemoveConnection(socketId)
	}()

	// Gallery clients only listen; reads exist to notice disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Errorf("WebSocket unexpected close error for socket %s: %v", socketId, err)
			} else {
				log.Infof("WebSocket connection closed normally for socket: %s", socketId)
			}
			return
		}
	}
}
