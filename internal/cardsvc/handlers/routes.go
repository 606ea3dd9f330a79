package handlers

import (
	"github.com/go-chi/chi"
)

func (h *Handler) SetRoutes(r *chi.Mux) {
	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", h.HealthHandler)
		r.Get("/ws", h.HandleWebSocket)

		r.Route("/cards", func(r chi.Router) {
			r.Get("/", h.ListCards)
			r.Post("/", h.SaveCard)
			r.Post("/delete", h.DeleteCards)
			r.Get("/{cardID}", h.GetCard)
			r.Delete("/{cardID}", h.DeleteCard)
			r.Post("/{cardID}/duplicate", h.DuplicateCard)
			r.Get("/{cardID}/image.png", h.ExportCard)
		})

		r.Post("/batch", h.BatchImport)
		r.Post("/uploads", h.UploadImage)
		r.Post("/export", h.ExportCards)
		r.Get("/blobs/{blobID}", h.ServeBlob)
	})
}
