package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	config "github.com/cardforge/card-services/configs"
	"github.com/cardforge/card-services/internal/cardsvc/batch"
	handlers "github.com/cardforge/card-services/internal/cardsvc/handlers"
	"github.com/cardforge/card-services/internal/cardsvc/render"
	"github.com/cardforge/card-services/internal/cardsvc/service"
	"github.com/cardforge/card-services/internal/cardsvc/store"
	"github.com/cardforge/card-services/internal/cardsvc/ws"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "card"

var instanceId string

func init() {
	instanceId = "001"
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	dataDir := config.DataDir()

	blobStore := store.NewBlobStore(filepath.Join(dataDir, "blobs"))
	if err := blobStore.Init(); err != nil {
		log.Fatalf("Failed to initialize blob store: %v", err)
	}

	cardStore := store.NewCardStore(dataDir)
	if err := cardStore.Init(); err != nil {
		log.Fatalf("Failed to initialize card store: %v", err)
	}
	log.Printf("local stores initialized at %s", dataDir)

	hub := ws.NewHub()

	cardService := service.NewCardService(cardStore, blobStore, hub)

	pipeline := batch.NewPipeline(blobStore)
	batchService := service.NewBatchService(pipeline, cardStore, hub)

	renderer := render.NewRenderer(blobStore, os.Getenv("FONT_DIR"), os.Getenv("TEXTURE_DIR"))
	exportService := service.NewExportService(cardStore, renderer)

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	rateLimit := 600
	if rateLimitStr := os.Getenv("RATE_LIMIT"); rateLimitStr != "" {
		var err error
		rateLimit, err = strconv.Atoi(rateLimitStr)
		if err != nil {
			log.Fatalf("Invalid RATE_LIMIT value: %v", err)
		}
	}
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(cardService, batchService, exportService, blobStore, hub)
	h.SetRoutes(r)

	port := os.Getenv("CARD_SERVICE_PORT")
	if port == "" {
		port = "8080"
	}

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
