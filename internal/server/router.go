// Package server builds the relay's HTTP router.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/imagedrop/service/internal/config"
	"github.com/imagedrop/service/internal/ledger"
	"github.com/imagedrop/service/internal/logger"
	appMiddleware "github.com/imagedrop/service/internal/middleware"
	"github.com/imagedrop/service/internal/relay"
	"github.com/imagedrop/service/internal/storage"

	_ "github.com/imagedrop/service/docs/swagger"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger
	Store  storage.Storage
	Ledger *ledger.Service
}

// NewRouter wires dependencies: relay → handler, ledger → handler.
func NewRouter(d Deps) http.Handler {
	ledgerSvc := d.Ledger
	if ledgerSvc == nil {
		ledgerSvc = ledger.NewService(nil)
	}

	uploadHandler := relay.NewHandler(
		relay.New(d.Store),
		relay.MultipartDecoder{Dir: d.Config.Relay.TempDir},
		relay.WithRecorder(ledgerSvc),
		relay.WithPartialReport(d.Config.Relay.ReportPartial),
	)
	ledgerHandler := ledger.NewHandler(ledgerSvc)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.TraceID(d.Logger))
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", appMiddleware.TraceIDHeader},
		ExposedHeaders:   []string{appMiddleware.TraceIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.With(appMiddleware.RequireSession(d.Config.App.JWTSecret)).
		Post(d.Config.Relay.Path, uploadHandler.Upload)
	r.Get("/api/uploads", ledgerHandler.List)

	return r
}
