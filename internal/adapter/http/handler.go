package httpadapter

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"vaquinha/internal/core/port"
	"vaquinha/internal/notify"
)

// Subscriber opens event subscriptions; *notify.Hub implements it.
type Subscriber interface {
	Subscribe(ctx context.Context, opts notify.SubscribeOptions) (*notify.Subscription, error)
}

// Handler contains dependencies and routes. It is an inbound adapter for HTTP.
// It holds the campaign use case, an optional event subscriber for the
// streaming endpoint and a logger for structured logging. Routes are
// registered on a chi.Router.
type Handler struct {
	svc          port.CampaignUseCase
	events       Subscriber
	logger       *slog.Logger
	callerHeader string
	router       chi.Router
}

// NewHandler creates a handler with all routes configured. events may be
// nil, in which case the stream endpoint answers 404. callerHeader names the
// header carrying the caller identity.
func NewHandler(svc port.CampaignUseCase, events Subscriber, logger *slog.Logger, callerHeader string) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if callerHeader == "" {
		callerHeader = "X-Caller"
	}
	h := &Handler{svc: svc, events: events, logger: logger, callerHeader: callerHeader}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/campaigns", func(r chi.Router) {
			r.Post("/", h.handleCreateCampaign)
			r.Get("/", h.handleListCampaigns)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.handleGetCampaign)
				r.Get("/balance", h.handleBalance)
				r.Post("/donations", h.handleDonate)
				r.Post("/withdrawal", h.handleWithdraw)
			})
		})
		r.Get("/events", h.handleListEvents)
		r.Get("/events/stream", h.handleStreamEvents)
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}
