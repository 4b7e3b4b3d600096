package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"herald/internal/eventlog"
	"herald/internal/ingest"
	"herald/internal/platform/middleware"
	"herald/pkg/platform/httputil"
	"herald/pkg/platform/sentinel"
)

const (
	maxBatchBytes    = 1 << 20
	defaultListLimit = 50
	maxListLimit     = 500
)

// Processor runs a decoded batch as one unit of work.
type Processor interface {
	Process(ctx context.Context, batch ingest.Batch, entries []ingest.Entry) (ingest.Result, error)
}

// Lister reads back recorded events.
type Lister interface {
	ListRecent(ctx context.Context, limit int) ([]eventlog.Record, error)
}

// Handler exposes event ingestion over HTTP.
type Handler struct {
	processor Processor
	lister    Lister
	logger    *slog.Logger
}

// New constructs an ingest handler with its dependencies.
func New(processor Processor, lister Lister, logger *slog.Logger) *Handler {
	return &Handler{
		processor: processor,
		lister:    lister,
		logger:    logger,
	}
}

// Register mounts ingest endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/events", h.HandleIngest)
	r.Get("/v1/events", h.HandleListRecent)
}

// HandleIngest handles POST /v1/events. One request is one unit of work:
// the response reports success only after notifications were flushed.
func (h *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := chimw.GetReqID(ctx)

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBatchBytes))
	if err != nil {
		httputil.WriteError(w, fmt.Errorf("read batch: %w: %w", sentinel.ErrMalformed, err))
		return
	}

	batch, entries, err := ingest.Decode(raw)
	if err != nil {
		h.logger.WarnContext(ctx, "rejected malformed event batch",
			"request_id", requestID,
			"source", middleware.GetSource(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	result, err := h.processor.Process(ctx, batch, entries)
	if err != nil {
		h.logger.ErrorContext(ctx, "event batch failed",
			"request_id", requestID,
			"source", middleware.GetSource(ctx),
			"realm", batch.Realm,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, result)
}

type recordResponse struct {
	ID         string          `json:"id"`
	Category   string          `json:"category"`
	Kind       string          `json:"kind"`
	RealmID    string          `json:"realmId"`
	OccurredAt time.Time       `json:"occurredAt"`
	ReceivedAt time.Time       `json:"receivedAt"`
	Payload    json.RawMessage `json:"payload"`
}

// HandleListRecent handles GET /v1/events?limit=N.
func (h *Handler) HandleListRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httputil.WriteError(w, fmt.Errorf("limit must be a positive integer: %w", sentinel.ErrMalformed))
			return
		}
		limit = min(n, maxListLimit)
	}

	records, err := h.lister.ListRecent(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list events",
			"request_id", chimw.GetReqID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	out := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, recordResponse{
			ID:         rec.ID.String(),
			Category:   rec.Category,
			Kind:       rec.Kind,
			RealmID:    rec.RealmID,
			OccurredAt: rec.OccurredAt,
			ReceivedAt: rec.ReceivedAt,
			Payload:    rec.Payload,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": out})
}
