package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	platformerrors "github.com/jmgilman/go/errors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/odds-cache-service/internal/cache"
	"github.com/cypherlabdev/odds-cache-service/internal/models"
	"github.com/cypherlabdev/odds-cache-service/pkg/pricing"
)

//go:generate mockgen -destination=../../mocks/mock_odds_service.go -package=mocks github.com/cypherlabdev/odds-cache-service/internal/handler/http OddsService

// OddsService is the odds repository as seen by the HTTP API
type OddsService interface {
	Fetch(ctx context.Context) ([]models.OddsEvent, error)
	Refresh(ctx context.Context) ([]models.OddsEvent, error)
	PeekCache(ctx context.Context) ([]models.OddsEvent, bool)
	CacheInfo(ctx context.Context) (cache.SnapshotInfo, bool)
	ClearCache(ctx context.Context)
}

var (
	errMethodNotAllowed = platformerrors.New(platformerrors.CodeInvalidInput, "method not allowed")
	errNoCachedOdds     = platformerrors.New(platformerrors.CodeNotFound, "no fresh odds in cache")
	errCacheEmpty       = platformerrors.New(platformerrors.CodeNotFound, "cache is empty")
	errEventNotFound    = platformerrors.New(platformerrors.CodeNotFound, "event not found")
	errMissingEventID   = platformerrors.New(platformerrors.CodeInvalidInput, "event id is required")
)

// OddsHandler handles HTTP requests for cached odds
type OddsHandler struct {
	service OddsService
	logger  zerolog.Logger
}

// NewOddsHandler creates a new odds HTTP handler
func NewOddsHandler(service OddsService, logger zerolog.Logger) *OddsHandler {
	return &OddsHandler{
		service: service,
		logger:  logger.With().Str("component", "odds_handler").Logger(),
	}
}

// RegisterRoutes registers HTTP routes with the provided mux
func (h *OddsHandler) RegisterRoutes(mux *http.ServeMux) {
	// GET /api/v1/odds?sport= - Cache-first odds, optionally filtered by sport
	mux.HandleFunc("/api/v1/odds", h.handleGetOdds)

	// POST /api/v1/odds/refresh - Force an upstream fetch
	mux.HandleFunc("/api/v1/odds/refresh", h.handleRefresh)

	// GET /api/v1/odds/cached - Fresh cached odds only, never calls upstream
	mux.HandleFunc("/api/v1/odds/cached", h.handleGetCached)

	// GET, DELETE /api/v1/odds/cache - Snapshot metadata and invalidation
	mux.HandleFunc("/api/v1/odds/cache", h.handleCache)

	// GET /api/v1/events/:event_id - One event with its best odds
	mux.HandleFunc("/api/v1/events/", h.handleGetEvent)

	// GET /api/v1/sports - Sports present in the current odds
	mux.HandleFunc("/api/v1/sports", h.handleGetSports)
}

// handleGetOdds handles GET /api/v1/odds
func (h *OddsHandler) handleGetOdds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
		return
	}

	events, err := h.service.Fetch(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to fetch odds")
		h.errorResponse(w, statusFor(err), err)
		return
	}

	sport := r.URL.Query().Get("sport")
	h.jsonResponse(w, http.StatusOK, toOddsResponse(models.FilterBySport(events, sport), sport))
}

// handleRefresh handles POST /api/v1/odds/refresh
func (h *OddsHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.errorResponse(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
		return
	}

	events, err := h.service.Refresh(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to refresh odds")
		h.errorResponse(w, statusFor(err), err)
		return
	}

	h.jsonResponse(w, http.StatusOK, toOddsResponse(events, ""))
}

// handleGetCached handles GET /api/v1/odds/cached
func (h *OddsHandler) handleGetCached(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
		return
	}

	events, ok := h.service.PeekCache(r.Context())
	if !ok {
		h.errorResponse(w, http.StatusNotFound, errNoCachedOdds)
		return
	}

	h.jsonResponse(w, http.StatusOK, toOddsResponse(events, ""))
}

// handleCache handles GET and DELETE /api/v1/odds/cache
func (h *OddsHandler) handleCache(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		info, ok := h.service.CacheInfo(r.Context())
		if !ok {
			h.errorResponse(w, http.StatusNotFound, errCacheEmpty)
			return
		}
		h.jsonResponse(w, http.StatusOK, toCacheInfoResponse(info))

	case http.MethodDelete:
		h.service.ClearCache(r.Context())
		h.logger.Info().Msg("odds cache cleared via API")
		w.WriteHeader(http.StatusNoContent)

	default:
		h.errorResponse(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
	}
}

// handleGetEvent handles GET /api/v1/events/:event_id
func (h *OddsHandler) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
		return
	}

	eventID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/events/"), "/")
	if eventID == "" || strings.Contains(eventID, "/") {
		h.errorResponse(w, http.StatusBadRequest, errMissingEventID)
		return
	}

	events, err := h.service.Fetch(r.Context())
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("event_id", eventID).
			Msg("failed to fetch odds for event")
		h.errorResponse(w, statusFor(err), err)
		return
	}

	event, ok := models.FindEvent(events, eventID)
	if !ok {
		h.logger.Debug().Str("event_id", eventID).Msg("event not found")
		h.errorResponse(w, http.StatusNotFound, errEventNotFound)
		return
	}

	h.jsonResponse(w, http.StatusOK, toEventResponse(event))
}

// handleGetSports handles GET /api/v1/sports
func (h *OddsHandler) handleGetSports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
		return
	}

	events, err := h.service.Fetch(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to fetch odds for sports")
		h.errorResponse(w, statusFor(err), err)
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"sports": models.UniqueSports(events),
	})
}

// jsonResponse writes a JSON response
func (h *OddsHandler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// errorResponse writes err as a JSON error body. Wrapped causes are not exposed.
func (h *OddsHandler) errorResponse(w http.ResponseWriter, status int, err error) {
	h.jsonResponse(w, status, platformerrors.ToJSON(err))
}

// statusFor maps an error code to an HTTP status
func statusFor(err error) int {
	switch platformerrors.GetCode(err) {
	case platformerrors.CodeUnavailable, platformerrors.CodeNetwork:
		return http.StatusServiceUnavailable
	case platformerrors.CodeUnauthorized:
		// The upstream rejected our credentials
		return http.StatusBadGateway
	case platformerrors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// OddsResponse represents the API response for a list of events
type OddsResponse struct {
	Sport  string             `json:"sport,omitempty"`
	Count  int                `json:"count"`
	Events []models.OddsEvent `json:"events"`
}

func toOddsResponse(events []models.OddsEvent, sport string) *OddsResponse {
	if events == nil {
		events = []models.OddsEvent{}
	}
	return &OddsResponse{
		Sport:  sport,
		Count:  len(events),
		Events: events,
	}
}

// EventResponse represents the API response for a single event
type EventResponse struct {
	Event        models.OddsEvent           `json:"event"`
	Title        string                     `json:"title"`
	BestOdds     []models.Outcome           `json:"best_odds"`
	Overround    string                     `json:"overround"`
	Comparison   map[string][]PriceResponse `json:"comparison"` // Every bookmaker's price per outcome, best first
	Arbitrage    bool                       `json:"arbitrage"`
	ProfitMargin *string                    `json:"profit_margin"` // Percent of stake; null without arbitrage
}

// PriceResponse is one bookmaker's price for an outcome
type PriceResponse struct {
	Bookmaker string          `json:"bookmaker"`
	Price     decimal.Decimal `json:"price"`
	Best      bool            `json:"best"`
}

func toEventResponse(event models.OddsEvent) *EventResponse {
	best := pricing.BestOdds(event)
	if best == nil {
		best = []models.Outcome{}
	}

	comparison := make(map[string][]PriceResponse, len(best))
	for _, o := range best {
		prices := pricing.ComparePrices(event, o.Name)
		resp := make([]PriceResponse, len(prices))
		for i, p := range prices {
			resp[i] = PriceResponse{Bookmaker: p.Bookmaker, Price: p.Price, Best: p.Best}
		}
		comparison[o.Name] = resp
	}

	resp := &EventResponse{
		Event:      event,
		Title:      event.DisplayTitle(),
		BestOdds:   best,
		Overround:  pricing.Overround(best).StringFixed(4),
		Comparison: comparison,
	}
	if arb, ok := pricing.FindArbitrage(event); ok {
		margin := arb.ProfitMargin.StringFixed(2)
		resp.Arbitrage = true
		resp.ProfitMargin = &margin
	}
	return resp
}

// CacheInfoResponse represents the API response for snapshot metadata
type CacheInfoResponse struct {
	StoredAt         string  `json:"stored_at"`
	ExpiresAt        *string `json:"expires_at"` // Null when the snapshot never expires
	RemainingSeconds float64 `json:"remaining_seconds"`
	Fresh            bool    `json:"fresh"`
	NeverExpires     bool    `json:"never_expires"`
	EventCount       int     `json:"event_count"`
}

func toCacheInfoResponse(info cache.SnapshotInfo) *CacheInfoResponse {
	resp := &CacheInfoResponse{
		StoredAt:         info.StoredAt.Format(time.RFC3339Nano),
		RemainingSeconds: info.Remaining.Seconds(),
		Fresh:            info.Fresh,
		NeverExpires:     info.NeverExpires,
		EventCount:       info.EventCount,
	}
	if !info.NeverExpires {
		expiresAt := info.ExpiresAt.Format(time.RFC3339Nano)
		resp.ExpiresAt = &expiresAt
	}
	return resp
}
