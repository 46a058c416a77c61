package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/odds-cache-service/internal/models"
)

const (
	// DefaultBaseURL is the odds API root
	DefaultBaseURL = "https://api.mockodds.com/v4"
	// DefaultAPIKey is sent when no API key is configured
	DefaultAPIKey = "mock_api_key_for_testing"

	// SportUpcoming is the feed of upcoming events across all sports
	SportUpcoming = "upcoming"
	// SportLive is the feed of events that have started
	SportLive = "live"
)

// HTTPSourceConfig holds odds API connection settings
type HTTPSourceConfig struct {
	BaseURL string
	APIKey  string
	Sport   string // Feed to snapshot: SportUpcoming, SportLive or a sport key
	Regions string
	Markets string
	Timeout time.Duration
}

// HTTPSource fetches odds from the REST odds API
type HTTPSource struct {
	config HTTPSourceConfig
	client *http.Client
	logger zerolog.Logger
}

// oddsResponse is the envelope of every odds API response
type oddsResponse struct {
	Success bool               `json:"success"`
	Data    []models.OddsEvent `json:"data"`
}

// NewHTTPSource creates a new odds API client
func NewHTTPSource(config HTTPSourceConfig, logger zerolog.Logger) *HTTPSource {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.APIKey == "" {
		config.APIKey = DefaultAPIKey
	}
	if config.Sport == "" {
		config.Sport = SportUpcoming
	}
	if config.Regions == "" {
		config.Regions = "us"
	}
	if config.Markets == "" {
		config.Markets = "h2h"
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	return &HTTPSource{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger.With().Str("component", "http_source").Logger(),
	}
}

// Fetch retrieves the odds of the configured feed
func (s *HTTPSource) Fetch(ctx context.Context) ([]models.OddsEvent, error) {
	u, err := s.OddsURL()
	if err != nil {
		return nil, err
	}
	return s.fetch(ctx, u)
}

// OddsURL builds the odds endpoint URL of the configured feed
func (s *HTTPSource) OddsURL() (string, error) {
	return s.buildURL([]string{"sports", s.config.Sport, "odds"}, url.Values{
		"dateFormat": {"iso"},
	})
}

func (s *HTTPSource) buildURL(segments []string, extra url.Values) (string, error) {
	if strings.ContainsAny(s.config.Sport, "/?#") {
		return "", fmt.Errorf("%w: sport %q", ErrInvalidURL, s.config.Sport)
	}

	base, err := url.Parse(s.config.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, s.config.BaseURL)
	}

	u := base.JoinPath(segments...)

	query := url.Values{}
	query.Set("apiKey", s.config.APIKey)
	query.Set("regions", s.config.Regions)
	query.Set("markets", s.config.Markets)
	for k, v := range extra {
		query[k] = v
	}
	u.RawQuery = query.Encode()

	return u.String(), nil
}

func (s *HTTPSource) fetch(ctx context.Context, u string) ([]models.OddsEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, serverError(resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: unexpected status %d", ErrInvalidResponse, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %w", ErrRequestFailed, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrNoData
	}

	var envelope oddsResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecoding, err)
	}
	if !envelope.Success {
		return nil, fmt.Errorf("%w: request was not successful", ErrInvalidResponse)
	}
	if envelope.Data == nil {
		envelope.Data = []models.OddsEvent{}
	}

	s.logger.Debug().
		Int("event_count", len(envelope.Data)).
		Dur("duration", time.Since(start)).
		Msg("fetched odds from upstream")

	return envelope.Data, nil
}
