// Package lookup provides the auxiliary weather and event searches the
// itinerary oracle is given as context. Lookups never fail: problems come
// back as text that the oracle reads like any other result.
package lookup

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	httpclient "travelease/internal/common/http"
	"travelease/internal/common/logger"
)

// MaxTextLength bounds the text returned by a lookup.
const MaxTextLength = 5000

// Service answers free-text questions about a location.
type Service interface {
	Weather(ctx context.Context, location, month string) string
	Events(ctx context.Context, location, start, end string) string
}

// Config configures WebSearch.
type Config struct {
	BaseURL  string
	APIKey   string
	EngineID string
	Timeout  time.Duration
}

// WebSearch runs queries against a Custom-Search style endpoint
// (GET base?q=...&key=...&cx=...).
type WebSearch struct {
	config Config
	client *httpclient.Client
	logger logger.Logger
}

func NewWebSearch(cfg Config, log logger.Logger) *WebSearch {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &WebSearch{
		config: cfg,
		client: httpclient.NewClient(cfg.Timeout),
		logger: log.With(map[string]interface{}{"component": "lookup"}),
	}
}

// Weather returns brief climate information for location in month.
func (w *WebSearch) Weather(ctx context.Context, location, month string) string {
	q := strings.TrimSpace(fmt.Sprintf("%s average weather %s", location, month))
	return w.search(ctx, "weather", q)
}

// Events returns public events in location between start and end.
func (w *WebSearch) Events(ctx context.Context, location, start, end string) string {
	q := strings.TrimSpace(fmt.Sprintf("events in %s %s %s", location, start, end))
	return w.search(ctx, "search", q)
}

func (w *WebSearch) search(ctx context.Context, kind, q string) string {
	params := url.Values{"q": {q}}
	if w.config.APIKey != "" {
		params.Set("key", w.config.APIKey)
	}
	if w.config.EngineID != "" {
		params.Set("cx", w.config.EngineID)
	}

	status, body, err := w.client.Get(ctx, w.config.BaseURL, params)
	if err != nil {
		w.logger.Warn("Lookup failed", map[string]interface{}{"kind": kind, "query": q, "error": err.Error()})
		return fmt.Sprintf("%s error: %v", kind, err)
	}
	if status != http.StatusOK {
		w.logger.Warn("Lookup returned non-OK status", map[string]interface{}{"kind": kind, "query": q, "status": status})
		return fmt.Sprintf("%s failed: %d", kind, status)
	}
	return Truncate(string(body), MaxTextLength)
}

// Truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Static answers every lookup with fixed text. It stands in for WebSearch
// when no search endpoint is configured.
type Static struct {
	WeatherText string
	EventsText  string
}

func (s Static) Weather(context.Context, string, string) string { return s.WeatherText }

func (s Static) Events(context.Context, string, string, string) string { return s.EventsText }
