package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"travelease/internal/common/logger"
)

func TestWebSearch_Events(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "events in Boston, USA 2025-06-01 2025-06-03", r.URL.Query().Get("q"))
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		assert.Equal(t, "cx1", r.URL.Query().Get("cx"))
		_, _ = w.Write([]byte("Harborfest, June 1"))
	}))
	defer server.Close()

	ws := NewWebSearch(Config{BaseURL: server.URL, APIKey: "k", EngineID: "cx1"}, logger.NewTestLogger(t))
	got := ws.Events(context.Background(), "Boston, USA", "2025-06-01", "2025-06-03")
	assert.Equal(t, "Harborfest, June 1", got)
}

func TestWebSearch_WeatherQueryTrimmed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Paris average weather", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte("mild"))
	}))
	defer server.Close()

	ws := NewWebSearch(Config{BaseURL: server.URL}, logger.NewTestLogger(t))
	assert.Equal(t, "mild", ws.Weather(context.Background(), "Paris", ""))
}

func TestWebSearch_FailuresBecomeText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	ws := NewWebSearch(Config{BaseURL: server.URL}, logger.NewTestLogger(t))
	assert.Equal(t, "weather failed: 429", ws.Weather(context.Background(), "Tokyo", "May"))
	assert.Equal(t, "search failed: 429", ws.Events(context.Background(), "Tokyo", "", ""))

	down := NewWebSearch(Config{BaseURL: "http://127.0.0.1:1"}, logger.NewTestLogger(t))
	assert.True(t, strings.HasPrefix(down.Weather(context.Background(), "Tokyo", "May"), "weather error: "))
	assert.True(t, strings.HasPrefix(down.Events(context.Background(), "Tokyo", "", ""), "search error: "))
}

func TestWebSearch_TruncatesLongBodies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 12000)))
	}))
	defer server.Close()

	ws := NewWebSearch(Config{BaseURL: server.URL}, logger.NewTestLogger(t))
	assert.Len(t, ws.Events(context.Background(), "Seoul", "", ""), MaxTextLength)
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	s := "ab" + "é" // é is two bytes
	assert.Equal(t, "ab", Truncate(s, 3))
	assert.Equal(t, s, Truncate(s, 4))
}
