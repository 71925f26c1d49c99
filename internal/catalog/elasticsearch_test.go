package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "travelease/internal/common/errors"
	"travelease/internal/common/logger"
	"travelease/internal/models"
)

func newTestESClient(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)
	return client
}

func hitsJSON(docs ...string) string {
	hits := make([]string, 0, len(docs))
	for i, d := range docs {
		hits = append(hits, fmt.Sprintf(`{"_id":"doc-%d","_source":%s}`, i+1, d))
	}
	return fmt.Sprintf(`{"took":1,"hits":{"total":{"value":%d},"hits":[%s]}}`, len(docs), strings.Join(hits, ","))
}

func TestElasticsearchSource_Load(t *testing.T) {
	client := newTestESClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/housing/_search"):
			fmt.Fprint(w, hitsJSON(
				`{"id":"H1","location":"Boston, USA","housing_type":"Apartment","cost_per_night":120,"amenities":["WiFi"],"safety":"high"}`,
				`{"location":"Boston, USA","housing_type":"House","cost_per_night":90,"safety_rating":3.2}`,
			))
		case strings.HasPrefix(r.URL.Path, "/cuisine/_search"):
			fmt.Fprint(w, hitsJSON(`{"id":"C1","location":"Boston, USA","cuisine_type":"Italian","pricing":"ultra high"}`))
		case strings.HasPrefix(r.URL.Path, "/experiences/_search"):
			fmt.Fprint(w, hitsJSON(`{"id":"E1","location":"Boston, USA","experience":"Charles River kayaking"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":"no such index"}`)
		}
	})

	src := NewElasticsearchSource(client, Indexes{Housing: "housing", Cuisine: "cuisine", Experience: "experiences"}, logger.NewTestLogger(t))
	store, err := src.Load(context.Background())
	require.NoError(t, err)

	h1, ok := store.HousingByID("H1")
	require.True(t, ok)
	assert.Equal(t, models.SafetyHigh, h1.Safety)

	// no id in _source: the document id is used
	doc2, ok := store.HousingByID("doc-2")
	require.True(t, ok)
	assert.Equal(t, models.SafetyLow, doc2.Safety)

	c1, _ := store.CuisineByID("C1")
	assert.Equal(t, models.PricingUltraHigh, c1.Pricing)

	e1, _ := store.ExperienceByID("E1")
	assert.Equal(t, KeywordAdventure, e1.Keyword)
}

func TestElasticsearchSource_IndexError(t *testing.T) {
	client := newTestESClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"type":"index_not_found_exception"},"status":404}`)
	})

	src := NewElasticsearchSource(client, Indexes{Housing: "housing"}, logger.NewNoOpLogger())
	_, err := src.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeCatalogLoadFailed, apperrors.CodeOf(err))
}

func TestElasticsearchSource_SkipsUnnamedIndexes(t *testing.T) {
	calls := 0
	client := newTestESClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, hitsJSON())
	})

	store, err := NewElasticsearchSource(client, Indexes{Cuisine: "cuisine"}, logger.NewNoOpLogger()).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, store.Housing())
}
