// internal/catalog/elasticsearch.go
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "travelease/internal/common/errors"
	"travelease/internal/common/logger"
	"travelease/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// maxIndexSize caps a single match_all page; the catalogs are small.
const maxIndexSize = 10000

// Indexes names the index holding each category.
type Indexes struct {
	Housing    string
	Cuisine    string
	Experience string
}

// ElasticsearchSource loads each category from its own index. Documents are
// decoded straight into the listing types; a missing "id" falls back to the
// document _id.
type ElasticsearchSource struct {
	client  *elasticsearch.Client
	indexes Indexes
	logger  logger.Logger
}

func NewElasticsearchSource(client *elasticsearch.Client, indexes Indexes, log logger.Logger) *ElasticsearchSource {
	return &ElasticsearchSource{
		client:  client,
		indexes: indexes,
		logger:  log.With(map[string]interface{}{"component": "catalog-elasticsearch"}),
	}
}

func (s *ElasticsearchSource) Name() string { return "elasticsearch" }

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Hits []struct {
			ID     string          `json:"_id"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *ElasticsearchSource) Load(ctx context.Context) (*Store, error) {
	start := time.Now()

	var housing []models.Housing
	if err := s.scan(ctx, s.indexes.Housing, func(id string, raw json.RawMessage) error {
		var h models.Housing
		if err := json.Unmarshal(raw, &h); err != nil {
			return err
		}
		if h.ID == "" {
			h.ID = id
		}
		if h.Safety == "" {
			h.Safety = SafetyFromRating(h.SafetyRating)
		}
		housing = append(housing, h)
		return nil
	}); err != nil {
		return nil, apperrors.NewCatalogLoadFailedError(s.Name(), err)
	}

	var cuisine []models.Cuisine
	if err := s.scan(ctx, s.indexes.Cuisine, func(id string, raw json.RawMessage) error {
		var c models.Cuisine
		if err := json.Unmarshal(raw, &c); err != nil {
			return err
		}
		if c.ID == "" {
			c.ID = id
		}
		cuisine = append(cuisine, c)
		return nil
	}); err != nil {
		return nil, apperrors.NewCatalogLoadFailedError(s.Name(), err)
	}

	var experiences []models.Experience
	if err := s.scan(ctx, s.indexes.Experience, func(id string, raw json.RawMessage) error {
		var e models.Experience
		if err := json.Unmarshal(raw, &e); err != nil {
			return err
		}
		if e.ID == "" {
			e.ID = id
		}
		experiences = append(experiences, e)
		return nil
	}); err != nil {
		return nil, apperrors.NewCatalogLoadFailedError(s.Name(), err)
	}

	s.logger.Info("Loaded Elasticsearch catalog", map[string]interface{}{
		"housing":     len(housing),
		"cuisine":     len(cuisine),
		"experiences": len(experiences),
		"durationMs":  time.Since(start).Milliseconds(),
	})

	store, err := NewStore(housing, cuisine, experiences)
	if err != nil {
		return nil, apperrors.NewCatalogLoadFailedError(s.Name(), err)
	}
	return store, nil
}

// scan runs a match_all over index in position order and hands every hit to fn.
// An empty index name is skipped.
func (s *ElasticsearchSource) scan(ctx context.Context, index string, fn func(id string, raw json.RawMessage) error) error {
	if index == "" {
		return nil
	}

	body, err := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		"sort": []interface{}{
			map[string]interface{}{
				"position": map[string]interface{}{"order": "asc", "unmapped_type": "long"},
			},
		},
	})
	if err != nil {
		return err
	}

	size := maxIndexSize
	req := esapi.SearchRequest{
		Index: []string{index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("search %s: %w", index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("search %s: %s", index, res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("decode %s: %w", index, err)
	}

	for _, hit := range parsed.Hits.Hits {
		if err := fn(hit.ID, hit.Source); err != nil {
			return fmt.Errorf("decode %s/%s: %w", index, hit.ID, err)
		}
	}
	return nil
}
