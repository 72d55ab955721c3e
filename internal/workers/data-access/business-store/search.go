package businessstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"wenwen-recommender/internal/models"
)

// SearchIndex serves the business finders from an Elasticsearch index whose
// documents mirror the businesses table.
type SearchIndex struct {
	client *elasticsearch.Client
	index  string
	logger Logger
}

func NewSearchIndex(client *elasticsearch.Client, index string, log Logger) *SearchIndex {
	if index == "" {
		index = "businesses"
	}
	return &SearchIndex{
		client: client,
		index:  index,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
			"backend":  "elasticsearch",
			"index":    index,
		}),
	}
}

func (s *SearchIndex) FindBusinessesByCategory(ctx context.Context, category string, limit int) ([]models.BusinessRecord, error) {
	return s.search(ctx, models.OpFindBusinessesByCategory, filterQuery(map[string]interface{}{
		"term": map[string]interface{}{"category": category},
	}), limit, partnerFirstSort())
}

// FindBusinessByName returns up to one phrase match. Callers needing an exact
// name compare it themselves.
func (s *SearchIndex) FindBusinessByName(ctx context.Context, name string) ([]models.BusinessRecord, error) {
	return s.search(ctx, models.OpFindBusinessByName, map[string]interface{}{
		"match_phrase": map[string]interface{}{"name": name},
	}, 1, nil)
}

func (s *SearchIndex) FindPartnerBusinesses(ctx context.Context, limit int) ([]models.BusinessRecord, error) {
	return s.search(ctx, models.OpFindPartnerBusinesses, filterQuery(map[string]interface{}{
		"term": map[string]interface{}{"is_partner": true},
	}), limit, []interface{}{map[string]interface{}{"updated_at": "desc"}})
}

func (s *SearchIndex) FindTopBusinesses(ctx context.Context, limit int) ([]models.BusinessRecord, error) {
	return s.search(ctx, models.OpFindTopBusinesses, map[string]interface{}{
		"match_all": map[string]interface{}{},
	}, limit, partnerFirstSort())
}

func filterQuery(filter map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"bool": map[string]interface{}{
			"filter": []interface{}{filter},
		},
	}
}

func partnerFirstSort() []interface{} {
	return []interface{}{
		map[string]interface{}{"is_partner": "desc"},
		map[string]interface{}{"updated_at": "desc"},
	}
}

// BuildSearchBody is the request body for a query, size and sort.
func BuildSearchBody(query map[string]interface{}, size int, sort []interface{}) ([]byte, error) {
	body := map[string]interface{}{
		"query": query,
		"size":  size,
	}
	if len(sort) > 0 {
		body["sort"] = sort
	}
	return json.Marshal(body)
}

func (s *SearchIndex) search(ctx context.Context, op models.Operation, query map[string]interface{}, size int, sort []interface{}) ([]models.BusinessRecord, error) {
	body, err := BuildSearchBody(query, size, sort)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSearchFailed, op, err)
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSearchFailed, op, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: %s: %s", ErrSearchFailed, op, res.String())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %s: decode: %w", ErrSearchFailed, op, err)
	}

	records := make([]models.BusinessRecord, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		records = append(records, hit.Source.record(hit.ID))
	}

	s.logger.Info("businesses searched", map[string]interface{}{
		"operation": string(op),
		"hitCount":  len(records),
		"tookMs":    parsed.Took,
	})
	return records, nil
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Hits []struct {
			ID     string      `json:"_id"`
			Source businessDoc `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type businessDoc struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Address       string          `json:"address"`
	Phone         string          `json:"phone"`
	BusinessHours string          `json:"business_hours"`
	IsPartner     bool            `json:"is_partner"`
	Features      json.RawMessage `json:"features"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// record accepts features either as an embedded object or as a JSON string.
func (d businessDoc) record(hitID string) models.BusinessRecord {
	id := d.ID
	if id == "" {
		id = hitID
	}
	features := ""
	if len(d.Features) > 0 && string(d.Features) != "null" {
		var asString string
		if err := json.Unmarshal(d.Features, &asString); err == nil {
			features = asString
		} else {
			features = string(d.Features)
		}
	}
	return models.BusinessRecord{
		ID:            id,
		Name:          d.Name,
		Category:      d.Category,
		Address:       d.Address,
		Phone:         d.Phone,
		BusinessHours: d.BusinessHours,
		IsPartner:     d.IsPartner,
		Features:      features,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}
