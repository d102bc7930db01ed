package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/custodia-labs/oslo-sync/internal/core/domain"
)

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string        `json:"_id"`
			Score  float64       `json:"_score"`
			Source domain.Record `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// matchQuery builds {"query":{"match":{field: value}}}.
func matchQuery(field, value string) ([]byte, error) {
	return json.Marshal(map[string]any{
		"size": searchSize,
		"query": map[string]any{
			"match": map[string]any{field: value},
		},
	})
}

// Search runs a match query. A missing index yields no hits.
func (e *Engine) Search(ctx context.Context, c domain.Collection, field, value string) ([]domain.Hit, error) {
	body, err := matchQuery(field, value)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	var resHits searchResponse
	if e.legacyTypes && c.Kind != "" {
		err = e.searchTyped(ctx, c, body, &resHits)
	} else {
		err = e.searchIndex(ctx, c.Name, body, &resHits)
	}
	if isIndexNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	hits := make([]domain.Hit, 0, len(resHits.Hits.Hits))
	for _, h := range resHits.Hits.Hits {
		hits = append(hits, domain.Hit{ID: h.ID, Score: h.Score, Source: h.Source})
	}
	return hits, nil
}

func (e *Engine) searchIndex(ctx context.Context, index string, body []byte, out *searchResponse) error {
	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(index),
		e.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return err
	}
	defer drain(res.Body)

	if res.IsError() {
		return responseError(res.StatusCode, res.Body)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// searchTyped queries /{index}/{kind}/_search, which the typed API no longer exposes.
func (e *Engine) searchTyped(ctx context.Context, c domain.Collection, body []byte, out *searchResponse) error {
	path := "/" + url.PathEscape(c.Name) + "/" + url.PathEscape(c.Kind) + "/_search"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := e.perform(req)
	if err != nil {
		return err
	}
	defer drain(res.Body)

	if res.IsError() {
		return responseError(res.StatusCode, res.Body)
	}
	return json.NewDecoder(res.Body).Decode(out)
}
