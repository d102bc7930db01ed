package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/oslo-sync/internal/core/domain"
)

// actionMeta is the metadata of a bulk action line.
type actionMeta struct {
	Index string `json:"_index"`
	Type  string `json:"_type,omitempty"`
	ID    string `json:"_id,omitempty"`
}

// encodeBulk renders directives as the NDJSON body of a _bulk request:
// one action line followed by one payload line per directive.
func encodeBulk(directives []domain.Directive, legacyTypes bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	for i, d := range directives {
		meta := actionMeta{Index: d.Collection.Name, ID: d.ID}
		if legacyTypes {
			meta.Type = d.Collection.Kind
		}
		if d.Op != domain.OpIndex && d.Op != domain.OpUpdate {
			return nil, fmt.Errorf("%w: directive %d has op %q", domain.ErrInvalidInput, i, d.Op)
		}
		if d.Op == domain.OpUpdate && d.ID == "" {
			return nil, fmt.Errorf("%w: update directive %d has no id", domain.ErrInvalidInput, i)
		}

		// json.Encoder terminates each value with a newline.
		if err := enc.Encode(map[string]actionMeta{string(d.Op): meta}); err != nil {
			return nil, err
		}
		if err := enc.Encode(d.Payload()); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

type bulkItemResult struct {
	ID     string      `json:"_id"`
	Status int         `json:"status"`
	Error  *errorCause `json:"error,omitempty"`
}

type bulkResponse struct {
	Errors bool                        `json:"errors"`
	Items  []map[string]bulkItemResult `json:"items"`
}

// decodeBulk converts a _bulk response into per-directive items, in order.
func decodeBulk(br bulkResponse) *domain.BulkResponse {
	out := &domain.BulkResponse{Items: make([]domain.BulkItem, 0, len(br.Items))}
	for _, item := range br.Items {
		// Each item holds exactly one action key.
		for _, r := range item {
			bi := domain.BulkItem{ID: r.ID, Status: r.Status}
			if r.Error != nil {
				bi.Error = r.Error.Type + ": " + r.Error.Reason
			}
			out.Items = append(out.Items, bi)
			break
		}
	}
	return out
}

// Bulk submits directives in one _bulk request. Writes wait for a refresh
// so the next batch can resolve the documents this one created.
func (e *Engine) Bulk(ctx context.Context, directives []domain.Directive) (*domain.BulkResponse, error) {
	body, err := encodeBulk(directives, e.legacyTypes)
	if err != nil {
		return nil, err
	}

	res, err := e.client.Bulk(
		bytes.NewReader(body),
		e.client.Bulk.WithContext(ctx),
		e.client.Bulk.WithRefresh("wait_for"),
	)
	if err != nil {
		return nil, err
	}
	defer drain(res.Body)

	if res.IsError() {
		return nil, fmt.Errorf("%w: %w", domain.ErrBulkRejected, responseError(res.StatusCode, res.Body))
	}

	var br bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&br); err != nil {
		return nil, fmt.Errorf("decode bulk response: %w", err)
	}
	return decodeBulk(br), nil
}
