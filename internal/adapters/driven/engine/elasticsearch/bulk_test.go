package elasticsearch

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/oslo-sync/internal/core/domain"
)

var terms = domain.TerminologyCollection

func ndjsonLines(t *testing.T, body []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimRight(body, "\n"), []byte("\n")) {
		var m map[string]any
		require.NoError(t, json.Unmarshal(line, &m), "line %q", line)
		out = append(out, m)
	}
	return out
}

func TestEncodeBulk_IndexAndUpdate(t *testing.T) {
	rec := domain.Record{URI: "urn:a", PrefLabel: "A", Definition: "def", Context: "ctx"}
	body, err := encodeBulk([]domain.Directive{
		domain.NewIndexDirective(terms, rec),
		domain.NewUpdateDirective(terms, "doc-1", rec),
	}, false)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(string(body), "\n"))

	lines := ndjsonLines(t, body)
	require.Len(t, lines, 4)

	assert.Equal(t, map[string]any{"index": map[string]any{"_index": "oslo-terminology"}}, lines[0])
	assert.Equal(t, map[string]any{
		"URI": "urn:a", "prefLabel": "A", "definition": "def", "context": "ctx",
	}, lines[1])

	assert.Equal(t, map[string]any{
		"update": map[string]any{"_index": "oslo-terminology", "_id": "doc-1"},
	}, lines[2])
	assert.Equal(t, map[string]any{"doc": map[string]any{
		"URI": "urn:a", "prefLabel": "A", "definition": "def", "context": "ctx",
	}}, lines[3])
}

func TestEncodeBulk_LegacyTypes(t *testing.T) {
	body, err := encodeBulk([]domain.Directive{
		domain.NewIndexDirective(terms, domain.Record{URI: "urn:a"}),
	}, true)
	require.NoError(t, err)

	lines := ndjsonLines(t, body)
	assert.Equal(t, map[string]any{"index": map[string]any{
		"_index": "oslo-terminology", "_type": "vocabularies",
	}}, lines[0])
}

func TestEncodeBulk_RejectsUpdateWithoutID(t *testing.T) {
	_, err := encodeBulk([]domain.Directive{
		domain.NewUpdateDirective(terms, "", domain.Record{URI: "urn:a"}),
	}, false)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEncodeBulk_Empty(t *testing.T) {
	body, err := encodeBulk(nil, false)
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestDecodeBulk_PreservesOrderAndErrors(t *testing.T) {
	raw := `{"errors":true,"items":[
		{"index":{"_id":"new-1","status":201}},
		{"update":{"_id":"doc-1","status":404,"error":{"type":"document_missing_exception","reason":"[doc-1]: document missing"}}}
	]}`
	var br bulkResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &br))

	resp := decodeBulk(br)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, domain.BulkItem{ID: "new-1", Status: 201}, resp.Items[0])
	assert.Equal(t, "doc-1", resp.Items[1].ID)
	assert.Equal(t, 404, resp.Items[1].Status)
	assert.Equal(t, "document_missing_exception: [doc-1]: document missing", resp.Items[1].Error)
}

func TestResponseError(t *testing.T) {
	err := responseError(404, strings.NewReader(`{"error":{"type":"index_not_found_exception","reason":"no such index"},"status":404}`))
	assert.EqualError(t, err, "index_not_found_exception: no such index")
	assert.True(t, isIndexNotFound(err))

	err = responseError(500, strings.NewReader(`{"error":"boom"}`))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "boom", apiErr.Reason)
	assert.False(t, isIndexNotFound(err))

	err = responseError(502, strings.NewReader("not json"))
	assert.EqualError(t, err, "elasticsearch status 502")
}
