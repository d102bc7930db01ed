package elasticsearch

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/custodia-labs/oslo-sync/internal/core/domain"
	"github.com/custodia-labs/oslo-sync/internal/core/ports/driven"
	"github.com/custodia-labs/oslo-sync/internal/logger"
)

// Ensure Engine implements the interface.
var _ driven.SearchEngine = (*Engine)(nil)

// searchSize is the number of match hits fetched per lookup. Exact-match
// filtering happens on these, so it must cover the near matches a URI
// typically attracts.
const searchSize = 50

// Engine is an Elasticsearch-backed search engine.
type Engine struct {
	client      *elasticsearch.Client
	transport   *http.Transport
	legacyTypes bool
}

// New creates an engine from explicit connection settings.
// No request is made; call Ping to probe the cluster.
func New(settings domain.EngineSettings) (*Engine, error) {
	if len(settings.Addresses) == 0 {
		return nil, fmt.Errorf("%w: no engine address", domain.ErrInvalidInput)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if settings.InsecureSkipVerify {
		//nolint:gosec // G402: self-signed clusters are an explicit opt-in.
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	if settings.Timeout > 0 {
		transport.ResponseHeaderTimeout = settings.Timeout
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: settings.Addresses,
		Username:  settings.Username,
		Password:  settings.Password,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	logger.Debug("Elasticsearch client for %s (insecure=%t, legacy types=%t)",
		strings.Join(settings.Addresses, ","), settings.InsecureSkipVerify, settings.LegacyTypes)

	return &Engine{
		client:      client,
		transport:   transport,
		legacyTypes: settings.LegacyTypes,
	}, nil
}

// Ping reports whether the cluster is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer drain(res.Body)

	if res.IsError() {
		return responseError(res.StatusCode, res.Body)
	}
	return nil
}

// Exists reports whether the index exists.
func (e *Engine) Exists(ctx context.Context, name string) (bool, error) {
	res, err := e.client.Indices.Exists([]string{name}, e.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, err
	}
	defer drain(res.Body)

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, responseError(res.StatusCode, res.Body)
	}
}

// Create creates an empty index. An index created concurrently by
// someone else counts as success.
func (e *Engine) Create(ctx context.Context, name string) error {
	res, err := e.client.Indices.Create(name, e.client.Indices.Create.WithContext(ctx))
	if err != nil {
		return err
	}
	defer drain(res.Body)

	if !res.IsError() {
		return nil
	}
	rerr := responseError(res.StatusCode, res.Body)
	var apiErr *APIError
	if errors.As(rerr, &apiErr) && apiErr.Type == "resource_already_exists_exception" {
		return nil
	}
	return rerr
}

// Close releases idle connections.
func (e *Engine) Close() error {
	e.transport.CloseIdleConnections()
	return nil
}

// APIError is an error response from Elasticsearch.
type APIError struct {
	Status int
	Type   string
	Reason string
}

func (e *APIError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("elasticsearch status %d", e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Reason)
}

// errorBody is the JSON shape of an Elasticsearch error response.
type errorBody struct {
	Error json.RawMessage `json:"error"`
}

type errorCause struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// responseError decodes an error body. Old clusters may send the error
// as a plain string.
func responseError(status int, body io.Reader) error {
	apiErr := &APIError{Status: status}
	if body == nil {
		return apiErr
	}

	var eb errorBody
	if err := json.NewDecoder(body).Decode(&eb); err != nil || len(eb.Error) == 0 {
		return apiErr
	}

	var cause errorCause
	if err := json.Unmarshal(eb.Error, &cause); err == nil {
		apiErr.Type, apiErr.Reason = cause.Type, cause.Reason
		return apiErr
	}

	var reason string
	if err := json.Unmarshal(eb.Error, &reason); err == nil {
		apiErr.Reason = reason
	}
	return apiErr
}

func isIndexNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		apiErr.Status == http.StatusNotFound &&
		(apiErr.Type == "index_not_found_exception" || apiErr.Type == "")
}

// drain consumes and closes a response body so the connection is reused.
func drain(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}

// perform sends a raw request through the client's transport.
func (e *Engine) perform(req *http.Request) (*esapi.Response, error) {
	res, err := e.client.Perform(req)
	if err != nil {
		return nil, err
	}
	return &esapi.Response{StatusCode: res.StatusCode, Header: res.Header, Body: res.Body}, nil
}
