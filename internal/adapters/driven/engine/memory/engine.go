// Package memory provides an in-process search engine for dry runs and tests.
//
// Search uses token-overlap matching, so like a real match query it
// returns near matches alongside exact ones.
package memory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"

	"github.com/custodia-labs/oslo-sync/internal/core/domain"
	"github.com/custodia-labs/oslo-sync/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.SearchEngine = (*Engine)(nil)

// Engine operation names accepted by FailOn.
const (
	OpPing   = "ping"
	OpExists = "exists"
	OpCreate = "create"
	OpSearch = "search"
	OpBulk   = "bulk"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("engine closed")

type storedDoc struct {
	kind   string
	record domain.Record
}

type collection struct {
	docs  map[string]storedDoc
	order []string
}

// Engine is an in-memory driven.SearchEngine.
type Engine struct {
	mu          sync.RWMutex
	collections map[string]*collection
	failures    map[string]error
	autoCreate  bool
	closed      bool
	calls       map[string]int
}

// Option configures an Engine.
type Option func(*Engine)

// WithAutoCreate makes bulk writes create missing collections,
// as Elasticsearch does by default.
func WithAutoCreate(enabled bool) Option {
	return func(e *Engine) {
		e.autoCreate = enabled
	}
}

// New creates an empty engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		collections: make(map[string]*collection),
		failures:    make(map[string]error),
		calls:       make(map[string]int),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FailOn makes every later call to op return err. A nil err clears it.
func (e *Engine) FailOn(op string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err == nil {
		delete(e.failures, op)
		return
	}
	e.failures[op] = err
}

// Calls returns how many times op was invoked.
func (e *Engine) Calls(op string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.calls[op]
}

// Documents returns the documents of a collection in insertion order.
func (e *Engine) Documents(name string) []domain.Document {
	e.mu.RLock()
	defer e.mu.RUnlock()

	c, ok := e.collections[name]
	if !ok {
		return nil
	}
	docs := make([]domain.Document, 0, len(c.order))
	for _, id := range c.order {
		docs = append(docs, domain.Document{ID: id, Record: c.docs[id].record})
	}
	return docs
}

// Put stores a document directly, bypassing bulk writes.
// Missing collections are created.
func (e *Engine) Put(name, kind, id string, rec domain.Record) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.ensure(name)
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = storedDoc{kind: kind, record: rec}
}

// begin counts the call and returns any injected failure (caller holds lock).
func (e *Engine) begin(op string) error {
	e.calls[op]++
	if e.closed {
		return ErrClosed
	}
	return e.failures[op]
}

func (e *Engine) ensure(name string) *collection {
	c, ok := e.collections[name]
	if !ok {
		c = &collection{docs: make(map[string]storedDoc)}
		e.collections[name] = c
	}
	return c
}

// Ping reports whether the engine is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.begin(OpPing); err != nil {
		return err
	}
	return ctx.Err()
}

// Exists reports whether the named collection exists.
func (e *Engine) Exists(_ context.Context, name string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.begin(OpExists); err != nil {
		return false, err
	}
	_, ok := e.collections[name]
	return ok, nil
}

// Create creates an empty collection.
func (e *Engine) Create(_ context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.begin(OpCreate); err != nil {
		return err
	}
	if _, ok := e.collections[name]; ok {
		return fmt.Errorf("resource_already_exists_exception: index [%s] already exists", name)
	}
	e.ensure(name)
	return nil
}

// Search returns every document of the collection whose field shares a
// token with value. A missing collection yields no hits.
func (e *Engine) Search(_ context.Context, c domain.Collection, field, value string) ([]domain.Hit, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.begin(OpSearch); err != nil {
		return nil, err
	}

	col, ok := e.collections[c.Name]
	if !ok {
		return nil, nil
	}

	want := tokens(value)
	var hits []domain.Hit
	for _, id := range col.order {
		doc := col.docs[id]
		if c.Kind != "" && doc.kind != c.Kind {
			continue
		}
		score := overlap(want, tokens(fieldValue(doc.record, field)))
		if score == 0 {
			continue
		}
		hits = append(hits, domain.Hit{ID: id, Source: doc.record, Score: float64(score)})
	}
	return hits, nil
}

// Bulk applies directives in order. Items fail individually.
func (e *Engine) Bulk(_ context.Context, directives []domain.Directive) (*domain.BulkResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.begin(OpBulk); err != nil {
		return nil, err
	}

	resp := &domain.BulkResponse{Items: make([]domain.BulkItem, 0, len(directives))}
	for _, d := range directives {
		resp.Items = append(resp.Items, e.apply(d))
	}
	return resp, nil
}

func (e *Engine) apply(d domain.Directive) domain.BulkItem {
	col, ok := e.collections[d.Collection.Name]
	if !ok {
		if !e.autoCreate {
			return domain.BulkItem{
				Status: http.StatusNotFound,
				Error:  fmt.Sprintf("index_not_found_exception: no such index [%s]", d.Collection.Name),
			}
		}
		col = e.ensure(d.Collection.Name)
	}

	switch d.Op {
	case domain.OpIndex:
		id := uuid.NewString()
		col.docs[id] = storedDoc{kind: d.Collection.Kind, record: d.Record}
		col.order = append(col.order, id)
		return domain.BulkItem{ID: id, Status: http.StatusCreated}

	case domain.OpUpdate:
		doc, ok := col.docs[d.ID]
		if !ok {
			return domain.BulkItem{
				ID:     d.ID,
				Status: http.StatusNotFound,
				Error:  fmt.Sprintf("document_missing_exception: [%s]: document missing", d.ID),
			}
		}
		doc.record = d.Record
		col.docs[d.ID] = doc
		return domain.BulkItem{ID: d.ID, Status: http.StatusOK}

	default:
		return domain.BulkItem{
			Status: http.StatusBadRequest,
			Error:  fmt.Sprintf("illegal_argument_exception: unknown op %q", d.Op),
		}
	}
}

// Close marks the engine closed. Later calls fail with ErrClosed.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

func fieldValue(r domain.Record, field string) string {
	switch field {
	case "URI":
		return r.URI
	case "prefLabel":
		return r.PrefLabel
	case "definition":
		return r.Definition
	case "context":
		return r.Context
	default:
		return ""
	}
}

// tokens splits text roughly the way a standard analyzer does.
func tokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' && r != '_'
	})
}

func overlap(a, b []string) int {
	set := make(map[string]struct{}, len(b))
	for _, t := range b {
		set[t] = struct{}{}
	}
	n := 0
	for _, t := range a {
		if _, ok := set[t]; ok {
			n++
		}
	}
	return n
}
