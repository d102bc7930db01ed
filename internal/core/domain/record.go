package domain

import (
	"fmt"
	"strings"
)

// Record is a single terminology or application-profile entry.
// URI is the natural key; no other field takes part in deduplication.
type Record struct {
	// URI uniquely identifies the record across batches.
	URI string `json:"URI" yaml:"URI"`

	// PrefLabel is the preferred human-readable label.
	PrefLabel string `json:"prefLabel" yaml:"prefLabel"`

	// Definition is the textual definition of the term.
	Definition string `json:"definition" yaml:"definition"`

	// Context names the vocabulary or profile the record belongs to.
	Context string `json:"context" yaml:"context"`
}

// Validate reports whether the record can be reconciled.
func (r Record) Validate() error {
	if strings.TrimSpace(r.URI) == "" {
		return fmt.Errorf("%w: record has empty URI", ErrInvalidInput)
	}
	return nil
}

// UpdateFields returns the mutable projection written on update.
// It carries exactly prefLabel, URI, definition and context.
func (r Record) UpdateFields() map[string]any {
	return map[string]any{
		"prefLabel":  r.PrefLabel,
		"URI":        r.URI,
		"definition": r.Definition,
		"context":    r.Context,
	}
}

// Document is the persisted form of a Record inside a Collection.
type Document struct {
	// ID is assigned by the search engine at creation and never changes.
	ID string

	// Record is the stored projection.
	Record Record
}

// Hit is a single search result returned by the engine.
// A match query may return approximate hits; callers filter them.
type Hit struct {
	// ID is the engine-assigned document identifier.
	ID string

	// Source holds the stored record fields.
	Source Record

	// Score is the engine relevance score.
	Score float64
}
