package domain

// DirectiveFailure describes one record that did not make it into the index.
type DirectiveFailure struct {
	// Index is the position of the record in the input batch.
	Index int `json:"index"`

	// URI is the record key.
	URI string `json:"uri"`

	// Reason is the engine or validation error text.
	Reason string `json:"reason"`
}

// BatchResult is the outcome of one reconciled batch.
type BatchResult struct {
	// Submitted is the number of directives sent in the bulk write.
	Submitted int `json:"submitted"`

	// Inserted is the number of index directives built.
	Inserted int `json:"inserted"`

	// Updated is the number of update directives built.
	Updated int `json:"updated"`

	// Skipped counts records left out because they already exist (push only).
	Skipped int `json:"skipped"`

	// Succeeded counts directives the engine accepted.
	Succeeded int `json:"succeeded"`

	// Failed lists records that were rejected or could not be resolved.
	Failed []DirectiveFailure `json:"failed,omitempty"`
}

// OK reports whether every submitted directive succeeded and nothing failed.
func (r *BatchResult) OK() bool {
	return r != nil && len(r.Failed) == 0
}

// Partial reports whether some, but not all, directives were applied.
func (r *BatchResult) Partial() bool {
	return r != nil && r.Succeeded > 0 && len(r.Failed) > 0
}

// BulkItem is the engine status of one directive in a bulk write.
type BulkItem struct {
	// ID is the document ID the engine used.
	ID string

	// Status is the HTTP-like status code for the item.
	Status int

	// Error is empty on success.
	Error string
}

// BulkResponse is the raw result of a bulk write, one item per directive,
// in submission order.
type BulkResponse struct {
	Items []BulkItem
}
