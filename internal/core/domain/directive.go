package domain

// DirectiveOp is the action of a bulk directive.
type DirectiveOp string

const (
	// OpIndex inserts a new document with an engine-assigned ID.
	OpIndex DirectiveOp = "index"

	// OpUpdate applies a partial document to an existing ID.
	OpUpdate DirectiveOp = "update"
)

// Directive is one unit of a bulk write.
type Directive struct {
	// Op selects insert or update semantics.
	Op DirectiveOp

	// Collection is the target index and record kind.
	Collection Collection

	// ID is the target document for updates. Empty for inserts.
	ID string

	// Record is the source of the payload.
	Record Record
}

// NewIndexDirective builds an insert for a record with no existing document.
func NewIndexDirective(c Collection, r Record) Directive {
	return Directive{Op: OpIndex, Collection: c, Record: r}
}

// NewUpdateDirective builds an update targeting an existing document.
func NewUpdateDirective(c Collection, id string, r Record) Directive {
	return Directive{Op: OpUpdate, Collection: c, ID: id, Record: r}
}

// Payload returns the body line that follows the action line.
// Inserts carry the full record; updates carry {"doc": mutable fields}.
func (d Directive) Payload() any {
	if d.Op == OpUpdate {
		return map[string]any{"doc": d.Record.UpdateFields()}
	}
	return d.Record
}
