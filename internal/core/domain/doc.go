// Package domain defines the core business entities for oslo-sync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Record: A terminology or application-profile entry keyed by URI
//   - Collection: A named index plus its record-kind label
//   - Document: A Record as stored by the search engine
//   - Directive: One insert or update instruction in a bulk write
//   - BatchResult: The outcome of a reconciled batch
//   - SyncRun: A persisted history entry for one batch
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
