// Package memory provides in-memory implementations of driven stores.
// They back tests and dry runs, and hold nothing across processes.
package memory
