// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The Synchronizer is the heart of the application: it resolves each
// record's URI against the index and turns a batch into a single bulk
// write of inserts and updates.
package services
