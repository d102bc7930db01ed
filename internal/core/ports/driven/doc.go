// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - SearchEngine: The index being synchronised (Elasticsearch, or memory for dry runs)
//   - ConfigStore: Application configuration
//   - RecordLoader: Reads record batches from files
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RunStore: Sync history. Without it, runs are not recorded.
//   - SyncObserver: Metrics. Without it, nothing is exported.
//   - EventPublisher: Run notifications. Without it, nothing is published.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
