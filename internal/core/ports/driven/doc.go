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
//   - Chunker: Splits document text into word windows
//   - EmbeddingService: Turns text into fixed-dimension vectors
//   - VectorIndex: Exact nearest-neighbour storage and search
//   - SnapshotStore: Persists index, chunk records and registry together
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Answer generation. Without it, only retrieval is available.
//   - TextExtractor: Per-format upload extraction. Missing formats are rejected.
//   - PromptStore: Custom prompt templates. Defaults are embedded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or postprocessor package
package driven
