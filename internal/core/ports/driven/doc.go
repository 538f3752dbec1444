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
//   - Extractor / ExtractorRegistry: Per-format text extraction
//   - EmbeddingService: Generates vector embeddings. Indexing and retrieval fail without it.
//   - SearchStore: Persistent store with lexical and vector ranking (Elasticsearch, SQLite, Postgres)
//   - PageFetcher: HTTP access for the crawler and site indexer
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Rasterizer: PDF page rendering. Without it, page captions are skipped.
//   - VisionService: Image description. Without it, captions are empty.
//   - LLMService: Answer generation. Without it, answers fall back to a source listing.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
