// Package domain defines the core entities for kilde.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A unit of retrievable content with its embedding
//   - Extraction / PageText: Intermediate output of a format extractor
//   - CorpusEntry: A crawled page held in memory for one session
//   - RetrievalResult: Fused, ordered contexts and their sources
//   - Config: The immutable configuration passed to every component
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
