// Package normalisers provides the shared text normalisation rules and the
// extractor registry. Each sub-package implements driven.Extractor for one
// file format and reduces its input to normalised UTF-8 text.
//
// Extractors are registered with the Registry at startup.
package normalisers
