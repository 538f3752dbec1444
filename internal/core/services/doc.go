// Package services implements the driving port interfaces.
// Services hold the ingestion and retrieval logic and orchestrate
// calls to driven ports (adapters): extraction, rendering, captioning,
// embedding, storage and page fetching.
//
// Services are pure Go with no CGO and never import adapters.
package services
