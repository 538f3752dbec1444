package driving

import "context"

// IndexRequest describes a folder ingestion run.
type IndexRequest struct {
	Folder string

	// Patterns holds glob patterns separated by ';', ',' or whitespace.
	Patterns string

	Recursive bool
	Site      string
}

// IndexService ingests files into the persistent store.
type IndexService interface {
	// IndexFolder processes every matching file and returns how many were discovered.
	// Per-file failures are logged, not returned.
	IndexFolder(ctx context.Context, req IndexRequest) (int, error)

	// IndexFile processes a single file.
	IndexFile(ctx context.Context, path, site string) error
}
