package services

import (
	"context"
	"fmt"

	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
	"github.com/nordvik-labs/kilde/internal/logger"
)

// Bootstrap makes sure the store's index exists with the embedder's
// dimensions. With deleteFirst the index is dropped and recreated.
func Bootstrap(ctx context.Context, store driven.SearchStore, embedder driven.EmbeddingService, deleteFirst bool) error {
	if store == nil {
		return domain.ErrStoreUnavailable
	}
	dims := domain.DefaultEmbeddingDims
	if embedder != nil && embedder.Dimensions() > 0 {
		dims = embedder.Dimensions()
	}

	if deleteFirst {
		logger.Info("bootstrap: deleting index")
		if err := store.DeleteIndex(ctx); err != nil {
			return fmt.Errorf("delete index: %w", err)
		}
	}
	if err := store.EnsureIndex(ctx, dims); err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}
	logger.Info("bootstrap: index ready (%d dimensions)", dims)
	return nil
}
