package postgres

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordvik-labs/kilde/internal/core/domain"
)

func TestNewStore_RejectsTableName(t *testing.T) {
	for _, name := range []string{"Kilde", "kilde; DROP TABLE x", "1kilde", "kilde-docs"} {
		_, err := NewStore(context.Background(), "postgres://localhost/kilde", name)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, name)
	}
}

func TestNewStore_Unreachable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStore(ctx, "postgres://kilde@127.0.0.1:1/kilde?connect_timeout=1", "kilde")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestSchemaStatements(t *testing.T) {
	stmts := schemaStatements("docs", 768)
	require.Len(t, stmts, 5)

	assert.Equal(t, "CREATE EXTENSION IF NOT EXISTS vector", stmts[0])
	assert.Contains(t, stmts[1], "CREATE TABLE IF NOT EXISTS docs")
	assert.Contains(t, stmts[1], "embedding   vector(768)")
	assert.Contains(t, stmts[1], "to_tsvector('norwegian'")
	assert.Contains(t, stmts[2], "docs_tsv_idx ON docs USING gin (tsv)")
	assert.True(t, strings.HasSuffix(stmts[4], "USING hnsw (embedding vector_cosine_ops)"))
}

func TestPagePtr(t *testing.T) {
	assert.Nil(t, pagePtr(sql.NullInt32{}))
	p := pagePtr(sql.NullInt32{Int32: 4, Valid: true})
	require.NotNil(t, p)
	assert.Equal(t, 4, *p)
}
