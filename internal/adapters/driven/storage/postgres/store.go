// Package postgres provides a SearchStore backed by PostgreSQL full-text
// search and the pgvector extension.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/pgvector/pgvector-go"

	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.SearchStore = (*Store)(nil)

const connectTimeout = 10 * time.Second

var identifier = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// Store is a PostgreSQL-backed search store. Each index is one table.
type Store struct {
	db    *sql.DB
	table string
}

// NewStore opens a connection pool for dsn and verifies it.
func NewStore(ctx context.Context, dsn, table string) (*Store, error) {
	if table == "" {
		table = domain.DefaultIndexName
	}
	if !identifier.MatchString(table) {
		return nil, fmt.Errorf("%w: table name %q", domain.ErrInvalidInput, table)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open db: %w", domain.ErrStoreUnavailable, err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping db: %w", domain.ErrStoreUnavailable, err)
	}

	return &Store{db: db, table: table}, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// schemaStatements returns the DDL for a table holding dims-sized vectors.
// The generated tsvector weights the title above the content.
func schemaStatements(table string, dims int) []string {
	return []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL DEFAULT '',
			content     TEXT NOT NULL,
			site        TEXT NOT NULL DEFAULT '',
			source_path TEXT NOT NULL DEFAULT '',
			page        INTEGER,
			embedding   vector(%[2]d),
			tsv         tsvector GENERATED ALWAYS AS (
				setweight(to_tsvector('norwegian', coalesce(title, '')), 'A') ||
				setweight(to_tsvector('norwegian', content), 'B')
			) STORED,
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, table, dims),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_tsv_idx ON %[1]s USING gin (tsv)`, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_site_idx ON %[1]s (site)`, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_embedding_idx ON %[1]s USING hnsw (embedding vector_cosine_ops)`, table),
	}
}

// EnsureIndex creates the extension, table and indexes when missing.
func (s *Store) EnsureIndex(ctx context.Context, dims int) error {
	for _, stmt := range schemaStatements(s.table, dims) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: bootstrap %s: %w", domain.ErrStoreUnavailable, s.table, err)
		}
	}
	return nil
}

// DeleteIndex drops the table.
func (s *Store) DeleteIndex(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, s.table)); err != nil {
		return fmt.Errorf("drop %s: %w", s.table, err)
	}
	return nil
}

// Upsert writes doc keyed by its ID.
func (s *Store) Upsert(ctx context.Context, doc domain.Document) error {
	var embedding any
	if len(doc.Embedding) > 0 {
		embedding = pgvector.NewVector(doc.Embedding)
	}
	var page sql.NullInt32
	if doc.Page != nil {
		page = sql.NullInt32{Int32: int32(*doc.Page), Valid: true}
	}

	q := fmt.Sprintf(`
		INSERT INTO %s (id, title, content, site, source_path, page, embedding, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			site = EXCLUDED.site,
			source_path = EXCLUDED.source_path,
			page = EXCLUDED.page,
			embedding = EXCLUDED.embedding,
			updated_at = EXCLUDED.updated_at
	`, s.table)
	if _, err := s.db.ExecContext(ctx, q,
		doc.ID, doc.Title, doc.Content, doc.Site, doc.SourcePath, page, embedding,
	); err != nil {
		return &domain.StoreError{ID: doc.ID, Reason: err.Error()}
	}
	return nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", s.table, err)
	}
	return n, nil
}

// RankLexical ranks with ts_rank_cd over the norwegian tsvector. All
// query terms must match, as with the Elasticsearch store.
func (s *Store) RankLexical(ctx context.Context, q driven.LexicalQuery) ([]driven.Hit, error) {
	query := fmt.Sprintf(`
		SELECT id, title, content, site, source_path, page,
		       ts_rank_cd(tsv, query) AS score,
		       ts_headline('norwegian', content, query, 'MaxFragments=1, MinWords=15, MaxWords=45')
		FROM %s, plainto_tsquery('norwegian', $1) AS query
		WHERE tsv @@ query AND ($2 = '' OR site = $2)
		ORDER BY score DESC
		LIMIT $3
	`, s.table)

	rows, err := s.db.QueryContext(ctx, query, q.Text, q.Site, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("lexical query: %w", err)
	}
	defer rows.Close()

	var hits []driven.Hit
	for rows.Next() {
		var hit driven.Hit
		var page sql.NullInt32
		if err := rows.Scan(&hit.Doc.ID, &hit.Doc.Title, &hit.Doc.Content, &hit.Doc.Site,
			&hit.Doc.SourcePath, &page, &hit.Score, &hit.Highlight); err != nil {
			return nil, fmt.Errorf("scanning lexical hit: %w", err)
		}
		hit.ID = hit.Doc.ID
		hit.Doc.Page = pagePtr(page)
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// RankVector orders by cosine distance. Score is cosine similarity.
func (s *Store) RankVector(ctx context.Context, q driven.VectorQuery) ([]driven.Hit, error) {
	query := fmt.Sprintf(`
		SELECT id, title, content, site, source_path, page, 1 - (embedding <=> $1::vector) AS score
		FROM %s
		WHERE embedding IS NOT NULL AND ($2 = '' OR site = $2)
		ORDER BY embedding <=> $1::vector
		LIMIT $3
	`, s.table)

	rows, err := s.db.QueryContext(ctx, query, pgvector.NewVector(q.Vector), q.Site, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}
	defer rows.Close()

	var hits []driven.Hit
	for rows.Next() {
		var hit driven.Hit
		var page sql.NullInt32
		if err := rows.Scan(&hit.Doc.ID, &hit.Doc.Title, &hit.Doc.Content, &hit.Doc.Site,
			&hit.Doc.SourcePath, &page, &hit.Score); err != nil {
			return nil, fmt.Errorf("scanning vector hit: %w", err)
		}
		hit.ID = hit.Doc.ID
		hit.Doc.Page = pagePtr(page)
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

func pagePtr(page sql.NullInt32) *int {
	if !page.Valid {
		return nil
	}
	p := int(page.Int32)
	return &p
}
