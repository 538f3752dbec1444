package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nordvik-labs/kilde/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.SearchStore = (*Store)(nil)

// snippetTokens bounds the FTS5 highlight window.
const snippetTokens = 32

// Store is a SQLite-based search store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens or creates the database at path.
// If path is empty, defaults to ~/.kilde/data/kilde.db.
func NewStore(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".kilde", "data", "kilde.db")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", domain.ErrStoreUnavailable, err)
	}

	s := &Store{db: db, path: path}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_documents.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// EnsureIndex records the embedding size on first use and rejects a
// different size afterwards.
func (s *Store) EnsureIndex(ctx context.Context, dims int) error {
	var stored string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM index_meta WHERE key = 'dims'").Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = s.db.ExecContext(ctx, "INSERT INTO index_meta (key, value) VALUES ('dims', ?)", strconv.Itoa(dims))
		if err != nil {
			return fmt.Errorf("%w: recording dims: %w", domain.ErrStoreUnavailable, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("%w: reading dims: %w", domain.ErrStoreUnavailable, err)
	}

	if stored != strconv.Itoa(dims) {
		return fmt.Errorf("%w: index holds %s-dimensional vectors, embedder produces %d",
			domain.ErrInvalidInput, stored, dims)
	}
	return nil
}

// DeleteIndex removes every document and the recorded embedding size.
func (s *Store) DeleteIndex(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM index_meta"); err != nil {
		return fmt.Errorf("deleting index meta: %w", err)
	}
	return tx.Commit()
}

// Upsert writes doc keyed by its ID.
func (s *Store) Upsert(ctx context.Context, doc domain.Document) error {
	var page sql.NullInt64
	if doc.Page != nil {
		page = sql.NullInt64{Int64: int64(*doc.Page), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, title, content, site, source_path, page, embedding, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			site = excluded.site,
			source_path = excluded.source_path,
			page = excluded.page,
			embedding = excluded.embedding,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Title, doc.Content, doc.Site, doc.SourcePath, page, float32SliceToBytes(doc.Embedding))
	if err != nil {
		return &domain.StoreError{ID: doc.ID, Reason: err.Error()}
	}
	return nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// RankLexical ranks documents with FTS5 bm25. Scores are negated so
// higher is better.
func (s *Store) RankLexical(ctx context.Context, q driven.LexicalQuery) ([]driven.Hit, error) {
	match := matchExpression(q.Text)
	if match == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.title, d.content, d.site, d.source_path, d.page,
		       bm25(documents_fts, 2.0, 1.0) AS rank,
		       snippet(documents_fts, 1, '', '', ' … ', ?)
		FROM documents_fts
		JOIN documents d ON d.rowid = documents_fts.rowid
		WHERE documents_fts MATCH ? AND (? = '' OR d.site = ?)
		ORDER BY rank
		LIMIT ?
	`, snippetTokens, match, q.Site, q.Site, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("lexical query: %w", err)
	}
	defer rows.Close()

	var hits []driven.Hit
	for rows.Next() {
		var doc domain.Document
		var page sql.NullInt64
		var rank float64
		var highlight string
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Content, &doc.Site, &doc.SourcePath, &page,
			&rank, &highlight); err != nil {
			return nil, fmt.Errorf("scanning lexical hit: %w", err)
		}
		doc.Page = pagePtr(page)
		hits = append(hits, driven.Hit{ID: doc.ID, Score: -rank, Doc: doc, Highlight: strings.TrimSpace(highlight)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating lexical hits: %w", err)
	}
	return hits, nil
}

// RankVector scores every stored embedding in the site against q by cosine similarity.
func (s *Store) RankVector(ctx context.Context, q driven.VectorQuery) ([]driven.Hit, error) {
	if len(q.Vector) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, content, site, source_path, page, embedding
		FROM documents
		WHERE embedding IS NOT NULL AND (? = '' OR site = ?)
	`, q.Site, q.Site)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}
	defer rows.Close()

	var hits []driven.Hit
	for rows.Next() {
		var doc domain.Document
		var page sql.NullInt64
		var blob []byte
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Content, &doc.Site, &doc.SourcePath, &page, &blob); err != nil {
			return nil, fmt.Errorf("scanning vector hit: %w", err)
		}
		vec := bytesToFloat32Slice(blob)
		if len(vec) != len(q.Vector) {
			continue
		}
		doc.Page = pagePtr(page)
		hits = append(hits, driven.Hit{ID: doc.ID, Score: cosine(q.Vector, vec), Doc: doc})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vector hits: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if q.Limit > 0 && len(hits) > q.Limit {
		hits = hits[:q.Limit]
	}
	return hits, nil
}

// matchExpression turns free text into an FTS5 OR query of quoted terms.
func matchExpression(text string) string {
	terms := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool, len(terms))
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		if seen[t] {
			continue
		}
		seen[t] = true
		quoted = append(quoted, `"`+t+`"`)
	}
	return strings.Join(quoted, " OR ")
}

func pagePtr(page sql.NullInt64) *int {
	if !page.Valid {
		return nil
	}
	p := int(page.Int64)
	return &p
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
