// Package candidates provides candidate index adapters.
// Clean Architecture: Adapters implementing ports.CandidateIndex.
// The SQLite backend is the default persistent index; a Redis backend is
// available for deployments that already run one.
package candidates

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/0xcro3dile/faqdesk-go/internal/domain/entities"
	"github.com/0xcro3dile/faqdesk-go/internal/domain/ports"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteIndex implements ports.CandidateIndex with SQLite-based persistence.
// Queries brute-force scan the stored embeddings; the corpus is a curated
// FAQ set, small enough that an ANN structure buys nothing.
type SQLiteIndex struct {
	mu       sync.RWMutex
	db       *sql.DB
	embedder ports.EmbeddingService
	dataPath string
}

// NewSQLiteIndex creates a persistent candidate index under dataPath.
func NewSQLiteIndex(dataPath string, embedder ports.EmbeddingService) (*SQLiteIndex, error) {
	if dataPath == "" {
		dataPath = "./index"
	}

	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dataPath, "candidates.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	idx := &SQLiteIndex{
		db:       db,
		embedder: embedder,
		dataPath: dataPath,
	}

	if err := idx.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return idx, nil
}

// initSchema creates the necessary tables.
func (s *SQLiteIndex) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS faq_entries (
		id TEXT PRIMARY KEY,
		document TEXT NOT NULL,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		category TEXT,
		embedding BLOB NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Replace rebuilds the index wholesale from the given records.
func (s *SQLiteIndex) Replace(ctx context.Context, records []entities.FAQ, embeddings [][]float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM faq_entries"); err != nil {
		return fmt.Errorf("clearing entries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO faq_entries (id, document, question, answer, category, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, record := range records {
		embeddingJSON, err := json.Marshal(embeddings[i])
		if err != nil {
			return fmt.Errorf("encoding embedding: %w", err)
		}

		_, err = stmt.ExecContext(ctx,
			record.ID,
			CompositeDocument(record),
			record.Question,
			record.Answer,
			record.Category,
			embeddingJSON,
		)
		if err != nil {
			return fmt.Errorf("inserting entry %s: %w", record.ID, err)
		}
	}

	return tx.Commit()
}

// Query embeds the text and returns the top-k nearest entries, distance
// ascending. All failures are reported as entities.ErrIndexQueryFailed so
// the decision engine can degrade uniformly.
func (s *SQLiteIndex) Query(ctx context.Context, text string, k int) (*entities.CandidateSet, error) {
	queryEmbedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", entities.ErrIndexQueryFailed, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document, question, answer, category, embedding
		FROM faq_entries
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying entries: %v", entities.ErrIndexQueryFailed, err)
	}
	defer rows.Close()

	type scored struct {
		id       string
		document string
		meta     entities.CandidateMeta
		distance float64
	}

	var results []scored
	for rows.Next() {
		var sc scored
		var category sql.NullString
		var embeddingJSON []byte

		err := rows.Scan(&sc.id, &sc.document, &sc.meta.Question, &sc.meta.Answer, &category, &embeddingJSON)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning row: %v", entities.ErrIndexQueryFailed, err)
		}
		sc.meta.Category = category.String

		var embedding []float32
		if err := json.Unmarshal(embeddingJSON, &embedding); err != nil {
			continue // Skip corrupted embeddings
		}

		sc.distance = cosineDistance(queryEmbedding, embedding)
		results = append(results, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading rows: %v", entities.ErrIndexQueryFailed, err)
	}

	// Best first: smallest distance wins.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].distance < results[j].distance
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}

	set := &entities.CandidateSet{}
	for _, r := range results {
		set.IDs = append(set.IDs, r.id)
		set.Documents = append(set.Documents, r.document)
		set.Metadatas = append(set.Metadatas, r.meta)
		set.Distances = append(set.Distances, r.distance)
	}
	return set, nil
}

// Close closes the database connection.
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

// EntryCount returns the number of indexed entries.
func (s *SQLiteIndex) EntryCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM faq_entries").Scan(&count)
	return count, err
}

// CompositeDocument builds the stored document text for a record.
func CompositeDocument(record entities.FAQ) string {
	return "Q: " + record.Question + "\nA: " + record.Answer
}
