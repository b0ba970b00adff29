// Package ports defines interfaces for external dependencies.
// Clean Architecture: These are the boundaries - usecases depend on these abstractions,
// not concrete implementations. Adapters implement these interfaces.
package ports

import (
	"context"

	"github.com/0xcro3dile/faqdesk-go/internal/domain/entities"
)

// EmbeddingService generates vector embeddings for text.
// Dimension is constant across all vectors from one instance; vectors from
// different providers are never compared.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// KnowledgeBase holds the curated FAQ records and their precomputed
// embeddings fully in memory. Read-only between replacements; Replace
// publishes a new snapshot atomically so in-flight readers never observe a
// half-built store.
type KnowledgeBase interface {
	// BestMatch scans every stored embedding and returns the single
	// highest-scoring record with its raw cosine similarity. An empty store
	// returns (0, nil). Ties break to the first record in insertion order.
	BestMatch(embedding []float32) (float64, *entities.FAQ)

	// Replace swaps in a new record set wholesale.
	// len(records) must equal len(embeddings), in matching order.
	Replace(records []entities.FAQ, embeddings [][]float32)

	// Len reports the number of stored records.
	Len() int
}

// CandidateIndex is the external approximate index consulted when local
// confidence is insufficient. Query embeds the text itself and returns
// parallel arrays rank-ordered best-first.
type CandidateIndex interface {
	// Query returns the top-k nearest entries for the text.
	Query(ctx context.Context, text string, k int) (*entities.CandidateSet, error)

	// Replace rebuilds the index wholesale from the given records.
	// embeddings[i] corresponds to records[i].
	Replace(ctx context.Context, records []entities.FAQ, embeddings [][]float32) error
}

// SourceLoader reads FAQ rows from a source path. The core never parses the
// file format itself.
type SourceLoader interface {
	// Load returns the valid rows at path. A missing path yields
	// entities.ErrSourceNotFound and an empty slice.
	Load(ctx context.Context, path string) ([]entities.FAQ, error)
}

// AgentService is the optional best-effort generative enrichment layer.
type AgentService interface {
	// Answer produces a free-text reply for the query given the formatted
	// candidate block. Failures are swallowed by the caller.
	Answer(ctx context.Context, query, candidates string) (string, error)
}

// AuditLog is the write-only decision trace sink. Appends must be safe under
// concurrent callers and never corrupt prior entries.
type AuditLog interface {
	// Record appends one entry to the durable audit log.
	Record(ctx context.Context, entry entities.AuditEntry) error
}

// TicketStore persists escalation tickets.
type TicketStore interface {
	// Append adds one ticket row to the durable store.
	Append(ctx context.Context, ticket entities.Ticket) error
}

// SourceWatcher monitors the FAQ source for changes.
type SourceWatcher interface {
	// Watch starts monitoring the path and emits an event per change.
	Watch(ctx context.Context, path string) (<-chan SourceEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// SourceEvent represents a change to the FAQ source.
type SourceEvent struct {
	Path string
}
