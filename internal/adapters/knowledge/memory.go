// Package knowledge provides the in-memory knowledge base store.
// Clean Architecture: Adapter implementing ports.KnowledgeBase.
// The store is read-only between reloads; Replace publishes a fully built
// snapshot through an atomic pointer so readers never lock and never see a
// half-built store.
package knowledge

import (
	"math"
	"sync/atomic"

	"github.com/0xcro3dile/faqdesk-go/internal/domain/entities"
)

// snapshot is one immutable generation of the knowledge base.
// Invariant: len(records) == len(embeddings), in matching order.
type snapshot struct {
	records    []entities.FAQ
	embeddings [][]float32
}

// MemoryStore holds FAQ records and their question embeddings in memory.
type MemoryStore struct {
	current atomic.Pointer[snapshot]
}

// NewMemoryStore creates an empty knowledge base.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	s.current.Store(&snapshot{})
	return s
}

// Replace swaps in a new record set wholesale.
func (s *MemoryStore) Replace(records []entities.FAQ, embeddings [][]float32) {
	s.current.Store(&snapshot{records: records, embeddings: embeddings})
}

// Len reports the number of stored records.
func (s *MemoryStore) Len() int {
	return len(s.current.Load().records)
}

// BestMatch computes cosine similarity between the query embedding and every
// stored embedding and returns the single highest-scoring record with its
// raw similarity. An empty store returns (0, nil). Ties break to the first
// record in insertion order: a stable scan, no re-sorting.
func (s *MemoryStore) BestMatch(embedding []float32) (float64, *entities.FAQ) {
	snap := s.current.Load()
	if len(snap.records) == 0 {
		return 0, nil
	}

	bestSim := math.Inf(-1)
	bestIdx := -1
	for i, emb := range snap.embeddings {
		sim := cosineSimilarity(embedding, emb)
		if sim > bestSim {
			bestSim = sim
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return 0, nil
	}

	record := snap.records[bestIdx]
	return bestSim, &record
}

// cosineSimilarity calculates cosine similarity between two vectors.
// Zero-norm or mismatched vectors score 0 - never divide by zero.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
