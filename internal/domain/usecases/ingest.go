// Package usecases - ingest.go rebuilds the knowledge base and candidate
// index from the FAQ source.
package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/0xcro3dile/faqdesk-go/internal/domain/entities"
	"github.com/0xcro3dile/faqdesk-go/internal/domain/ports"
)

// IngestUseCase loads FAQ rows, embeds their question texts and publishes
// the results: an atomic knowledge base snapshot swap plus a wholesale
// candidate index rebuild. In-flight queries keep the snapshot they started
// with.
type IngestUseCase struct {
	loader    ports.SourceLoader
	embedder  ports.EmbeddingService
	knowledge ports.KnowledgeBase
	index     ports.CandidateIndex
}

// NewIngestUseCase creates an IngestUseCase with injected dependencies.
func NewIngestUseCase(
	loader ports.SourceLoader,
	embedder ports.EmbeddingService,
	knowledge ports.KnowledgeBase,
	index ports.CandidateIndex,
) *IngestUseCase {
	return &IngestUseCase{
		loader:    loader,
		embedder:  embedder,
		knowledge: knowledge,
		index:     index,
	}
}

// Ingest replaces the current record set with the rows at path and returns
// the ingested count. A missing source yields an empty knowledge base, not
// an error; callers check the count.
func (uc *IngestUseCase) Ingest(ctx context.Context, path string) (int, error) {
	records, err := uc.loader.Load(ctx, path)
	if err != nil {
		if !errors.Is(err, entities.ErrSourceNotFound) {
			return 0, fmt.Errorf("loading faq source: %w", err)
		}
		records = nil
	}

	if len(records) == 0 {
		uc.knowledge.Replace(nil, nil)
		if err := uc.index.Replace(ctx, nil, nil); err != nil {
			return 0, fmt.Errorf("clearing candidate index: %w", err)
		}
		return 0, nil
	}

	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Question
	}

	embeddings, err := uc.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding questions: %w", err)
	}

	// Build fully off to the side, then publish in one step.
	uc.knowledge.Replace(records, embeddings)

	if err := uc.index.Replace(ctx, records, embeddings); err != nil {
		return len(records), fmt.Errorf("rebuilding candidate index: %w", err)
	}
	return len(records), nil
}
