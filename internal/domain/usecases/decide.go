// Package usecases contains application business rules.
// Clean Architecture: Usecases orchestrate entities and depend on port interfaces.
// They contain NO framework code, NO external dependencies - just pure business logic.
package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/0xcro3dile/faqdesk-go/internal/domain/entities"
	"github.com/0xcro3dile/faqdesk-go/internal/domain/ports"
)

// FallbackReply is returned when neither the knowledge base nor the
// candidate index produced anything usable.
const FallbackReply = "I couldn't find a confident FAQ match. A ticket can be raised for human support."

// fallbackConfidence is reported on the candidate path when the index
// returned no usable distance.
const fallbackConfidence = 0.4

// auditTimeFormat matches the audit log's human-readable timestamps.
const auditTimeFormat = "2006-01-02 15:04:05"

// DecideUseCase is the confidence decision engine: it embeds a query, scores
// it against the knowledge base, applies the threshold policy and either
// answers directly or falls back to ranked candidates.
type DecideUseCase struct {
	embedder     ports.EmbeddingService
	knowledge    ports.KnowledgeBase
	index        ports.CandidateIndex
	agent        ports.AgentService // nil when enrichment is disabled
	audit        ports.AuditLog
	threshold    float64
	topK         int
	indexTimeout time.Duration
}

// NewDecideUseCase creates a DecideUseCase with injected dependencies.
// agent may be nil; the engine then skips the enrichment strategy entirely.
func NewDecideUseCase(
	embedder ports.EmbeddingService,
	knowledge ports.KnowledgeBase,
	index ports.CandidateIndex,
	agent ports.AgentService,
	audit ports.AuditLog,
	threshold float64,
	topK int,
	indexTimeout time.Duration,
) *DecideUseCase {
	if threshold <= 0 {
		threshold = 0.70
	}
	if topK <= 0 {
		topK = 5
	}
	if indexTimeout <= 0 {
		indexTimeout = 5 * time.Second
	}
	return &DecideUseCase{
		embedder:     embedder,
		knowledge:    knowledge,
		index:        index,
		agent:        agent,
		audit:        audit,
		threshold:    threshold,
		topK:         topK,
		indexTimeout: indexTimeout,
	}
}

// Decide runs the full pipeline for one query. Retrieval-path failures are
// absorbed into degraded responses with trace annotation; only an audit
// write failure surfaces as an error.
func (uc *DecideUseCase) Decide(ctx context.Context, userID, query string) (*entities.DecisionResult, error) {
	result := uc.decide(ctx, query)

	// A cancelled request discards its trace without writing it.
	if ctx.Err() != nil {
		return result, nil
	}

	entry := entities.AuditEntry{
		Timestamp:  time.Now().Format(auditTimeFormat),
		UserID:     userID,
		Query:      query,
		Reply:      result.Reply,
		Decision:   result.Trace,
		Confident:  result.Confident,
		Similarity: result.Similarity,
	}
	if err := uc.audit.Record(ctx, entry); err != nil {
		return nil, fmt.Errorf("recording audit: %w", err)
	}
	return result, nil
}

// decide produces the reply and trace. It never returns an error: every
// failure below this line is a degraded-but-successful response.
func (uc *DecideUseCase) decide(ctx context.Context, query string) *entities.DecisionResult {
	var trace []entities.TraceStep

	embedding, err := uc.embedder.Embed(ctx, query)
	if err != nil {
		trace = append(trace, entities.TraceStep{Step: "embedding_error", Err: err.Error()})
		return &entities.DecisionResult{
			Reply:      FallbackReply,
			Confident:  false,
			Similarity: 0,
			Trace:      trace,
		}
	}

	rawSim, record := uc.knowledge.BestMatch(embedding)
	similarity := entities.ClampSimilarity(rawSim)
	trace = append(trace, entities.TraceStep{
		Step:      "local_similarity",
		Score:     similarity,
		Candidate: record,
	})

	// Threshold check: >= so a score exactly at the threshold is confident.
	// The candidate index is never consulted on this path.
	if similarity >= uc.threshold && record != nil {
		return &entities.DecisionResult{
			Reply:      record.Answer,
			Confident:  true,
			Similarity: similarity,
			Trace:      trace,
		}
	}

	return uc.fallback(ctx, query, similarity, trace)
}

// fallback consults the candidate index and walks the reply strategies in
// order: agent, agent retry, raw top candidate, fixed fallback message.
func (uc *DecideUseCase) fallback(ctx context.Context, query string, localSim float64, trace []entities.TraceStep) *entities.DecisionResult {
	ictx, cancel := context.WithTimeout(ctx, uc.indexTimeout)
	defer cancel()

	candidates, err := uc.index.Query(ictx, query, uc.topK)
	if err != nil {
		trace = append(trace, entities.TraceStep{Step: "index_error", Err: err.Error()})
		return &entities.DecisionResult{
			Reply:      FallbackReply,
			Confident:  false,
			Similarity: localSim,
			Trace:      trace,
		}
	}

	deduped := candidates.Dedupe()
	summary := deduped.Summary()
	trace = append(trace, entities.TraceStep{Step: "chroma_candidates", Summary: summary})

	similarity := fallbackConfidence
	if deduped.Len() > 0 && len(deduped.Distances) > 0 {
		similarity = entities.ClampSimilarity(1 - deduped.Distances[0])
	}

	reply, path, agentSteps := uc.pickReply(ctx, query, summary, deduped)
	trace = append(trace, agentSteps...)
	trace = append(trace, entities.TraceStep{Step: "path", Summary: path})

	return &entities.DecisionResult{
		Reply:      reply,
		Confident:  false,
		Similarity: similarity,
		Trace:      trace,
	}
}

// pickReply returns the reply text, the path that produced it, and any trace
// steps accumulated by failed strategies along the way.
func (uc *DecideUseCase) pickReply(ctx context.Context, query, summary string, deduped *entities.CandidateSet) (string, string, []entities.TraceStep) {
	var steps []entities.TraceStep

	if uc.agent != nil {
		reply, err := uc.agent.Answer(ctx, query, summary)
		if err == nil && reply != "" {
			return reply, "agent", steps
		}
		if err != nil {
			steps = append(steps, entities.TraceStep{Step: "agent_error", Err: err.Error()})
		}

		// One retry before giving up on enrichment.
		reply, err = uc.agent.Answer(ctx, query, summary)
		if err == nil && reply != "" {
			return reply, "agent_retry", steps
		}
		if err != nil {
			steps = append(steps, entities.TraceStep{Step: "agent_retry_error", Err: err.Error()})
		}
	}

	if deduped.Len() > 0 && deduped.Documents[0] != "" {
		return deduped.Documents[0], "candidates", steps
	}
	return FallbackReply, "fallback_message", steps
}
