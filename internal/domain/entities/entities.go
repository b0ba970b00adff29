// Package entities contains core business entities.
// These are the enterprise business rules - pure domain objects with no external dependencies.
package entities

import (
	"fmt"
	"strings"
	"time"
)

// FAQ represents one curated question/answer record.
// The whole set is replaced wholesale on re-ingestion; records are never
// mutated within a process lifetime.
type FAQ struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category,omitempty"`
}

// CandidateMeta is the metadata stored alongside a candidate index entry.
type CandidateMeta struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

// CandidateSet is a rank-ordered (best-first) result from the candidate
// index. IDs, Documents, Metadatas and Distances are parallel arrays of the
// same length. Documents hold the "Q: ...\nA: ..." composite text.
type CandidateSet struct {
	IDs       []string
	Documents []string
	Metadatas []CandidateMeta
	Distances []float64
}

// Len returns the number of candidates.
func (c *CandidateSet) Len() int {
	if c == nil {
		return 0
	}
	return len(c.IDs)
}

// Dedupe drops candidates whose ID already appeared earlier in the set,
// preserving the original rank order of first occurrences.
func (c *CandidateSet) Dedupe() *CandidateSet {
	if c == nil {
		return nil
	}
	out := &CandidateSet{}
	seen := make(map[string]bool, len(c.IDs))
	for i, id := range c.IDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		out.IDs = append(out.IDs, id)
		if i < len(c.Documents) {
			out.Documents = append(out.Documents, c.Documents[i])
		} else {
			out.Documents = append(out.Documents, "")
		}
		if i < len(c.Metadatas) {
			out.Metadatas = append(out.Metadatas, c.Metadatas[i])
		} else {
			out.Metadatas = append(out.Metadatas, CandidateMeta{})
		}
		if i < len(c.Distances) {
			out.Distances = append(out.Distances, c.Distances[i])
		}
	}
	return out
}

// Summary renders the set for traces and for the agent prompt:
// one "[FAQ#id] Q: ...\nA: ...\n(distance=...)" block per candidate.
func (c *CandidateSet) Summary() string {
	if c.Len() == 0 {
		return "No candidates available"
	}
	blocks := make([]string, 0, len(c.IDs))
	for i, id := range c.IDs {
		var question string
		if i < len(c.Metadatas) {
			question = c.Metadatas[i].Question
		}
		var doc string
		if i < len(c.Documents) {
			doc = c.Documents[i]
		}
		dist := "none"
		if i < len(c.Distances) {
			dist = fmt.Sprintf("%.4f", c.Distances[i])
		}
		blocks = append(blocks, fmt.Sprintf("[FAQ#%s] Q: %s\n%s\n(distance=%s)", id, question, doc, dist))
	}
	return strings.Join(blocks, "\n\n")
}

// TraceStep is one entry in a decision trace: the step name, the score it
// observed, and step-specific payload. A trace belongs to a single request
// and is immutable once the request completes.
type TraceStep struct {
	Step      string  `json:"step"`
	Score     float64 `json:"score,omitempty"`
	Candidate *FAQ    `json:"candidate,omitempty"`
	Summary   string  `json:"candidates_summary,omitempty"`
	Err       string  `json:"error,omitempty"`
}

// DecisionResult is the outcome of one decide call.
// Similarity is always clamped into [0,1]. Confident is true only when the
// local match cleared the threshold; the fallback path never sets it, even
// when its computed confidence is numerically high.
type DecisionResult struct {
	Reply      string      `json:"reply"`
	Confident  bool        `json:"confident"`
	Similarity float64     `json:"similarity"`
	Trace      []TraceStep `json:"decision"`
}

// Ticket is a human-support escalation record.
type Ticket struct {
	ID        string
	CreatedAt time.Time
	UserID    string
	Message   string
	Status    string
}

// AuditEntry is one line of the append-only audit log.
type AuditEntry struct {
	Timestamp  string      `json:"timestamp"`
	UserID     string      `json:"user_id"`
	Query      string      `json:"query"`
	Reply      string      `json:"reply"`
	Decision   []TraceStep `json:"decision"`
	Confident  bool        `json:"confident"`
	Similarity float64     `json:"similarity"`
}

// ClampSimilarity forces a raw similarity into the [0,1] confidence range.
// Raw cosine similarity can be negative.
func ClampSimilarity(sim float64) float64 {
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
