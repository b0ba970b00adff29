// Package usecases - escalate.go hands unresolved queries to a human
// support process via ticket records.
package usecases

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/0xcro3dile/faqdesk-go/internal/domain/entities"
	"github.com/0xcro3dile/faqdesk-go/internal/domain/ports"
)

// EscalateUseCase creates human-support tickets and marks the interaction as
// escalated in the audit log.
type EscalateUseCase struct {
	tickets ports.TicketStore
	audit   ports.AuditLog
	lastID  atomic.Int64
}

// NewEscalateUseCase creates an EscalateUseCase with injected dependencies.
func NewEscalateUseCase(tickets ports.TicketStore, audit ports.AuditLog) *EscalateUseCase {
	return &EscalateUseCase{
		tickets: tickets,
		audit:   audit,
	}
}

// CreateTicket persists a ticket row and an escalation audit entry, and
// returns the ticket ID. Storage failures are the only error this surfaces.
func (uc *EscalateUseCase) CreateTicket(ctx context.Context, userID, message string) (string, error) {
	if userID == "" {
		userID = "anon"
	}

	now := time.Now()
	ticket := entities.Ticket{
		ID:        uc.nextID(now),
		CreatedAt: now,
		UserID:    userID,
		Message:   message,
		Status:    "open",
	}

	if err := uc.tickets.Append(ctx, ticket); err != nil {
		return "", fmt.Errorf("appending ticket: %w", err)
	}

	entry := entities.AuditEntry{
		Timestamp:  now.Format(auditTimeFormat),
		UserID:     userID,
		Query:      message,
		Reply:      "[escalated]",
		Decision:   []entities.TraceStep{{Step: "escalated"}},
		Confident:  false,
		Similarity: 0,
	}
	if err := uc.audit.Record(ctx, entry); err != nil {
		return "", fmt.Errorf("recording escalation audit: %w", err)
	}
	return ticket.ID, nil
}

// nextID returns a millisecond-epoch ID, bumped past the previous one so
// two tickets created in the same millisecond stay distinct.
func (uc *EscalateUseCase) nextID(now time.Time) string {
	id := now.UnixMilli()
	for {
		last := uc.lastID.Load()
		if id <= last {
			id = last + 1
		}
		if uc.lastID.CompareAndSwap(last, id) {
			return strconv.FormatInt(id, 10)
		}
	}
}
