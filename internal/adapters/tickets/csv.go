// Package tickets provides the escalation ticket store.
// Clean Architecture: Adapter implementing ports.TicketStore.
package tickets

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/0xcro3dile/faqdesk-go/internal/domain/entities"
)

// ticketTimeFormat matches the audit log's human-readable timestamps.
const ticketTimeFormat = "2006-01-02 15:04:05"

// CSVStore appends tickets to a comma-delimited file, one row per ticket.
type CSVStore struct {
	mu   sync.Mutex
	path string
}

// NewCSVStore creates a ticket store writing to path. The parent directory
// is created on first use if absent.
func NewCSVStore(path string) *CSVStore {
	if path == "" {
		path = "data/tickets.csv"
	}
	return &CSVStore{path: path}
}

// Append adds one id,timestamp,user_id,message,status row. Failures surface
// as entities.ErrStorageUnavailable.
func (s *CSVStore) Append(ctx context.Context, ticket entities.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: creating ticket directory: %v", entities.ErrStorageUnavailable, err)
		}
	}

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("%w: opening ticket store: %v", entities.ErrStorageUnavailable, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	writer.Write([]string{
		ticket.ID,
		ticket.CreatedAt.Format(ticketTimeFormat),
		ticket.UserID,
		ticket.Message,
		ticket.Status,
	})
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("%w: appending ticket: %v", entities.ErrStorageUnavailable, err)
	}
	return nil
}
