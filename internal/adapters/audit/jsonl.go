// Package audit provides the decision trace recorder.
// Clean Architecture: Adapter implementing ports.AuditLog.
// The log is a write-only compliance sink: one JSON object per line,
// append-only, never truncated.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/0xcro3dile/faqdesk-go/internal/domain/entities"
)

// JSONLRecorder appends audit entries to a JSONL file.
type JSONLRecorder struct {
	mu   sync.Mutex
	path string
}

// NewJSONLRecorder creates a recorder writing to path. The parent directory
// is created on first use if absent.
func NewJSONLRecorder(path string) *JSONLRecorder {
	if path == "" {
		path = "data/audit_log.jsonl"
	}
	return &JSONLRecorder{path: path}
}

// Record appends one entry. Writers are serialized so interleaved lines are
// never corrupted. Failures surface as entities.ErrStorageUnavailable: a
// silently lost audit trail would undermine the log's purpose.
func (r *JSONLRecorder) Record(ctx context.Context, entry entities.AuditEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding audit entry: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: creating audit directory: %v", entities.ErrStorageUnavailable, err)
		}
	}

	file, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("%w: opening audit log: %v", entities.ErrStorageUnavailable, err)
	}
	defer file.Close()

	if _, err := file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("%w: appending audit entry: %v", entities.ErrStorageUnavailable, err)
	}
	return nil
}
