package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordersync/internal/interfaces"
)

// FileLedger keeps the processed order ids as a JSON array on disk.
// The whole file is rewritten after every mutation.
type FileLedger struct {
	path   string
	logger arbor.ILogger

	mu  sync.Mutex
	ids []string
	set map[string]struct{}
}

// NewFileLedger creates a ledger backed by path. Call Load before use.
func NewFileLedger(path string, logger arbor.ILogger) *FileLedger {
	return &FileLedger{
		path:   path,
		logger: logger,
		set:    make(map[string]struct{}),
	}
}

var _ interfaces.OrderLedger = (*FileLedger)(nil)

// Load replaces the in-memory set with the persisted one. A missing file is an empty set.
func (l *FileLedger) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		l.reset(nil)
		l.logger.Debug().Str("path", l.path).Msg("Ledger file not found, starting empty")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read ledger %s: %w", l.path, err)
	}

	var ids []string
	if len(data) > 0 {
		if err := json.Unmarshal(data, &ids); err != nil {
			return fmt.Errorf("failed to parse ledger %s: %w", l.path, err)
		}
	}
	l.reset(ids)

	l.logger.Debug().Str("path", l.path).Int("orders", len(l.ids)).Msg("Ledger loaded")
	return nil
}

// Contains reports whether orderID was already advanced from NewOrder
func (l *FileLedger) Contains(orderID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.set[orderID]
	return ok
}

// Add records orderID and persists the ledger. Adding a known id is a no-op.
// When the write fails the id is dropped again so memory matches the file.
func (l *FileLedger) Add(ctx context.Context, orderID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.set[orderID]; ok {
		return nil
	}
	l.set[orderID] = struct{}{}
	l.ids = append(l.ids, orderID)

	if err := l.persist(); err != nil {
		delete(l.set, orderID)
		l.ids = l.ids[:len(l.ids)-1]
		return err
	}

	l.logger.Debug().Str("order_id", orderID).Int("orders", len(l.ids)).Msg("Order added to ledger")
	return nil
}

// Clear empties the ledger and persists the empty set
func (l *FileLedger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	previous := l.ids
	l.reset(nil)
	if err := l.persist(); err != nil {
		l.reset(previous)
		return err
	}

	l.logger.Info().Str("path", l.path).Msg("Ledger cleared")
	return nil
}

// List returns the ids in insertion order
func (l *FileLedger) List() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, len(l.ids))
	copy(out, l.ids)
	return out
}

func (l *FileLedger) reset(ids []string) {
	l.ids = make([]string, 0, len(ids))
	l.set = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := l.set[id]; dup {
			continue
		}
		l.set[id] = struct{}{}
		l.ids = append(l.ids, id)
	}
}

// persist writes to a temp file and renames it over the ledger. Caller holds mu.
func (l *FileLedger) persist() error {
	if dir := filepath.Dir(l.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(l.ids, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("failed to replace ledger: %w", err)
	}
	return nil
}
