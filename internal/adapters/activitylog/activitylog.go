// Package activitylog keeps the most recent operator-visible log lines
// (judge actions, display changes) in a bounded in-memory ring.
package activitylog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/aeroscore/internal/domain/model"
	"github.com/okian/aeroscore/pkg/metrics"
)

const defaultCapacity = 100

// Buffer is a fixed-capacity ring of log entries. Appending to a full buffer
// overwrites the oldest entry. Safe for concurrent use.
type Buffer struct {
	mu       sync.RWMutex
	entries  []model.LogEntry
	next     int // slot the next Append writes
	size     int
	capacity int
	now      func() time.Time
}

// New creates a Buffer.
func New(opts ...Option) *Buffer {
	b := &Buffer{
		capacity: defaultCapacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.entries = make([]model.LogEntry, b.capacity)
	metrics.UpdateActivityLogEntries(0)
	return b
}

// Append records message and returns the stored entry.
func (b *Buffer) Append(_ context.Context, message string) model.LogEntry {
	e := model.LogEntry{
		ID:        uuid.NewString(),
		Message:   message,
		Timestamp: b.now().UTC(),
	}

	b.mu.Lock()
	b.entries[b.next] = e
	b.next = (b.next + 1) % b.capacity
	if b.size < b.capacity {
		b.size++
	}
	size := b.size
	b.mu.Unlock()

	metrics.UpdateActivityLogEntries(size)
	return e
}

// Entries returns the retained entries, oldest first.
func (b *Buffer) Entries(_ context.Context) []model.LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]model.LogEntry, 0, b.size)
	start := (b.next - b.size + b.capacity) % b.capacity
	for i := 0; i < b.size; i++ {
		out = append(out, b.entries[(start+i)%b.capacity])
	}
	return out
}

// Len returns the number of retained entries.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Capacity returns the maximum number of retained entries.
func (b *Buffer) Capacity() int { return b.capacity }
