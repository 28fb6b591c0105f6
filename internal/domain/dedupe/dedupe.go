// Package dedupe tracks which observation keys have already been seen so that
// rows repeated by a relational fan-out contribute once.
package dedupe

import (
	"github.com/okian/aeroscore/internal/domain/types"
)

// Key identifies one judge's score of one type. It is scoped to a single
// competitor by the caller.
type Key struct {
	JudgeID   int64
	ScoreType types.ScoreType
}

// Set is a per-invocation seen-set. It is not safe for concurrent use; each
// ranking build owns its own sets.
type Set[K comparable] struct {
	seen       map[K]struct{}
	duplicates int
}

// New returns an empty Set.
func New[K comparable]() *Set[K] {
	return &Set[K]{seen: make(map[K]struct{})}
}

// SeenAndRecord reports whether k was already recorded, recording it if not.
func (s *Set[K]) SeenAndRecord(k K) bool {
	if _, ok := s.seen[k]; ok {
		s.duplicates++
		return true
	}
	s.seen[k] = struct{}{}
	return false
}

// Size returns the number of distinct keys recorded.
func (s *Set[K]) Size() int { return len(s.seen) }

// Duplicates returns how many SeenAndRecord calls hit an existing key.
func (s *Set[K]) Duplicates() int { return s.duplicates }
