// Package service implements the judging operations behind the HTTP API and
// the CLI: registration, score capture, live vote and display state, and
// rankings built from a consistent snapshot of the store.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/aeroscore/internal/adapters/activitylog"
	"github.com/okian/aeroscore/internal/adapters/repository"
	"github.com/okian/aeroscore/internal/domain/model"
	"github.com/okian/aeroscore/internal/validation"
	"github.com/okian/aeroscore/pkg/logger"
)

// DefaultShowTTL is how long a competitor stays on the display screen.
const DefaultShowTTL = 20 * time.Second

// Service implements the API dependencies for a judging session.
type Service struct {
	store     repository.Store
	validator *validation.Validator
	activity  *activitylog.Buffer
	logger    logger.Logger

	now     func() time.Time
	showTTL time.Duration
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithShowTTL sets how long a shown competitor stays active.
func WithShowTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.showTTL = d
		}
	}
}

// WithActivityLog sets the buffer that holds the activity log.
func WithActivityLog(b *activitylog.Buffer) Option {
	return func(s *Service) {
		if b != nil {
			s.activity = b
		}
	}
}

// WithValidator sets the request validator.
func WithValidator(v *validation.Validator) Option {
	return func(s *Service) {
		if v != nil {
			s.validator = v
		}
	}
}

// New constructs a Service on top of store.
func New(store repository.Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, ErrNoStore
	}
	s := &Service{
		store:   store,
		now:     time.Now,
		showTTL: DefaultShowTTL,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.activity == nil {
		s.activity = activitylog.New()
	}
	if s.validator == nil {
		v, err := validation.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create validator: %w", err)
		}
		s.validator = v
	}
	return s, nil
}

// Close releases the underlying store.
func (s *Service) Close() error {
	s.logger.Info(context.Background(), "closing judging service")
	return s.store.Close()
}

// snapshot loads the ranking feed and the validated totals as of one moment.
func (s *Service) snapshot(ctx context.Context) ([]model.FeedRow, map[int64]float64, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load ranking snapshot: %w", err)
	}
	return snap.Feed, snap.Validated, nil
}

func (s *Service) validate(in any) error {
	return s.validator.Struct(in)
}
