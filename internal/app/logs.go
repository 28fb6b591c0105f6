package service

import (
	"context"

	"github.com/okian/aeroscore/internal/domain/model"
	"github.com/okian/aeroscore/internal/validation"
)

// AppendLog adds a message to the activity log.
func (s *Service) AppendLog(ctx context.Context, in validation.LogInput) (model.LogEntry, error) {
	if err := s.validate(in); err != nil {
		return model.LogEntry{}, err
	}
	return s.activity.Append(ctx, in.Message), nil
}

// LogUsage reports how many entries the activity log holds and how many it keeps.
func (s *Service) LogUsage() (retained, capacity int) {
	return s.activity.Len(), s.activity.Capacity()
}

// Logs returns the retained activity log, oldest first.
func (s *Service) Logs(ctx context.Context) []model.LogEntry {
	return s.activity.Entries(ctx)
}
