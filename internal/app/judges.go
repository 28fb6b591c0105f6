package service

import (
	"context"

	"github.com/okian/aeroscore/internal/adapters/repository"
	"github.com/okian/aeroscore/internal/domain/model"
	"github.com/okian/aeroscore/internal/domain/types"
	"github.com/okian/aeroscore/internal/validation"
	"github.com/okian/aeroscore/pkg/logger"
)

// ListJudges returns the panel ordered by id.
func (s *Service) ListJudges(ctx context.Context) ([]model.Judge, error) {
	return s.store.ListJudges(ctx)
}

// CreateJudge adds a judge to the panel.
func (s *Service) CreateJudge(ctx context.Context, in validation.JudgeInput) (model.Judge, error) {
	if err := s.validate(in); err != nil {
		return model.Judge{}, err
	}
	role, err := types.ParseJudgeRole(in.Role)
	if err != nil {
		return model.Judge{}, err
	}
	j, err := s.store.CreateJudge(ctx, model.Judge{FirstName: in.FirstName, LastName: in.LastName, Role: role})
	if err != nil {
		return model.Judge{}, err
	}
	s.logger.Info(ctx, "judge created",
		logger.Int64("judgeID", j.ID),
		logger.String("role", string(j.Role)),
	)
	return j, nil
}

// LoginJudge records the name a judge entered on their tablet.
func (s *Service) LoginJudge(ctx context.Context, judgeID int64, in validation.JudgeLoginInput) (model.Judge, error) {
	if err := s.validate(in); err != nil {
		return model.Judge{}, err
	}
	j, err := s.store.RenameJudge(ctx, judgeID, in.FirstName, in.LastName)
	if err != nil {
		return model.Judge{}, err
	}
	s.logger.Info(ctx, "judge logged in", logger.Int64("judgeID", j.ID), logger.String("name", j.DisplayName()))
	return j, nil
}

// JudgeScores returns every score given by one judge.
func (s *Service) JudgeScores(ctx context.Context, judgeID int64) ([]model.Score, error) {
	if _, err := s.store.GetJudge(ctx, judgeID); err != nil {
		return nil, err
	}
	return s.store.ListScores(ctx, repository.ScoreFilter{JudgeID: judgeID})
}

// AllScores returns every stored score.
func (s *Service) AllScores(ctx context.Context) ([]model.Score, error) {
	return s.store.ListScores(ctx, repository.ScoreFilter{})
}
