package service

import (
	"context"
	"fmt"

	"github.com/okian/aeroscore/internal/adapters/repository"
	"github.com/okian/aeroscore/internal/domain/model"
	"github.com/okian/aeroscore/internal/domain/ranking"
	"github.com/okian/aeroscore/internal/domain/types"
	"github.com/okian/aeroscore/internal/validation"
	"github.com/okian/aeroscore/pkg/logger"
	"github.com/okian/aeroscore/pkg/metrics"
)

// JudgeScore is one line of a competitor's score sheet.
type JudgeScore struct {
	JudgeID   int64           `json:"judge_id"`
	ScoreType types.ScoreType `json:"score_type"`
	Value     float64         `json:"value"`
}

// SubmitScore stores a judge's score, overwriting an earlier one for the
// same competitor and score type.
func (s *Service) SubmitScore(ctx context.Context, in validation.ScoreInput) (model.Score, error) {
	if err := s.validate(in); err != nil {
		return model.Score{}, err
	}
	st, err := types.ParseScoreType(in.ScoreType)
	if err != nil {
		return model.Score{}, err
	}

	sc, err := s.store.UpsertScore(ctx, model.Observation{
		JudgeID:      in.JudgeID,
		CompetitorID: in.CompetitorID,
		ScoreType:    st,
		Value:        validation.RoundScore(*in.Value),
	}, s.now())
	if err != nil {
		return model.Score{}, err
	}
	metrics.RecordScoreSubmitted(st.String())
	s.logger.Debug(ctx, "score submitted",
		logger.Int64("judgeID", sc.JudgeID),
		logger.Int64("competitorID", sc.CompetitorID),
		logger.String("scoreType", st.String()),
		logger.Float64("value", sc.Value),
	)
	return sc, nil
}

// CompetitorScores returns a competitor's scores keyed "<judge name> (<score type>)".
func (s *Service) CompetitorScores(ctx context.Context, competitorID int64) (map[string]JudgeScore, error) {
	if _, err := s.store.GetCompetitor(ctx, competitorID); err != nil {
		return nil, err
	}
	scores, err := s.store.ListScores(ctx, repository.ScoreFilter{CompetitorID: competitorID})
	if err != nil {
		return nil, err
	}
	out := make(map[string]JudgeScore, len(scores))
	for _, sc := range scores {
		out[ranking.ScoreKey(sc.JudgeName, sc.ScoreType)] = JudgeScore{
			JudgeID:   sc.JudgeID,
			ScoreType: sc.ScoreType,
			Value:     sc.Value,
		}
	}
	return out, nil
}

// DeleteScore removes a score. Deleting a difficulty score clears the whole
// difficulty panel for the competitor: difficulty and difficulty
// penalization from every difficulty judge.
func (s *Service) DeleteScore(ctx context.Context, in validation.DeleteScoreInput) (int64, error) {
	if err := s.validate(in); err != nil {
		return 0, err
	}
	st, err := types.ParseScoreType(in.ScoreType)
	if err != nil {
		return 0, err
	}

	if st == types.Difficulty {
		n, err := s.store.DeleteDifficultyPanel(ctx, in.CompetitorID)
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, fmt.Errorf("difficulty scores for competitor %d: %w", in.CompetitorID, ErrNotFound)
		}
		metrics.RecordScoreDeleted(st.String())
		s.logger.Info(ctx, "difficulty panel cleared",
			logger.Int64("competitorID", in.CompetitorID),
			logger.Int64("removed", n),
		)
		return n, nil
	}

	if err := s.store.DeleteScore(ctx, in.JudgeID, in.CompetitorID, st); err != nil {
		return 0, err
	}
	metrics.RecordScoreDeleted(st.String())
	s.logger.Info(ctx, "score deleted",
		logger.Int64("judgeID", in.JudgeID),
		logger.Int64("competitorID", in.CompetitorID),
		logger.String("scoreType", st.String()),
	)
	return 1, nil
}
