package service

import (
	"context"
	"errors"
	"time"

	"github.com/okian/aeroscore/internal/adapters/repository"
	"github.com/okian/aeroscore/internal/domain/model"
	"github.com/okian/aeroscore/internal/validation"
	"github.com/okian/aeroscore/pkg/logger"
	"github.com/okian/aeroscore/pkg/metrics"
)

// Display modes of the show screen.
const (
	ShowBanner     = "banner"
	ShowCompetitor = "competitor"
)

// Vote is the competitor judges are currently scoring.
type Vote struct {
	Competitor   model.Competitor `json:"competitor"`
	StartedAt    time.Time        `json:"started_at"`
	AlreadyVoted bool             `json:"already_voted"`
}

// Show is the competitor on the display screen.
type Show struct {
	Competitor model.Competitor `json:"competitor"`
	StartedAt  time.Time        `json:"started_at"`
}

// ShowState is what the display screen renders.
type ShowState struct {
	Mode       string            `json:"mode"`
	Competitor *model.Competitor `json:"competitor,omitempty"`
	TotalScore *float64          `json:"total_score,omitempty"`
}

// StartVote opens voting for a competitor, replacing any open vote.
func (s *Service) StartVote(ctx context.Context, in validation.CompetitorRef) error {
	if err := s.validate(in); err != nil {
		return err
	}
	if err := s.store.SetVote(ctx, in.CompetitorID, s.now()); err != nil {
		return err
	}
	metrics.UpdateVoteActive(true)
	s.logger.Info(ctx, "vote started", logger.Int64("competitorID", in.CompetitorID))
	return nil
}

// StopVote closes voting. Returns ErrNotFound when no vote is open.
func (s *Service) StopVote(ctx context.Context) error {
	if err := s.store.ClearVote(ctx); err != nil {
		return err
	}
	metrics.UpdateVoteActive(false)
	s.logger.Info(ctx, "vote stopped")
	return nil
}

// CurrentVote returns the open vote. When judgeID is positive the judge must
// exist, and AlreadyVoted reports whether they have scored the competitor.
func (s *Service) CurrentVote(ctx context.Context, judgeID int64) (Vote, error) {
	if judgeID > 0 {
		if _, err := s.store.GetJudge(ctx, judgeID); err != nil {
			return Vote{}, err
		}
	}
	slot, err := s.store.CurrentVote(ctx)
	if err != nil {
		return Vote{}, err
	}
	c, err := s.store.GetCompetitor(ctx, slot.CompetitorID)
	if err != nil {
		return Vote{}, err
	}
	v := Vote{Competitor: c, StartedAt: slot.StartedAt}
	if judgeID > 0 {
		if v.AlreadyVoted, err = s.store.HasScored(ctx, judgeID, slot.CompetitorID); err != nil {
			return Vote{}, err
		}
	}
	return v, nil
}

// ShowCompetitor puts a competitor on the display screen.
func (s *Service) ShowCompetitor(ctx context.Context, in validation.CompetitorRef) error {
	if err := s.validate(in); err != nil {
		return err
	}
	if err := s.store.SetShow(ctx, in.CompetitorID, s.now()); err != nil {
		return err
	}
	metrics.UpdateShowActive(true)
	s.logger.Info(ctx, "competitor shown", logger.Int64("competitorID", in.CompetitorID))
	return nil
}

// ActiveShow returns the competitor on screen. Entries older than the show
// TTL expire first, so a stale entry reads as ErrNotFound.
func (s *Service) ActiveShow(ctx context.Context) (Show, error) {
	if err := s.store.ExpireShow(ctx, s.now().Add(-s.showTTL)); err != nil {
		return Show{}, err
	}
	slot, err := s.store.CurrentShow(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.UpdateShowActive(false)
		}
		return Show{}, err
	}
	c, err := s.store.GetCompetitor(ctx, slot.CompetitorID)
	if err != nil {
		return Show{}, err
	}
	return Show{Competitor: c, StartedAt: slot.StartedAt}, nil
}

// ClearShow empties the display screen.
func (s *Service) ClearShow(ctx context.Context) error {
	if err := s.store.ClearShow(ctx); err != nil {
		return err
	}
	metrics.UpdateShowActive(false)
	s.logger.Info(ctx, "show cleared")
	return nil
}

// ShowState reports the banner when nothing is on screen, otherwise the
// shown competitor and its validated total, if any.
func (s *Service) ShowState(ctx context.Context) (ShowState, error) {
	show, err := s.ActiveShow(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return ShowState{Mode: ShowBanner}, nil
	}
	if err != nil {
		return ShowState{}, err
	}

	state := ShowState{Mode: ShowCompetitor, Competitor: &show.Competitor}
	totals, err := s.store.ValidatedTotals(ctx)
	if err != nil {
		return ShowState{}, err
	}
	if total, ok := totals[show.Competitor.ID]; ok {
		state.TotalScore = &total
	}
	return state, nil
}

// refreshVoteGauge syncs the vote gauge after the store closed a vote on its own.
func (s *Service) refreshVoteGauge(ctx context.Context) {
	_, err := s.store.CurrentVote(ctx)
	metrics.UpdateVoteActive(err == nil)
}
