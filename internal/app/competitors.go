package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/okian/aeroscore/internal/adapters/repository"
	"github.com/okian/aeroscore/internal/domain/model"
	"github.com/okian/aeroscore/internal/domain/types"
	"github.com/okian/aeroscore/internal/validation"
	"github.com/okian/aeroscore/pkg/logger"
	"github.com/okian/aeroscore/pkg/metrics"
)

// CompetitorSheet is a competitor as the head judge sees it: every score
// received so far and the validated total, if any.
type CompetitorSheet struct {
	model.Competitor
	Scores     []model.Score `json:"scores"`
	Validated  bool          `json:"validated"`
	TotalScore *float64      `json:"total_score,omitempty"`
}

// CreateCompetitor validates and registers a competitor with its members.
func (s *Service) CreateCompetitor(ctx context.Context, in validation.CompetitorInput) (model.Competitor, error) {
	if err := s.validate(in); err != nil {
		return model.Competitor{}, err
	}

	c := model.Competitor{
		Category:  in.Category,
		Club:      in.Club,
		Members:   make([]model.Member, len(in.Members)),
		CreatedAt: s.now().UTC(),
	}
	for i, m := range in.Members {
		c.Members[i] = model.Member{
			FirstName: m.FirstName,
			LastName:  m.LastName,
			Email:     m.Email,
			Age:       m.Age,
			Sex:       m.Sex,
		}
	}

	created, err := s.store.CreateCompetitor(ctx, c)
	if err != nil {
		return model.Competitor{}, err
	}
	s.logger.Info(ctx, "competitor registered",
		logger.Int64("competitorID", created.ID),
		logger.String("category", created.Category),
		logger.Int("members", len(created.Members)),
	)
	return created, nil
}

// DeleteCompetitor removes a competitor with its scores and live slots.
func (s *Service) DeleteCompetitor(ctx context.Context, id int64) error {
	if err := s.store.DeleteCompetitor(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "competitor deleted", logger.Int64("competitorID", id))
	return nil
}

// ListCompetitors returns every competitor with members.
func (s *Service) ListCompetitors(ctx context.Context) ([]model.Competitor, error) {
	return s.store.ListCompetitors(ctx, "")
}

// CategoryCompetitors returns the competitors of one category with every
// judge's scores and their validation state.
func (s *Service) CategoryCompetitors(ctx context.Context, category string) ([]CompetitorSheet, error) {
	if !types.IsCategory(category) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	var (
		competitors []model.Competitor
		scores      []model.Score
		validated   map[int64]float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		competitors, err = s.store.ListCompetitors(gctx, category)
		return err
	})
	g.Go(func() (err error) {
		scores, err = s.store.ListScores(gctx, repository.ScoreFilter{})
		return err
	})
	g.Go(func() (err error) {
		validated, err = s.store.ValidatedTotals(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byCompetitor := make(map[int64][]model.Score)
	for _, sc := range scores {
		byCompetitor[sc.CompetitorID] = append(byCompetitor[sc.CompetitorID], sc)
	}

	out := make([]CompetitorSheet, len(competitors))
	for i, c := range competitors {
		sheet := CompetitorSheet{Competitor: c, Scores: byCompetitor[c.ID]}
		if sheet.Scores == nil {
			sheet.Scores = []model.Score{}
		}
		if total, ok := validated[c.ID]; ok {
			sheet.Validated = true
			sheet.TotalScore = &total
		}
		out[i] = sheet
	}
	return out, nil
}

// CountCompetitors returns the number of registered competitors.
func (s *Service) CountCompetitors(ctx context.Context) (int, error) {
	return s.store.CountCompetitors(ctx)
}

// CountCategories returns the number of categories with at least one competitor.
func (s *Service) CountCategories(ctx context.Context) (int, error) {
	return s.store.CountCategories(ctx)
}

// ValidateCompetitor records the head judge's total. Validating also closes
// the competitor's open vote.
func (s *Service) ValidateCompetitor(ctx context.Context, competitorID int64, in validation.ValidateInput) (float64, error) {
	if err := s.validate(in); err != nil {
		return 0, err
	}
	total := validation.RoundTotal(*in.TotalScore)
	if err := s.store.Validate(ctx, competitorID, total, s.now()); err != nil {
		return 0, err
	}
	metrics.RecordCompetitorValidated()
	s.refreshVoteGauge(ctx)
	s.logger.Info(ctx, "competitor validated",
		logger.Int64("competitorID", competitorID),
		logger.Float64("total", total),
	)
	return total, nil
}

// UnvalidateCompetitor withdraws a validated total.
func (s *Service) UnvalidateCompetitor(ctx context.Context, competitorID int64) error {
	if err := s.store.Unvalidate(ctx, competitorID); err != nil {
		return err
	}
	s.logger.Info(ctx, "competitor unvalidated", logger.Int64("competitorID", competitorID))
	return nil
}
