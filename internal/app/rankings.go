package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/okian/aeroscore/internal/adapters/export"
	"github.com/okian/aeroscore/internal/domain/model"
	"github.com/okian/aeroscore/internal/domain/ranking"
	"github.com/okian/aeroscore/internal/domain/types"
	"github.com/okian/aeroscore/pkg/logger"
	"github.com/okian/aeroscore/pkg/metrics"
)

// Ranking variants, used as metric labels.
const (
	variantStandard = "standard"
	variantExtended = "extended"
)

// Rankings ranks every validated competitor, per category.
func (s *Service) Rankings(ctx context.Context) (map[string][]model.RankedEntry, error) {
	start := time.Now()
	rows, validated, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	res := ranking.Build(rows, validated)

	sizes := make(map[string]int, len(res.Rankings))
	for cat, entries := range res.Rankings {
		sizes[cat] = len(entries)
	}
	s.observeBuild(ctx, variantStandard, start, res.Stats, sizes)
	return res.Rankings, nil
}

// ExtendedRankings is Rankings with every raw judge score attached to each entry.
func (s *Service) ExtendedRankings(ctx context.Context) (map[string][]model.ExtendedEntry, error) {
	start := time.Now()
	rows, validated, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	res := ranking.BuildExtended(rows, validated)

	sizes := make(map[string]int, len(res.Rankings))
	for cat, entries := range res.Rankings {
		sizes[cat] = len(entries)
	}
	s.observeBuild(ctx, variantExtended, start, res.Stats, sizes)
	return res.Rankings, nil
}

// CategoryRanking ranks one category. Returns ErrUnknownCategory for a name
// outside the programme and ErrNotFound when nobody in it is validated.
func (s *Service) CategoryRanking(ctx context.Context, category string) ([]model.RankedEntry, error) {
	if !types.IsCategory(category) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	all, err := s.Rankings(ctx)
	if err != nil {
		return nil, err
	}
	entries := all[category]
	if len(entries) == 0 {
		return nil, fmt.Errorf("rankings for %q: %w", category, ErrNotFound)
	}
	return entries, nil
}

// ExportRankings writes the rankings to w as an XLSX workbook.
func (s *Service) ExportRankings(ctx context.Context, w io.Writer) error {
	all, err := s.Rankings(ctx)
	if err != nil {
		return err
	}
	if err := export.Rankings(w, all); err != nil {
		return fmt.Errorf("failed to export rankings: %w", err)
	}
	return nil
}

func (s *Service) observeBuild(ctx context.Context, variant string, start time.Time, st ranking.Stats, sizes map[string]int) {
	metrics.RecordRankingsComputed(variant)
	metrics.RecordRankingBuildLatency(float64(time.Since(start).Microseconds()) / 1000)
	metrics.RecordDuplicateFeedRows(st.DuplicateRows)
	metrics.RecordUnvalidatedSkipped(st.Unvalidated)
	for scoreType, n := range st.Fallbacks {
		metrics.RecordPanelFallbacks(scoreType.String(), n)
	}
	for cat, n := range sizes {
		metrics.UpdateRankedEntries(cat, n)
	}

	if st.DuplicateRows > 0 {
		s.logger.Warn(ctx, "duplicate observations dropped from ranking feed",
			logger.Int("rows", st.DuplicateRows),
		)
	}
	s.logger.Debug(ctx, "rankings built",
		logger.String("variant", variant),
		logger.Int("competitors", st.Competitors),
		logger.Int("unvalidated", st.Unvalidated),
		logger.Int("categories", len(sizes)),
	)
}
