package ranking

import (
	"fmt"
	"strings"

	"github.com/okian/aeroscore/internal/domain/dedupe"
	"github.com/okian/aeroscore/internal/domain/model"
	"github.com/okian/aeroscore/internal/domain/scoring"
	"github.com/okian/aeroscore/internal/domain/types"
)

const memberSeparator = " / "

// Stats describes what a build saw in its feed.
type Stats struct {
	Competitors   int                     // validated competitors ranked
	Unvalidated   int                     // competitors in the feed without a validated total
	DuplicateRows int                     // observation rows dropped as repeats
	Fallbacks     map[types.ScoreType]int // panels aggregated with the full average
}

// Result is the output of Build.
type Result struct {
	Rankings map[string][]model.RankedEntry
	Stats    Stats
}

// ExtendedResult is the output of BuildExtended.
type ExtendedResult struct {
	Rankings map[string][]model.ExtendedEntry
	Stats    Stats
}

// aggregate is one competitor folded from its feed rows.
type aggregate struct {
	id       int64
	category string
	club     string
	members  []string
	names    *dedupe.Set[string]
	seen     *dedupe.Set[dedupe.Key]
	buckets  scoring.Buckets
	scores   map[string]float64
}

// BuildRankings ranks every validated competitor in rows, per category.
func BuildRankings(rows []model.FeedRow, validated map[int64]float64) map[string][]model.RankedEntry {
	return Build(rows, validated).Rankings
}

// BuildExtendedRankings is BuildRankings with each entry's raw judge scores attached.
func BuildExtendedRankings(rows []model.FeedRow, validated map[int64]float64) map[string][]model.ExtendedEntry {
	return BuildExtended(rows, validated).Rankings
}

// Build is BuildRankings that also reports feed statistics.
func Build(rows []model.FeedRow, validated map[int64]float64) Result {
	aggs, stats := fold(rows, validated, false)
	return Result{Rankings: rankAll(aggs, validated, &stats), Stats: stats}
}

// BuildExtended is BuildExtendedRankings that also reports feed statistics.
func BuildExtended(rows []model.FeedRow, validated map[int64]float64) ExtendedResult {
	aggs, stats := fold(rows, validated, true)
	ranked := rankAll(aggs, validated, &stats)

	out := make(map[string][]model.ExtendedEntry, len(ranked))
	for cat, entries := range ranked {
		ext := make([]model.ExtendedEntry, len(entries))
		for i, e := range entries {
			ext[i] = model.ExtendedEntry{RankedEntry: e, Scores: aggs[e.CompetitorID].scores}
		}
		out[cat] = ext
	}
	return ExtendedResult{Rankings: out, Stats: stats}
}

// fold partitions rows by competitor, keeping validated competitors only.
func fold(rows []model.FeedRow, validated map[int64]float64, withScores bool) (map[int64]*aggregate, Stats) {
	aggs := make(map[int64]*aggregate)
	skipped := dedupe.New[int64]()

	for i := range rows {
		row := &rows[i]
		if _, ok := validated[row.CompetitorID]; !ok {
			skipped.SeenAndRecord(row.CompetitorID)
			continue
		}

		agg, ok := aggs[row.CompetitorID]
		if !ok {
			agg = &aggregate{
				id:       row.CompetitorID,
				category: row.Category,
				club:     row.Club,
				names:    dedupe.New[string](),
				seen:     dedupe.New[dedupe.Key](),
			}
			if withScores {
				agg.scores = make(map[string]float64)
			}
			aggs[row.CompetitorID] = agg
		}

		if row.MemberID != nil {
			name := row.LastName + " " + row.FirstName
			if !agg.names.SeenAndRecord(name) {
				agg.members = append(agg.members, name)
			}
		}

		agg.add(row)
	}

	return aggs, Stats{Unvalidated: skipped.Size(), Fallbacks: make(map[types.ScoreType]int)}
}

// add deposits row's observation, if any, into the matching bucket.
func (a *aggregate) add(row *model.FeedRow) {
	if row.JudgeID == nil || row.ScoreType == nil || row.Value == nil {
		return
	}
	st := *row.ScoreType
	if !st.Valid() {
		return
	}
	if a.seen.SeenAndRecord(dedupe.Key{JudgeID: *row.JudgeID, ScoreType: st}) {
		return
	}

	v := *row.Value
	switch {
	case st == types.Execution:
		a.buckets.Execution = append(a.buckets.Execution, v)
	case st == types.Artistry:
		a.buckets.Artistry = append(a.buckets.Artistry, v)
	case st == types.Difficulty:
		a.buckets.Difficulty = append(a.buckets.Difficulty, v)
	case st.IsPenalty():
		a.buckets.Penalties = append(a.buckets.Penalties, v)
	}

	if a.scores != nil {
		a.scores[ScoreKey(row.JudgeName, st)] = v
	}
}

// ScoreKey labels a raw score in extended rankings and score sheets.
func ScoreKey(judgeName string, st types.ScoreType) string {
	return fmt.Sprintf("%s (%s)", judgeName, st)
}

// rankAll scores each aggregate, groups by category and ranks each group.
func rankAll(aggs map[int64]*aggregate, validated map[int64]float64, stats *Stats) map[string][]model.RankedEntry {
	groups := make(map[string][]model.RankedEntry)
	for _, a := range aggs {
		b := a.buckets.Score()
		if b.ExecutionMethod == scoring.MethodFullAverage {
			stats.Fallbacks[types.Execution]++
		}
		if b.ArtistryMethod == scoring.MethodFullAverage {
			stats.Fallbacks[types.Artistry]++
		}
		stats.DuplicateRows += a.seen.Duplicates()

		groups[a.category] = append(groups[a.category], model.RankedEntry{
			CompetitorID:    a.id,
			Competitor:      strings.Join(a.members, memberSeparator),
			Club:            a.club,
			TotalScore:      validated[a.id],
			CalcTotal:       b.Total,
			ExecutionScore:  b.Execution,
			ArtistryScore:   b.Artistry,
			DifficultyScore: b.Difficulty,
		})
	}
	stats.Competitors = len(aggs)

	out := make(map[string][]model.RankedEntry, len(groups))
	for cat, entries := range groups {
		out[cat] = Rank(entries)
	}
	return out
}
