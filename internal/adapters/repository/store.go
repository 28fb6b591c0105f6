// Package repository persists competitors, judges, raw scores and the live
// vote/show slots, and serves the flat feed the ranking pipeline consumes.
package repository

import (
	"context"
	"time"

	"github.com/okian/aeroscore/internal/domain/model"
	"github.com/okian/aeroscore/internal/domain/types"
)

// CompetitorStore manages competitors, their members and validated totals.
type CompetitorStore interface {
	// CreateCompetitor inserts a competitor and its members atomically.
	// Returns ErrConflict when a member email is already registered.
	CreateCompetitor(ctx context.Context, c model.Competitor) (model.Competitor, error)
	// DeleteCompetitor removes a competitor and everything referencing it.
	// Returns ErrNotFound if the competitor is unknown.
	DeleteCompetitor(ctx context.Context, id int64) error
	GetCompetitor(ctx context.Context, id int64) (model.Competitor, error)
	// ListCompetitors returns competitors with members ordered by id. An empty
	// category lists every category.
	ListCompetitors(ctx context.Context, category string) ([]model.Competitor, error)
	CountCompetitors(ctx context.Context) (int, error)
	CountCategories(ctx context.Context) (int, error)

	// Validate records the head judge's total and closes the competitor's vote.
	Validate(ctx context.Context, competitorID int64, total float64, at time.Time) error
	// Unvalidate removes the validated total. Returns ErrNotFound if there was none.
	Unvalidate(ctx context.Context, competitorID int64) error
	ValidatedTotals(ctx context.Context) (map[int64]float64, error)
}

// JudgeStore manages the judging panel.
type JudgeStore interface {
	CreateJudge(ctx context.Context, j model.Judge) (model.Judge, error)
	GetJudge(ctx context.Context, id int64) (model.Judge, error)
	ListJudges(ctx context.Context) ([]model.Judge, error)
	RenameJudge(ctx context.Context, id int64, firstName, lastName string) (model.Judge, error)
}

// ScoreFilter narrows ListScores. Zero fields match everything.
type ScoreFilter struct {
	JudgeID      int64
	CompetitorID int64
}

// ScoreStore manages raw judge scores.
type ScoreStore interface {
	// UpsertScore inserts or overwrites the (judge, competitor, score type) score.
	UpsertScore(ctx context.Context, o model.Observation, at time.Time) (model.Score, error)
	// DeleteScore removes one score. Returns ErrNotFound if nothing matched.
	DeleteScore(ctx context.Context, judgeID, competitorID int64, st types.ScoreType) error
	// DeleteDifficultyPanel removes difficulty and difficulty_penalization
	// scores given to competitorID by every difficulty judge, in one statement.
	DeleteDifficultyPanel(ctx context.Context, competitorID int64) (int64, error)
	ListScores(ctx context.Context, f ScoreFilter) ([]model.Score, error)
	// RankingFeed returns the competitor × score × member projection, one row
	// per combination, with NULL columns where a competitor has no scores or
	// no members.
	RankingFeed(ctx context.Context) ([]model.FeedRow, error)
	// Snapshot returns the feed and the validated totals as of one moment.
	Snapshot(ctx context.Context) (RankingSnapshot, error)
}

// RankingSnapshot is the input of one ranking build.
type RankingSnapshot struct {
	Feed      []model.FeedRow
	Validated map[int64]float64
}

// Slot is a single-occupant live state (the open vote or the display screen).
type Slot struct {
	CompetitorID int64
	StartedAt    time.Time
}

// LiveStore manages the open vote and the display screen.
type LiveStore interface {
	// SetVote opens voting for competitorID, replacing any open vote.
	SetVote(ctx context.Context, competitorID int64, at time.Time) error
	// ClearVote closes voting. Returns ErrNotFound if no vote was open.
	ClearVote(ctx context.Context) error
	// CurrentVote returns the open vote or ErrNotFound.
	CurrentVote(ctx context.Context) (Slot, error)
	// HasScored reports whether judgeID has any score for competitorID.
	HasScored(ctx context.Context, judgeID, competitorID int64) (bool, error)

	// SetShow puts competitorID on screen, replacing whatever was shown.
	SetShow(ctx context.Context, competitorID int64, at time.Time) error
	// ExpireShow clears the screen if its entry started before cutoff.
	ExpireShow(ctx context.Context, cutoff time.Time) error
	// CurrentShow returns what is on screen or ErrNotFound.
	CurrentShow(ctx context.Context) (Slot, error)
	ClearShow(ctx context.Context) error
}

// Store is everything the application needs from persistence.
type Store interface {
	CompetitorStore
	JudgeStore
	ScoreStore
	LiveStore
	Close() error
}
