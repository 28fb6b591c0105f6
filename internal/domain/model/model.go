// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/aeroscore/internal/domain/types"
)

// Observation is one judge's score for one competitor on one criterion.
// At most one exists per (JudgeID, CompetitorID, ScoreType).
type Observation struct {
	JudgeID      int64           `json:"judge_id"`
	CompetitorID int64           `json:"competitor_id"`
	ScoreType    types.ScoreType `json:"score_type"`
	Value        float64         `json:"value"`
}

// Score is an observation as stored, with audit fields.
type Score struct {
	ID int64 `json:"id"`
	Observation
	JudgeName string    `json:"judge_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Member is one athlete in a routine.
type Member struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Age       int    `json:"age"`
	Sex       string `json:"sex"`
}

// DisplayName is the "LastName FirstName" form used on result sheets.
func (m Member) DisplayName() string {
	return m.LastName + " " + m.FirstName
}

// Competitor is an entry in a category: one athlete or a pair, trio, group or dance team.
type Competitor struct {
	ID        int64     `json:"id"`
	Category  string    `json:"category"`
	Club      string    `json:"club"`
	Members   []Member  `json:"members"`
	CreatedAt time.Time `json:"created_at"`
}

// Judge is a panel member.
type Judge struct {
	ID        int64           `json:"id"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Role      types.JudgeRole `json:"role"`
}

// DisplayName is "FirstName LastName".
func (j Judge) DisplayName() string {
	return j.FirstName + " " + j.LastName
}

// FeedRow is one row of the left-joined ranking projection
// (competitor × score × member). Nullable columns are pointers.
type FeedRow struct {
	CompetitorID int64
	Category     string
	Club         string
	JudgeID      *int64
	JudgeName    string
	ScoreType    *types.ScoreType
	Value        *float64
	MemberID     *int64
	FirstName    string
	LastName     string
}

// RankedEntry is one competitor's line in a category ranking.
type RankedEntry struct {
	CompetitorID    int64   `json:"competitor_id"`
	Competitor      string  `json:"competitor"`
	Club            string  `json:"club"`
	TotalScore      float64 `json:"total_score"`
	CalcTotal       float64 `json:"calc_total"`
	ExecutionScore  float64 `json:"execution_score"`
	ArtistryScore   float64 `json:"artistry_score"`
	DifficultyScore float64 `json:"difficulty_score"`
	Position        int     `json:"position"`
}

// ExtendedEntry is a RankedEntry plus every raw judge score, keyed
// "<judge name> (<score_type>)".
type ExtendedEntry struct {
	RankedEntry
	Scores map[string]float64 `json:"scores"`
}

// ValidatedCompetitor is the head judge's signed-off total for a competitor.
type ValidatedCompetitor struct {
	CompetitorID int64     `json:"competitor_id"`
	TotalScore   float64   `json:"total_score"`
	ValidatedAt  time.Time `json:"validated_at"`
}

// LogEntry is one line of the activity log.
type LogEntry struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
