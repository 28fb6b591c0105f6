// Package types contains the closed enumerations shared across the application:
// score types, competition categories and judge roles.
package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknown is wrapped by every Parse* function on an unrecognised token.
var ErrUnknown = errors.New("unknown value")

// ScoreType is a criterion a judge can score a competitor on. Tokens are
// case-sensitive.
type ScoreType string

// The six score types.
const (
	Execution              ScoreType = "execution"
	Artistry               ScoreType = "artistry"
	Difficulty             ScoreType = "difficulty"
	DifficultyPenalization ScoreType = "difficulty_penalization"
	LinePenalization       ScoreType = "line_penalization"
	PrincipalPenalization  ScoreType = "principal_penalization"
)

// ScoreTypes lists every score type in display order.
func ScoreTypes() []ScoreType {
	return []ScoreType{
		Execution,
		Artistry,
		Difficulty,
		DifficultyPenalization,
		LinePenalization,
		PrincipalPenalization,
	}
}

// Valid reports whether t is one of the six tokens.
func (t ScoreType) Valid() bool {
	switch t {
	case Execution, Artistry, Difficulty, DifficultyPenalization, LinePenalization, PrincipalPenalization:
		return true
	}
	return false
}

// IsPenalty reports whether t is subtracted from the total.
func (t ScoreType) IsPenalty() bool {
	switch t {
	case DifficultyPenalization, LinePenalization, PrincipalPenalization:
		return true
	}
	return false
}

// String returns the wire token.
func (t ScoreType) String() string { return string(t) }

// ParseScoreType parses a wire token. Matching is exact.
func ParseScoreType(s string) (ScoreType, error) {
	t := ScoreType(s)
	if !t.Valid() {
		return "", fmt.Errorf("score type %q: %w", s, ErrUnknown)
	}
	return t, nil
}

// JudgeRole is the panel a judge sits on.
type JudgeRole string

// Judge roles.
const (
	RolePrincipal  JudgeRole = "principal"
	RoleExecution  JudgeRole = "execution"
	RoleArtistry   JudgeRole = "artistry"
	RoleDifficulty JudgeRole = "difficulty"
)

// ParseJudgeRole parses a role token.
func ParseJudgeRole(s string) (JudgeRole, error) {
	switch r := JudgeRole(s); r {
	case RolePrincipal, RoleExecution, RoleArtistry, RoleDifficulty:
		return r, nil
	}
	return "", fmt.Errorf("judge role %q: %w", s, ErrUnknown)
}

// categories is the fixed list of competition categories in programme order.
var categories = []string{ //nolint:gochecknoglobals // closed enumeration
	"Individual Men - Kids Development",
	"Individual Women - Kids Development",
	"Mixed Pair - Kids Development",
	"Trio - Kids Development",
	"Group - Kids Development",
	"Individual Men - National Development",
	"Individual Women - National Development",
	"Mixed Pair - National Development",
	"Trio - National Development",
	"Group - National Development",
	"Individual Men - Youth",
	"Individual Women - Youth",
	"Mixed Pair - Youth",
	"Trio - Youth",
	"Group - Youth",
	"Aerobic Dance - Youth",
	"Individual Men - Juniors",
	"Individual Women - Juniors",
	"Mixed Pair - Juniors",
	"Trio - Juniors",
	"Group - Juniors",
	"Aerobic Dance - Juniors",
	"Individual Men - Seniors",
	"Individual Women - Seniors",
	"Mixed Pair - Seniors",
	"Trio - Seniors",
	"Group - Seniors",
	"Aerobic Dance - Seniors",
}

// Categories returns a copy of the category list in programme order.
func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

// IsCategory reports whether name is a known category.
func IsCategory(name string) bool {
	for _, c := range categories {
		if c == name {
			return true
		}
	}
	return false
}

// MemberRange returns the inclusive number of members a routine in category
// must have. Unknown categories accept 1 to 999.
func MemberRange(category string) (minMembers, maxMembers int) {
	switch {
	case strings.Contains(category, "Individual"):
		return 1, 1
	case strings.Contains(category, "Pair"):
		return 2, 2
	case strings.Contains(category, "Trio"):
		return 3, 3
	case strings.Contains(category, "Group"):
		return 5, 5
	case strings.Contains(category, "Dance"):
		return 6, 8
	default:
		return 1, 999
	}
}
