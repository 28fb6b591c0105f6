// Package ranking turns the flat observation feed into per-category rankings.
package ranking

import (
	"sort"

	"github.com/okian/aeroscore/internal/domain/model"
)

// Rank orders entries of one category and assigns positions.
//
// Entries are sorted descending by validated total, then execution, artistry and
// difficulty. The calculated total is never a sort key. An entry whose four keys
// equal the previous entry's shares its position; otherwise its position is its
// 1-based index, so two entries tied for first are followed by third.
//
// The input slice is not modified. Entries that tie on every key keep ascending
// competitor id order.
func Rank(entries []model.RankedEntry) []model.RankedEntry {
	out := make([]model.RankedEntry, len(entries))
	copy(out, entries)

	sort.Slice(out, func(i, j int) bool { return out[i].CompetitorID < out[j].CompetitorID })
	sort.SliceStable(out, func(i, j int) bool { return before(out[i], out[j]) })

	pos := 0
	for i := range out {
		if i == 0 || !sameKey(out[i-1], out[i]) {
			pos = i + 1
		}
		out[i].Position = pos
	}
	return out
}

func before(a, b model.RankedEntry) bool {
	if a.TotalScore != b.TotalScore {
		return a.TotalScore > b.TotalScore
	}
	if a.ExecutionScore != b.ExecutionScore {
		return a.ExecutionScore > b.ExecutionScore
	}
	if a.ArtistryScore != b.ArtistryScore {
		return a.ArtistryScore > b.ArtistryScore
	}
	return a.DifficultyScore > b.DifficultyScore
}

func sameKey(a, b model.RankedEntry) bool {
	return a.TotalScore == b.TotalScore &&
		a.ExecutionScore == b.ExecutionScore &&
		a.ArtistryScore == b.ArtistryScore &&
		a.DifficultyScore == b.DifficultyScore
}
