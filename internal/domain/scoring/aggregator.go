// Package scoring reduces judge panels to single sub-scores and combines them
// into a competitor's calculated total.
package scoring

import (
	"math"
	"sort"
)

// minPanelSize is the smallest panel the tolerance rule applies to.
const minPanelSize = 4

// scoreScale converts one-decimal scores to integer hundredths so tolerance
// boundaries compare exactly.
const scoreScale = 100

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return scoreFP(math.Round(x * scoreScale))
}

// Method names the rule Aggregate applied to a panel.
type Method string

// Aggregation methods.
const (
	// MethodInsufficient means fewer than four scores; the result is 0.
	MethodInsufficient Method = "insufficient"
	// MethodMiddle means the two central judges agreed within tolerance.
	MethodMiddle Method = "middle"
	// MethodFullAverage means the central judges disagreed and every score was averaged.
	MethodFullAverage Method = "full_average"
)

// tolerance bands, as (minimum sum of the two central scores, allowed difference),
// both in hundredths. A middle average >= 8.0 is a central sum >= 16.00.
var toleranceBands = []struct { //nolint:gochecknoglobals // fixed scoring table
	minSum  scoreFP
	allowed scoreFP
}{
	{minSum: 1600, allowed: 30},
	{minSum: 1400, allowed: 40},
	{minSum: 1200, allowed: 50},
}

const defaultAllowed scoreFP = 60

func allowedDifference(sum scoreFP) scoreFP {
	for _, b := range toleranceBands {
		if sum >= b.minSum {
			return b.allowed
		}
	}
	return defaultAllowed
}

// Aggregate reduces an execution or artistry panel to one value.
//
// With fewer than four values the result is 0. Otherwise the values are sorted
// and only the 2nd and 3rd smallest are inspected, however many judges there
// are. If their difference exceeds the tolerance for their average the mean of
// all values is returned, else their average.
func Aggregate(values []float64) float64 {
	v, _ := AggregatePanel(values)
	return v
}

// AggregatePanel is Aggregate that also reports which rule was applied.
func AggregatePanel(values []float64) (float64, Method) {
	if len(values) < minPanelSize {
		return 0, MethodInsufficient
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	a, b := sorted[1], sorted[2]
	aFP, bFP := toFixedPoint(a), toFixedPoint(b)
	diffFP := bFP - aFP
	if diffFP < 0 {
		diffFP = -diffFP
	}

	if diffFP > allowedDifference(aFP+bFP) {
		return mean(values), MethodFullAverage
	}
	return (a + b) / 2, MethodMiddle
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
