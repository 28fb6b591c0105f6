package scoring

// ComputeTotal combines the aggregated sub-scores into a calculated total.
func ComputeTotal(execution, artistry, difficulty, penalties float64) float64 {
	return execution + artistry + difficulty - penalties
}

// Buckets holds one competitor's deduplicated observations by criterion.
type Buckets struct {
	Execution  []float64
	Artistry   []float64
	Difficulty []float64
	Penalties  []float64
}

// Breakdown is the result of scoring a set of buckets.
type Breakdown struct {
	Execution       float64
	Artistry        float64
	Difficulty      float64
	Penalties       float64
	Total           float64
	ExecutionMethod Method
	ArtistryMethod  Method
}

// Score aggregates each bucket and computes the total. Difficulty is the first
// value in its bucket; penalties are summed.
func (b Buckets) Score() Breakdown {
	var out Breakdown
	out.Execution, out.ExecutionMethod = AggregatePanel(b.Execution)
	out.Artistry, out.ArtistryMethod = AggregatePanel(b.Artistry)
	if len(b.Difficulty) > 0 {
		out.Difficulty = b.Difficulty[0]
	}
	for _, p := range b.Penalties {
		out.Penalties += p
	}
	out.Total = ComputeTotal(out.Execution, out.Artistry, out.Difficulty, out.Penalties)
	return out
}
