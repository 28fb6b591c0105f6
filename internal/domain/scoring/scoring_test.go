package scoring_test

import (
	"testing"

	scoring "github.com/okian/aeroscore/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

const eps = 1e-9

func TestAggregate(t *testing.T) {
	Convey("Given an execution panel", t, func() {
		Convey("When the central judges agree within tolerance", func() {
			v, m := scoring.AggregatePanel([]float64{6.0, 7.0, 7.2, 9.0})

			Convey("Then the central average is used", func() {
				So(v, ShouldAlmostEqual, 7.1, eps)
				So(m, ShouldEqual, scoring.MethodMiddle)
			})
		})

		Convey("When the central judges are identical", func() {
			Convey("Then their value is returned", func() {
				So(scoring.Aggregate([]float64{5.0, 9.0, 9.0, 9.0}), ShouldAlmostEqual, 9.0, eps)
			})
		})

		Convey("When the central judges disagree widely", func() {
			v, m := scoring.AggregatePanel([]float64{1.0, 5.0, 9.0, 10.0})

			Convey("Then the mean of all four is used", func() {
				So(v, ShouldAlmostEqual, 6.25, eps)
				So(m, ShouldEqual, scoring.MethodFullAverage)
			})
		})

		Convey("When fewer than four scores are present", func() {
			v, m := scoring.AggregatePanel([]float64{9.0, 9.5, 9.8})

			Convey("Then the result is zero", func() {
				So(v, ShouldEqual, 0)
				So(m, ShouldEqual, scoring.MethodInsufficient)
				So(scoring.Aggregate(nil), ShouldEqual, 0)
			})
		})

		Convey("When the input is unsorted", func() {
			in := []float64{9.0, 7.2, 6.0, 7.0}

			Convey("Then it is sorted internally and left untouched", func() {
				So(scoring.Aggregate(in), ShouldAlmostEqual, 7.1, eps)
				So(in, ShouldResemble, []float64{9.0, 7.2, 6.0, 7.0})
			})
		})

		Convey("When more than four judges score", func() {
			// sorted: 2.0 8.0 8.2 9.9 10.0; only 8.0 and 8.2 are inspected
			Convey("Then only the 2nd and 3rd smallest are inspected", func() {
				So(scoring.Aggregate([]float64{10.0, 2.0, 8.2, 9.9, 8.0}), ShouldAlmostEqual, 8.1, eps)
			})
		})
	})
}

func TestToleranceBoundaries(t *testing.T) {
	Convey("Given central pairs on each tolerance boundary", t, func() {
		cases := []struct {
			name   string
			values []float64
			want   float64
			method scoring.Method
		}{
			{"avg 8.0 diff 0.3 is within", []float64{0, 7.85, 8.15, 10}, 8.0, scoring.MethodMiddle},
			{"avg 8.15 diff 0.3 is within", []float64{0, 8.0, 8.3, 10}, 8.15, scoring.MethodMiddle},
			{"avg 8.2 diff 0.4 is outside", []float64{0, 8.0, 8.4, 10}, 6.6, scoring.MethodFullAverage},
			{"avg 7.2 diff 0.4 is within", []float64{0, 7.0, 7.4, 10}, 7.2, scoring.MethodMiddle},
			{"avg 7.25 diff 0.5 is outside", []float64{0, 7.0, 7.5, 10}, 6.125, scoring.MethodFullAverage},
			{"avg 6.25 diff 0.5 is within", []float64{0, 6.0, 6.5, 10}, 6.25, scoring.MethodMiddle},
			{"avg 6.3 diff 0.6 is outside", []float64{0, 6.0, 6.6, 10}, 5.65, scoring.MethodFullAverage},
			{"avg 5.3 diff 0.6 is within", []float64{0, 5.0, 5.6, 10}, 5.3, scoring.MethodMiddle},
			{"avg 5.35 diff 0.7 is outside", []float64{0, 5.0, 5.7, 10}, 5.175, scoring.MethodFullAverage},
		}

		for _, c := range cases {
			Convey(c.name, func() {
				v, m := scoring.AggregatePanel(c.values)
				So(v, ShouldAlmostEqual, c.want, eps)
				So(m, ShouldEqual, c.method)
			})
		}
	})
}

func TestComputeTotal(t *testing.T) {
	Convey("Given aggregated sub-scores", t, func() {
		Convey("Then the total adds sub-scores and subtracts penalties", func() {
			So(scoring.ComputeTotal(7.1, 8.0, 5.0, 0.3), ShouldAlmostEqual, 19.8, eps)
			So(scoring.ComputeTotal(0, 0, 0, 0), ShouldEqual, 0)
			So(scoring.ComputeTotal(0, 0, 0, 1.0), ShouldAlmostEqual, -1.0, eps)
		})
	})
}

func TestBucketsScore(t *testing.T) {
	Convey("Given a competitor's buckets", t, func() {
		b := scoring.Buckets{
			Execution:  []float64{6.0, 7.0, 7.2, 9.0},
			Artistry:   []float64{1.0, 5.0, 9.0, 10.0},
			Difficulty: []float64{5.0, 4.0},
			Penalties:  []float64{0.1, 0.2, 0.5},
		}

		Convey("When scored", func() {
			got := b.Score()

			Convey("Then difficulty is the first value and penalties are summed", func() {
				So(got.Execution, ShouldAlmostEqual, 7.1, eps)
				So(got.Artistry, ShouldAlmostEqual, 6.25, eps)
				So(got.Difficulty, ShouldEqual, 5.0)
				So(got.Penalties, ShouldAlmostEqual, 0.8, eps)
				So(got.Total, ShouldAlmostEqual, 7.1+6.25+5.0-0.8, eps)
				So(got.ExecutionMethod, ShouldEqual, scoring.MethodMiddle)
				So(got.ArtistryMethod, ShouldEqual, scoring.MethodFullAverage)
			})
		})

		Convey("When every bucket is empty", func() {
			got := scoring.Buckets{}.Score()

			Convey("Then everything is zero", func() {
				So(got.Total, ShouldEqual, 0)
				So(got.Difficulty, ShouldEqual, 0)
				So(got.ExecutionMethod, ShouldEqual, scoring.MethodInsufficient)
			})
		})
	})
}
