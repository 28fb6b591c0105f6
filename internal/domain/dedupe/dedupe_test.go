package dedupe_test

import (
	"testing"

	dedupe "github.com/okian/aeroscore/internal/domain/dedupe"
	"github.com/okian/aeroscore/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSet(t *testing.T) {
	Convey("Given a new observation key set", t, func() {
		s := dedupe.New[dedupe.Key]()

		Convey("Then it starts empty", func() {
			So(s.Size(), ShouldEqual, 0)
			So(s.Duplicates(), ShouldEqual, 0)
		})

		Convey("When a key is recorded", func() {
			seen := s.SeenAndRecord(dedupe.Key{JudgeID: 1, ScoreType: types.Execution})

			Convey("Then it was not seen before", func() {
				So(seen, ShouldBeFalse)
				So(s.Size(), ShouldEqual, 1)
			})

			Convey("And recording it again reports a duplicate", func() {
				So(s.SeenAndRecord(dedupe.Key{JudgeID: 1, ScoreType: types.Execution}), ShouldBeTrue)
				So(s.Size(), ShouldEqual, 1)
				So(s.Duplicates(), ShouldEqual, 1)
			})

			Convey("And the same judge with another score type is distinct", func() {
				So(s.SeenAndRecord(dedupe.Key{JudgeID: 1, ScoreType: types.Artistry}), ShouldBeFalse)
				So(s.SeenAndRecord(dedupe.Key{JudgeID: 2, ScoreType: types.Execution}), ShouldBeFalse)
				So(s.Size(), ShouldEqual, 3)
			})
		})
	})

	Convey("Given a string set", t, func() {
		s := dedupe.New[string]()

		Convey("Then member names dedupe by value", func() {
			So(s.SeenAndRecord("Doe Jane"), ShouldBeFalse)
			So(s.SeenAndRecord("Doe Jane"), ShouldBeTrue)
			So(s.SeenAndRecord("Doe John"), ShouldBeFalse)
			So(s.Size(), ShouldEqual, 2)
		})
	})
}
