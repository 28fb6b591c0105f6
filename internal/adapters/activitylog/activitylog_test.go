package activitylog_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/aeroscore/internal/adapters/activitylog"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBuffer(t *testing.T) {
	ctx := context.Background()

	Convey("Given a buffer with the default capacity", t, func() {
		b := activitylog.New()

		Convey("Then it retains 100 entries", func() {
			So(b.Capacity(), ShouldEqual, 100)
			So(b.Len(), ShouldEqual, 0)
			So(b.Entries(ctx), ShouldBeEmpty)
		})
	})

	Convey("Given a buffer of three with a fixed clock", t, func() {
		at := time.Date(2025, 5, 17, 10, 0, 0, 0, time.UTC)
		b := activitylog.New(activitylog.WithCapacity(3), activitylog.WithClock(func() time.Time { return at }))

		Convey("When two messages are appended", func() {
			first := b.Append(ctx, "judge 1 logged in")
			b.Append(ctx, "vote started")

			Convey("Then entries come back oldest first with ids and timestamps", func() {
				got := b.Entries(ctx)
				So(got, ShouldHaveLength, 2)
				So(got[0].Message, ShouldEqual, "judge 1 logged in")
				So(got[0].ID, ShouldEqual, first.ID)
				So(got[0].ID, ShouldNotBeEmpty)
				So(got[1].ID, ShouldNotEqual, got[0].ID)
				So(got[0].Timestamp, ShouldEqual, at)
			})
		})

		Convey("When more messages than capacity are appended", func() {
			for i := 1; i <= 5; i++ {
				b.Append(ctx, fmt.Sprintf("m%d", i))
			}

			Convey("Then only the newest three survive in order", func() {
				got := b.Entries(ctx)
				So(got, ShouldHaveLength, 3)
				So(got[0].Message, ShouldEqual, "m3")
				So(got[1].Message, ShouldEqual, "m4")
				So(got[2].Message, ShouldEqual, "m5")
				So(b.Len(), ShouldEqual, 3)
			})
		})

		Convey("When an invalid capacity is given", func() {
			b := activitylog.New(activitylog.WithCapacity(0))

			Convey("Then the default is kept", func() {
				So(b.Capacity(), ShouldEqual, 100)
			})
		})
	})

	Convey("Given concurrent writers", t, func() {
		b := activitylog.New(activitylog.WithCapacity(50))
		var wg sync.WaitGroup
		for w := 0; w < 8; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 20; i++ {
					b.Append(ctx, "x")
				}
			}()
		}
		wg.Wait()

		Convey("Then the buffer is full and consistent", func() {
			So(b.Len(), ShouldEqual, 50)
			So(b.Entries(ctx), ShouldHaveLength, 50)
		})
	})
}
