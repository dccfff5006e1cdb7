package qerasure

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCounts(t *testing.T) {
	Convey("Given a three-bit histogram", t, func() {
		counts := Counts{"110": 3, "000": 5, "011": 2}

		So(counts.Total(), ShouldEqual, 10)
		So(counts.Outcomes(), ShouldResemble, []string{"000", "011", "110"})

		Convey("It should validate against its own width and total", func() {
			So(counts.Validate(3, 10), ShouldBeNil)
			So(counts.Validate(0, 10), ShouldBeNil)
		})

		Convey("A wrong total should be a shot mismatch", func() {
			So(errors.Is(counts.Validate(3, 11), ErrShotMismatch), ShouldBeTrue)
		})

		Convey("A wrong width should be a position error", func() {
			So(errors.Is(counts.Validate(2, 10), ErrPosition), ShouldBeTrue)
		})

		Convey("Clone should not alias", func() {
			c := counts.Clone()
			c["000"] = 99
			So(counts["000"], ShouldEqual, 5)
		})
	})

	Convey("Given malformed outcomes", t, func() {
		So(errors.Is(Counts{"0x1": 1}.Validate(3, 1), ErrPosition), ShouldBeTrue)
		So(errors.Is(Counts{"01": -1, "10": 2}.Validate(2, 1), ErrNegativeCount), ShouldBeTrue)
	})
}
