package qerasure

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGapTest(t *testing.T) {
	Convey("Given a restoration that failed on hardware", t, func() {
		a := Estimate{Value: 0.84, Err: 0.02}
		b := Estimate{Value: 0.02, Err: 0.02}

		s := GapTest(a, b)

		Convey("The gap and its significance should match the normal approximation", func() {
			So(s.Defined, ShouldBeTrue)
			So(s.Gap, ShouldAlmostEqual, 0.82, 1e-12)
			So(s.CombinedErr, ShouldAlmostEqual, 0.0283, 0.0001)
			So(s.Sigma, ShouldAlmostEqual, 29.0, 0.05)
			So(s.PValue, ShouldBeLessThan, 1e-10)
			So(Classify(s), ShouldEqual, Distinguishable)
		})

		Convey("Swapping the inputs should change nothing", func() {
			r := GapTest(b, a)
			So(r.Sigma, ShouldEqual, s.Sigma)
			So(r.PValue, ShouldEqual, s.PValue)
		})
	})

	Convey("Given gaps of growing significance", t, func() {
		prev := 2.0

		for _, gap := range []float64{0, 0.01, 0.02, 0.05, 0.1, 0.15} {
			s := GapTest(Estimate{Value: gap, Err: 0.02}, Estimate{Value: 0, Err: 0.02})

			So(s.PValue, ShouldBeLessThan, prev)
			prev = s.PValue
		}
	})

	Convey("Given the classification boundary", t, func() {
		So(Classify(Significance{Sigma: 1.999, Defined: true}), ShouldEqual, Indistinguishable)
		So(Classify(Significance{Sigma: 2.0, Defined: true}), ShouldEqual, Distinguishable)
		So(Classify(Significance{Sigma: 0, Defined: true}), ShouldEqual, Indistinguishable)
	})

	Convey("Given two estimates without error", t, func() {
		s := GapTest(Estimate{Value: 1}, Estimate{Value: 0.5})

		So(s.Defined, ShouldBeFalse)
		So(s.Gap, ShouldEqual, 0.5)
		So(s.Sigma, ShouldEqual, 0)
		So(Classify(s), ShouldEqual, Undefined)
	})

	Convey("Given a verdict in a report", t, func() {
		buf, err := json.Marshal(map[string]Verdict{"v": Indistinguishable})
		So(err, ShouldBeNil)
		So(string(buf), ShouldEqual, `{"v":"statistically indistinguishable"}`)
	})
}
