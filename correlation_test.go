package qerasure

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCorrelate(t *testing.T) {
	Convey("Given perfectly correlated counts", t, func() {
		counts := Counts{"00": 1000, "11": 1000}

		est, err := Correlate(counts, 0, 1, 2000)
		So(err, ShouldBeNil)

		Convey("C should be exactly +1 with error 1/√N", func() {
			So(est.Value, ShouldEqual, 1.0)
			So(est.Err, ShouldEqual, 1/math.Sqrt(2000))
			So(est.Err, ShouldAlmostEqual, 0.0224, 0.0001)
		})
	})

	Convey("Given counts split evenly between same and different", t, func() {
		est, err := Correlate(Counts{"01": 500, "10": 500, "00": 500, "11": 500}, 0, 1, 2000)
		So(err, ShouldBeNil)
		So(est.Value, ShouldEqual, 0.0)
	})

	Convey("Given perfectly anti-correlated counts", t, func() {
		est, err := Correlate(Counts{"01": 7, "10": 3}, 0, 1, 10)
		So(err, ShouldBeNil)
		So(est.Value, ShouldEqual, -1.0)
	})

	Convey("Given three-bit outcomes", t, func() {
		counts := Counts{"000": 4, "001": 4, "110": 2, "100": 2, "011": 3}

		Convey("Only the designated positions should count", func() {
			est, err := Correlate(counts, 0, 1, 15)
			So(err, ShouldBeNil)
			So(est.Value, ShouldAlmostEqual, float64(10-5)/15, 1e-12)

			est, err = Correlate(counts, 0, 2, 15)
			So(err, ShouldBeNil)
			So(est.Value, ShouldAlmostEqual, float64(4-11)/15, 1e-12)
		})

		Convey("Positions outside the outcome should fail", func() {
			_, err := Correlate(counts, 0, 3, 15)
			So(errors.Is(err, ErrPosition), ShouldBeTrue)

			_, err = Correlate(counts, -1, 0, 15)
			So(errors.Is(err, ErrPosition), ShouldBeTrue)
		})
	})

	Convey("Given counts that disagree with the declared shots", t, func() {
		_, err := Correlate(Counts{"00": 10}, 0, 1, 11)
		So(errors.Is(err, ErrShotMismatch), ShouldBeTrue)
	})

	Convey("Given empty counts", t, func() {
		_, err := Correlate(Counts{}, 0, 1, 0)
		So(errors.Is(err, ErrNoShots), ShouldBeTrue)
	})

	Convey("Given a histogram with a negative count", t, func() {
		est, err := Correlate(Counts{"00": 3, "01": -1}, 0, 1, 2)
		So(errors.Is(err, ErrNegativeCount), ShouldBeTrue)
		So(est, ShouldResemble, Estimate{})
	})

	Convey("Given random histograms", t, func() {
		rng := rand.New(rand.NewPCG(3, 4))
		outcomes := []string{"000", "001", "010", "011", "100", "101", "110", "111"}

		Convey("C should always lie in [-1, 1]", func() {
			for trial := 0; trial < 200; trial++ {
				counts := make(Counts)
				for _, o := range outcomes {
					if n := rng.IntN(50); n > 0 {
						counts[o] = n
					}
				}

				if counts.Total() == 0 {
					continue
				}

				est, err := Correlate(counts, rng.IntN(3), rng.IntN(3), counts.Total())
				So(err, ShouldBeNil)
				So(est.Value, ShouldBeBetweenOrEqual, -1.0, 1.0)
				So(est.Err, ShouldBeGreaterThan, 0.0)
			}
		})
	})
}

func TestMarkerZeroProbability(t *testing.T) {
	Convey("Given a marker in the last position", t, func() {
		counts := Counts{"000": 6, "001": 2, "110": 2}

		p0, err := MarkerZeroProbability(counts, 2)
		So(err, ShouldBeNil)
		So(p0, ShouldAlmostEqual, 0.8, 1e-12)
	})

	Convey("Given empty counts", t, func() {
		p0, err := MarkerZeroProbability(Counts{}, 2)
		So(err, ShouldBeNil)
		So(p0, ShouldEqual, 0)
	})

	Convey("Given random histograms", t, func() {
		rng := rand.New(rand.NewPCG(5, 6))

		for trial := 0; trial < 100; trial++ {
			counts := Counts{"000": rng.IntN(20), "011": rng.IntN(20), "101": rng.IntN(20)}

			p0, err := MarkerZeroProbability(counts, 2)
			So(err, ShouldBeNil)
			So(p0, ShouldBeBetweenOrEqual, 0.0, 1.0)
		}
	})

	Convey("Given a marker outside the outcome", t, func() {
		_, err := MarkerZeroProbability(Counts{"01": 1}, 2)
		So(errors.Is(err, ErrPosition), ShouldBeTrue)
	})

	Convey("Given non-binary outcomes", t, func() {
		_, err := MarkerZeroProbability(Counts{"012": 4, "000": 1}, 2)
		So(errors.Is(err, ErrPosition), ShouldBeTrue)
	})

	Convey("Given a negative marker tally", t, func() {
		_, err := MarkerZeroProbability(Counts{"000": 2, "001": -1}, 2)
		So(errors.Is(err, ErrNegativeCount), ShouldBeTrue)
	})
}
