package qerasure

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMetrics(t *testing.T) {
	Convey("Given a fresh metrics collector", t, func() {
		m := NewMetrics()

		Convey("Recording submissions should update counts and latency", func() {
			start := time.Now().Add(-10 * time.Millisecond)

			m.recordSubmission(ConditionStandard, start, 100, true)
			m.recordSubmission(ConditionNoReversal, start, 100, false)
			m.recordRetry()

			exported := m.ExportMetrics()
			So(exported["submissions"], ShouldEqual, int64(2))
			So(exported["failures"], ShouldEqual, int64(1))
			So(exported["retries"], ShouldEqual, int64(1))
			So(exported["shots"], ShouldEqual, int64(100))
			So(exported["success_rate"], ShouldEqual, 0.5)
			So(m.AverageLatency, ShouldBeGreaterThanOrEqualTo, 10*time.Millisecond)
			So(m.P99Latency, ShouldBeGreaterThanOrEqualTo, m.P95Latency)

			Convey("And the prometheus textfile should carry them", func() {
				path := filepath.Join(t.TempDir(), "qerasure.prom")
				So(m.WriteTextfile(path), ShouldBeNil)

				buf, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(string(buf), ShouldContainSubstring, `qerasure_submissions_total{condition="standard"} 1`)
				So(string(buf), ShouldContainSubstring, `qerasure_submission_failures_total{condition="no_reversal"} 1`)
				So(string(buf), ShouldContainSubstring, "qerasure_shots_total 100")
			})
		})

		Convey("The latency window should stay bounded", func() {
			for i := 0; i < 1200; i++ {
				m.recordSubmission(ConditionStandard, time.Now(), 1, true)
			}

			So(len(m.latencyWindows), ShouldEqual, 1000)
			So(m.Submissions, ShouldEqual, int64(1200))
		})
	})

	Convey("Given sorted latency samples", t, func() {
		samples := make([]time.Duration, 100)
		for i := range samples {
			samples[i] = time.Duration(i+1) * time.Millisecond
		}

		So(nearestRank(samples, 0.95), ShouldEqual, 96*time.Millisecond)
		So(nearestRank(samples, 0.99), ShouldEqual, 100*time.Millisecond)
		So(nearestRank(samples[:1], 0.99), ShouldEqual, time.Millisecond)
		So(nearestRank(nil, 0.95), ShouldEqual, time.Duration(0))
	})

	Convey("Given a nil collector", t, func() {
		var m *Metrics

		So(func() { m.recordSubmission(ConditionStandard, time.Now(), 1, true) }, ShouldNotPanic)
		So(func() { m.recordRetry() }, ShouldNotPanic)
	})
}
