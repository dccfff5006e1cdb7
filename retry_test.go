package qerasure

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestExponentialBackoff(t *testing.T) {
	Convey("Given an exponential backoff", t, func() {
		eb := &ExponentialBackoff{Initial: 100 * time.Millisecond}

		So(eb.NextDelay(1), ShouldEqual, 100*time.Millisecond)
		So(eb.NextDelay(2), ShouldEqual, 200*time.Millisecond)
		So(eb.NextDelay(4), ShouldEqual, 800*time.Millisecond)
	})
}

func TestJob(t *testing.T) {
	Convey("Given a job for the forward+reverse circuit", t, func() {
		job, err := NewJob(ConditionWithReversal, DefaultRoles(), 90, 100)

		So(err, ShouldBeNil)
		So(job.ID, ShouldEqual, "with_reversal@90")
		So(job.Circuit.Name, ShouldEqual, "with_reversal")
		So(job.RetryPolicy.MaxAttempts, ShouldEqual, 1)

		Convey("Options should replace the retry policy", func() {
			job, err := NewJob(ConditionStandard, DefaultRoles(), 0, 100,
				WithRetry(4, &ExponentialBackoff{Initial: time.Millisecond}),
				WithRetryFilter(func(error) bool { return false }),
			)

			So(err, ShouldBeNil)
			So(job.RetryPolicy.MaxAttempts, ShouldEqual, 4)
			So(job.RetryPolicy.Filter, ShouldNotBeNil)
		})
	})

	Convey("Given roles that collide", t, func() {
		_, err := NewJob(ConditionStandard, Roles{First: 1, Second: 1, Marker: 2}, 0, 100)
		So(errors.Is(err, ErrInvalidCircuit), ShouldBeTrue)
	})
}

func TestSubmit(t *testing.T) {
	Convey("Given a device that always fails", t, func() {
		boom := errors.New("queue closed")
		device := &scriptedDevice{failOn: map[int]error{1: boom, 2: boom, 3: boom}}

		Convey("The retry filter should stop early", func() {
			job, _ := NewJob(ConditionStandard, DefaultRoles(), 0, 10,
				WithRetry(3, &ExponentialBackoff{Initial: time.Millisecond}),
				WithRetryFilter(func(err error) bool { return !errors.Is(err, boom) }),
			)

			_, err := submit(context.Background(), device, job, nil, nil, quietLogger())
			So(errors.Is(err, boom), ShouldBeTrue)
			So(device.calls, ShouldEqual, 1)
			So(job.LastError, ShouldEqual, boom)
		})

		Convey("Cancellation should stop the backoff", func() {
			ctx, cancel := context.WithCancel(context.Background())
			job, _ := NewJob(ConditionStandard, DefaultRoles(), 0, 10,
				WithRetry(3, &ExponentialBackoff{Initial: time.Hour}),
			)

			go func() {
				time.Sleep(10 * time.Millisecond)
				cancel()
			}()

			_, err := submit(ctx, device, job, nil, nil, quietLogger())
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(device.calls, ShouldEqual, 1)
		})
	})
}
