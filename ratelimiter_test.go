package qerasure

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNewRateLimiter(t *testing.T) {
	Convey("Given a new rate limiter", t, func() {
		limiter := NewRateLimiter(100, time.Second)

		Convey("It should be properly initialized", func() {
			So(limiter, ShouldNotBeNil)
			So(limiter.tokens, ShouldEqual, 100)
			So(limiter.maxTokens, ShouldEqual, 100)
			So(limiter.refillRate, ShouldEqual, time.Second)
		})
	})
}

func TestRateLimiterBurst(t *testing.T) {
	Convey("Given a rate limiter with burst capacity", t, func() {
		limiter := NewRateLimiter(3, 100*time.Millisecond)

		Convey("It should handle burst and refill", func() {
			So(limiter.Limit(), ShouldBeFalse)
			So(limiter.Limit(), ShouldBeFalse)
			So(limiter.Limit(), ShouldBeFalse)
			So(limiter.Limit(), ShouldBeTrue)

			time.Sleep(150 * time.Millisecond)

			So(limiter.Limit(), ShouldBeFalse)
		})
	})
}

func TestRateLimiterWait(t *testing.T) {
	Convey("Given an exhausted single-token limiter", t, func() {
		limiter := NewRateLimiter(1, 50*time.Millisecond)
		So(limiter.Wait(context.Background()), ShouldBeNil)

		Convey("Wait should block until the next token", func() {
			start := time.Now()
			So(limiter.Wait(context.Background()), ShouldBeNil)
			So(time.Since(start), ShouldBeGreaterThanOrEqualTo, 30*time.Millisecond)
		})

		Convey("Wait should give up when the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
			defer cancel()

			limiter.refillRate = time.Hour
			So(errors.Is(limiter.Wait(ctx), context.DeadlineExceeded), ShouldBeTrue)
		})
	})

	Convey("Given no limiter", t, func() {
		var limiter *RateLimiter
		So(limiter.Wait(context.Background()), ShouldBeNil)
	})
}
