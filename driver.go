package qerasure

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// ErrAborted is returned when the cost confirmation is refused.
var ErrAborted = errors.New("run aborted before submission")

/*
ConfirmFunc is asked before a paid run starts. It receives the estimated
total cost and returns whether to proceed.
*/
type ConfirmFunc func(estimate float64, cfg *Config) (bool, error)

// AngleResult is reported to the observer after each completed angle.
type AngleResult struct {
	Angle       float64
	Results     map[Condition]CircuitResult
	Restoration Significance
	Verdict     Verdict
}

/*
Driver walks the configured angles in order, submitting the reference,
forward and forward+reverse circuits one after the other and folding their
counts into a Record. Any failure ends the run without a record.
*/
type Driver struct {
	cfg      *Config
	device   Device
	confirm  ConfirmFunc
	observer func(AngleResult)
	metrics  *Metrics
	limiter  *RateLimiter
	clock    func() time.Time
	logger   *log.Logger
}

// DriverOption is a function type for configuring the driver
type DriverOption func(*Driver)

// WithConfirm sets the callback asked before a paid run. Without one, paid runs abort.
func WithConfirm(fn ConfirmFunc) DriverOption {
	return func(d *Driver) {
		d.confirm = fn
	}
}

// WithObserver is called once per completed angle, in angle order.
func WithObserver(fn func(AngleResult)) DriverOption {
	return func(d *Driver) {
		d.observer = fn
	}
}

// WithMetrics records submissions into m instead of a private collector.
func WithMetrics(m *Metrics) DriverOption {
	return func(d *Driver) {
		d.metrics = m
	}
}

// WithRateLimiter replaces the limiter built from the device's rate_limit settings.
func WithRateLimiter(limiter *RateLimiter) DriverOption {
	return func(d *Driver) {
		d.limiter = limiter
	}
}

// WithClock overrides the source of the record timestamp.
func WithClock(clock func() time.Time) DriverOption {
	return func(d *Driver) {
		d.clock = clock
	}
}

// WithLogger replaces the stderr logger.
func WithLogger(logger *log.Logger) DriverOption {
	return func(d *Driver) {
		d.logger = logger
	}
}

/*
NewDriver prepares a run of cfg against device.

Parameters:
  - cfg: Experiment configuration, validated when Run starts
  - device: Where every circuit is submitted
  - opts: Optional confirmation, observer, metrics, limiter, clock and logger

Returns:
  - *Driver: A driver paced by cfg.Device.RateLimit unless WithRateLimiter says otherwise
*/
func NewDriver(cfg *Config, device Device, opts ...DriverOption) *Driver {
	d := &Driver{
		cfg:     cfg,
		device:  device,
		metrics: NewMetrics(),
		clock:   time.Now,
		logger:  log.NewWithOptions(os.Stderr, log.Options{Prefix: "driver"}),
	}

	if rl := cfg.Device.RateLimit; rl.Interval > 0 {
		d.limiter = NewRateLimiter(rl.Burst, rl.Interval)
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Metrics returns the collector the driver records into.
func (d *Driver) Metrics() *Metrics {
	return d.metrics
}

// Run executes the whole experiment and returns the finished record.
func (d *Driver) Run(ctx context.Context) (*Record, error) {
	if err := d.cfg.Validate(); err != nil {
		return nil, err
	}

	if err := d.confirmCost(); err != nil {
		return nil, err
	}

	record := NewRecord(
		d.device.ID(), d.cfg.Angles, d.cfg.Shots, d.cfg.Roles, uuid.NewString(), d.clock(),
	)

	d.logger.Info("run started",
		"run_id", record.Metadata.RunID,
		"device", record.Metadata.Device,
		"angles", len(d.cfg.Angles),
		"shots", d.cfg.Shots,
	)

	for _, angle := range d.cfg.Angles {
		results := make(map[Condition]CircuitResult, len(Conditions))

		for _, cond := range Conditions {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			res, err := d.runCondition(ctx, cond, angle)
			if err != nil {
				return nil, err
			}

			results[cond] = res
		}

		if err := record.Append(angle, results); err != nil {
			return nil, err
		}

		sig := GapTest(results[ConditionStandard].Estimate, results[ConditionWithReversal].Estimate)

		d.logger.Info("angle complete",
			"theta", angle,
			"standard", results[ConditionStandard].Value,
			"no_reversal", results[ConditionNoReversal].Value,
			"with_reversal", results[ConditionWithReversal].Value,
			"sigma", sig.Sigma,
		)

		if d.observer != nil {
			d.observer(AngleResult{
				Angle:       angle,
				Results:     results,
				Restoration: sig,
				Verdict:     Classify(sig),
			})
		}
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

func (d *Driver) confirmCost() error {
	if d.cfg.Device.CostPerShot <= 0 {
		return nil
	}

	estimate := d.cfg.EstimatedCost(d.cfg.Device)

	if d.confirm == nil {
		return fmt.Errorf("%w: estimated cost %.2f needs confirmation", ErrAborted, estimate)
	}

	ok, err := d.confirm(estimate, d.cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAborted, err)
	}

	if !ok {
		return ErrAborted
	}

	return nil
}

func (d *Driver) runCondition(ctx context.Context, cond Condition, angle float64) (CircuitResult, error) {
	job, err := NewJob(
		cond, d.cfg.Roles, angle, d.cfg.Shots,
		WithRetry(d.cfg.Retry.MaxAttempts, &ExponentialBackoff{Initial: d.cfg.Retry.Initial}),
	)
	if err != nil {
		return CircuitResult{}, err
	}

	d.logger.Debug("submitting", "job", job.ID, "qubits", job.Circuit.Qubits, "ops", len(job.Circuit.Ops))

	result, err := submit(ctx, d.device, job, d.limiter, d.metrics, d.logger)
	if err != nil {
		return CircuitResult{}, err
	}

	c := job.Circuit
	if err := result.Counts.Validate(c.Width(), d.cfg.Shots); err != nil {
		return CircuitResult{}, fmt.Errorf("job %s: %w", job.ID, err)
	}

	estimate, err := Correlate(
		result.Counts, c.Position(d.cfg.Roles.First), c.Position(d.cfg.Roles.Second), d.cfg.Shots,
	)
	if err != nil {
		return CircuitResult{}, fmt.Errorf("job %s: %w", job.ID, err)
	}

	out := CircuitResult{
		Counts:   result.Counts.Clone(),
		Estimate: estimate,
	}

	if cond == ConditionWithReversal {
		p0, err := MarkerZeroProbability(result.Counts, c.Position(d.cfg.Roles.Marker))
		if err != nil {
			return CircuitResult{}, fmt.Errorf("job %s: %w", job.ID, err)
		}

		out.MarkerP0 = &p0
	}

	return out, nil
}
