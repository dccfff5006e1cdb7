package qerasure

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/theapemachine/errnie"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrUnknownDevice is returned for device kinds NewDevice cannot build.
var ErrUnknownDevice = errors.New("unknown device kind")

/*
Device executes a circuit a fixed number of times and reports how often each
outcome string occurred. Implementations block until the result is available.
*/
type Device interface {
	ID() string
	Run(ctx context.Context, c *Circuit, shots int) (*Result, error)
}

// Result is what a device returns for one circuit submission.
type Result struct {
	DeviceID string
	Counts   Counts
	Shots    int
	Duration time.Duration
}

// NewDevice builds the device a DeviceConfig describes.
func NewDevice(cfg DeviceConfig) (Device, error) {
	switch cfg.Kind {
	case KindStateVector:
		return NewStateVectorSimulator(cfg.ID, cfg.Seed), nil
	case KindNoisy:
		if err := cfg.Noise.Validate(); err != nil {
			return nil, err
		}

		return NewNoisySimulator(cfg.ID, cfg.Seed, cfg.Noise), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDevice, cfg.Kind)
	}
}

func newSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

/*
StateVectorSimulator evolves the exact amplitudes once per submission and
draws every shot from the resulting outcome distribution. Shots from one
seeded simulator are reproducible across runs.
*/
type StateVectorSimulator struct {
	id  string
	src rand.Source
}

/*
NewStateVectorSimulator creates an ideal simulator.

Parameters:
  - id: Device identifier reported in results, "local:statevector" when empty
  - seed: Seed of the shot sampler

Returns:
  - *StateVectorSimulator: A simulator whose shots repeat for equal seeds
*/
func NewStateVectorSimulator(id string, seed uint64) *StateVectorSimulator {
	if id == "" {
		id = "local:statevector"
	}

	errnie.Info("NewStateVectorSimulator - id %s, seed %d", id, seed)

	return &StateVectorSimulator{
		id:  id,
		src: newSource(seed),
	}
}

func (s *StateVectorSimulator) ID() string {
	return s.id
}

func (s *StateVectorSimulator) Run(ctx context.Context, c *Circuit, shots int) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	if shots <= 0 {
		return nil, fmt.Errorf("%s: shots must be positive, got %d", s.id, shots)
	}

	start := time.Now()

	sv := NewStateVector(c.Qubits)
	for _, op := range c.Ops {
		if err := sv.Apply(op); err != nil {
			return nil, err
		}
	}

	dist := distuv.NewCategorical(sv.Marginal(c.Measured), s.src)

	tally := make([]int, 1<<c.Width())
	for i := 0; i < shots; i++ {
		tally[int(dist.Rand())]++
	}

	counts := make(Counts)
	for idx, n := range tally {
		if n > 0 {
			counts[outcomeString(idx, c.Width())] = n
		}
	}

	return &Result{
		DeviceID: s.id,
		Counts:   counts,
		Shots:    shots,
		Duration: time.Since(start),
	}, nil
}
