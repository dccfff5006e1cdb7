package qerasure

import (
	"fmt"
	"time"
)

// Job is one circuit submission: a condition at a coupling angle.
type Job struct {
	ID          string
	Angle       float64
	Condition   Condition
	Circuit     *Circuit
	Shots       int
	RetryPolicy *RetryPolicy
	Attempt     int
	LastError   error
	StartTime   time.Time
}

// JobOption is a function type for configuring jobs
type JobOption func(*Job)

// NewJob builds the circuit for cond at angle (degrees) and wraps it for submission.
func NewJob(cond Condition, roles Roles, angle float64, shots int, opts ...JobOption) (*Job, error) {
	circuit, err := BuildCircuit(cond, roles, Radians(angle))
	if err != nil {
		return nil, err
	}

	job := &Job{
		ID:          fmt.Sprintf("%s@%g", cond, angle),
		Angle:       angle,
		Condition:   cond,
		Circuit:     circuit,
		Shots:       shots,
		RetryPolicy: NoRetry(),
	}

	for _, opt := range opts {
		opt(job)
	}

	return job, nil
}
