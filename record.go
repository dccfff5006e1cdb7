package qerasure

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
)

var (
	// ErrInvalidRecord means a record breaks its length or shot invariants.
	ErrInvalidRecord = errors.New("invalid results record")
	// ErrAngleNotFound means no stored angle matches the requested one.
	ErrAngleNotFound = errors.New("angle not found in record")
)

/*
Record is the persisted outcome of a run. Data holds one parallel series per
condition, RawCounts the histograms they were derived from. A record is built
one angle at a time by the driver and treated as read-only afterwards.
*/
type Record struct {
	Metadata  Metadata   `json:"metadata"`
	Data      Data       `json:"data"`
	RawCounts []RawAngle `json:"raw_counts"`

	index map[int64]int
}

type Metadata struct {
	Device      string    `json:"device"`
	Timestamp   Timestamp `json:"timestamp"`
	ThetaValues []float64 `json:"theta_values"`
	Shots       int       `json:"n_shots"`
	RunID       string    `json:"run_id,omitempty"`
	Roles       *Roles    `json:"roles,omitempty"`
}

// timestampLayouts are tried in order when reading a record's start time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

/*
Timestamp is a run start time. It is written as RFC 3339 and read back from
either RFC 3339 or the offset-free ISO form, which is taken as UTC.
*/
type Timestamp struct {
	time.Time
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.Format(time.RFC3339Nano))
}

func (ts *Timestamp) UnmarshalJSON(buf []byte) error {
	var raw string
	if err := json.Unmarshal(buf, &raw); err != nil {
		return fmt.Errorf("%w: timestamp: %v", ErrInvalidRecord, err)
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			ts.Time = t
			return nil
		}
	}

	return fmt.Errorf("%w: unreadable timestamp %q", ErrInvalidRecord, raw)
}

type Data struct {
	Theta            []float64 `json:"theta"`
	CStandard        []float64 `json:"C_standard"`
	CStandardErr     []float64 `json:"C_standard_err"`
	CNoReversal      []float64 `json:"C_no_reversal"`
	CNoReversalErr   []float64 `json:"C_no_reversal_err"`
	CWithReversal    []float64 `json:"C_with_reversal"`
	CWithReversalErr []float64 `json:"C_with_reversal_err"`
}

// RawAngle keeps the histograms of every condition at one angle.
type RawAngle struct {
	Theta    float64                     `json:"theta"`
	Circuits map[Condition]CircuitResult `json:"circuits"`
}

// CircuitResult is one submission's counts with the estimate taken from them.
type CircuitResult struct {
	Counts Counts `json:"counts"`
	Estimate
	MarkerP0 *float64 `json:"marker_P0,omitempty"`
}

// NewRecord starts an empty record for the given run parameters.
func NewRecord(device string, angles []float64, shots int, roles Roles, runID string, ts time.Time) *Record {
	thetas := make([]float64, len(angles))
	copy(thetas, angles)

	return &Record{
		Metadata: Metadata{
			Device:      device,
			Timestamp:   Timestamp{Time: ts},
			ThetaValues: thetas,
			Shots:       shots,
			RunID:       runID,
			Roles:       &roles,
		},
		index: make(map[int64]int),
	}
}

// angleKey rounds to milli-degrees so lookups survive float noise.
func angleKey(deg float64) int64 {
	return int64(math.Round(deg * 1000))
}

// Append adds one angle worth of results; every condition must be present.
func (r *Record) Append(angle float64, results map[Condition]CircuitResult) error {
	if r.index == nil {
		r.reindex()
	}

	if _, ok := r.index[angleKey(angle)]; ok {
		return fmt.Errorf("%w: angle %g already recorded", ErrInvalidRecord, angle)
	}

	for _, cond := range Conditions {
		if _, ok := results[cond]; !ok {
			return fmt.Errorf("%w: angle %g missing condition %s", ErrInvalidRecord, angle, cond)
		}
	}

	std := results[ConditionStandard]
	nr := results[ConditionNoReversal]
	wr := results[ConditionWithReversal]

	d := &r.Data
	d.Theta = append(d.Theta, angle)
	d.CStandard = append(d.CStandard, std.Value)
	d.CStandardErr = append(d.CStandardErr, std.Err)
	d.CNoReversal = append(d.CNoReversal, nr.Value)
	d.CNoReversalErr = append(d.CNoReversalErr, nr.Err)
	d.CWithReversal = append(d.CWithReversal, wr.Value)
	d.CWithReversalErr = append(d.CWithReversalErr, wr.Err)

	circuits := make(map[Condition]CircuitResult, len(results))
	for cond, res := range results {
		circuits[cond] = res
	}

	r.RawCounts = append(r.RawCounts, RawAngle{Theta: angle, Circuits: circuits})
	r.index[angleKey(angle)] = len(d.Theta) - 1

	return nil
}

func (r *Record) reindex() {
	r.index = make(map[int64]int, len(r.Data.Theta))
	for i, theta := range r.Data.Theta {
		r.index[angleKey(theta)] = i
	}
}

// Lookup returns the position of angle in the data series.
func (r *Record) Lookup(angle float64) (int, error) {
	if r.index == nil {
		r.reindex()
	}

	idx, ok := r.index[angleKey(angle)]
	if !ok {
		return -1, fmt.Errorf("%w: %g°", ErrAngleNotFound, angle)
	}

	return idx, nil
}

// Series returns the values and errors recorded for one condition.
func (r *Record) Series(cond Condition) (values, errs []float64) {
	switch cond {
	case ConditionStandard:
		return r.Data.CStandard, r.Data.CStandardErr
	case ConditionNoReversal:
		return r.Data.CNoReversal, r.Data.CNoReversalErr
	case ConditionWithReversal:
		return r.Data.CWithReversal, r.Data.CWithReversalErr
	default:
		return nil, nil
	}
}

// EstimateAt reads the estimate of cond at position idx of the series.
func (r *Record) EstimateAt(cond Condition, idx int) (Estimate, error) {
	values, errs := r.Series(cond)
	if idx < 0 || idx >= len(values) || idx >= len(errs) {
		return Estimate{}, fmt.Errorf("%w: no %s entry at %d", ErrInvalidRecord, cond, idx)
	}

	return Estimate{Value: values[idx], Err: errs[idx]}, nil
}

// Validate enforces the length and shot-total invariants.
func (r *Record) Validate() error {
	n := len(r.Data.Theta)

	if len(r.Metadata.ThetaValues) != n {
		return fmt.Errorf(
			"%w: theta has %d entries, theta_values %d", ErrInvalidRecord, n, len(r.Metadata.ThetaValues),
		)
	}

	for _, cond := range Conditions {
		values, errs := r.Series(cond)
		if len(values) != n || len(errs) != n {
			return fmt.Errorf(
				"%w: %s has %d values and %d errors for %d angles",
				ErrInvalidRecord, cond, len(values), len(errs), n,
			)
		}
	}

	if len(r.RawCounts) != n {
		return fmt.Errorf("%w: %d raw_counts entries for %d angles", ErrInvalidRecord, len(r.RawCounts), n)
	}

	for i, raw := range r.RawCounts {
		if angleKey(raw.Theta) != angleKey(r.Data.Theta[i]) {
			return fmt.Errorf(
				"%w: raw_counts[%d] is for %g°, theta[%d] is %g°",
				ErrInvalidRecord, i, raw.Theta, i, r.Data.Theta[i],
			)
		}

		for _, cond := range Conditions {
			if _, ok := raw.Circuits[cond]; !ok {
				return fmt.Errorf("%w: raw_counts at %g° missing %s", ErrInvalidRecord, raw.Theta, cond)
			}
		}

		for cond, res := range raw.Circuits {
			if total := res.Counts.Total(); total != r.Metadata.Shots {
				return fmt.Errorf(
					"%w: %s at %g totals %d shots, want %d",
					ErrInvalidRecord, cond, raw.Theta, total, r.Metadata.Shots,
				)
			}
		}
	}

	r.reindex()

	if len(r.index) != n {
		return fmt.Errorf("%w: duplicate angles in theta", ErrInvalidRecord)
	}

	return nil
}

// RecordRoles returns the stored roles, or the defaults for older files.
func (r *Record) RecordRoles() Roles {
	if r.Metadata.Roles == nil {
		return DefaultRoles()
	}

	return *r.Metadata.Roles
}

// Save writes the record as indented JSON, replacing any existing file.
func (r *Record) Save(path string) error {
	buf, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return os.WriteFile(path, buf, 0o644)
}

// LoadRecord reads and validates a persisted record.
func LoadRecord(path string) (*Record, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	r := &Record{}
	if err := json.Unmarshal(buf, r); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return r, nil
}

// ResultsFilename names a run's output after its start time.
func ResultsFilename(prefix string, t time.Time) string {
	return fmt.Sprintf("%s_%s.json", prefix, t.Format("20060102_150405"))
}
