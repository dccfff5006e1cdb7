package qerasure

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

/*
Restoration compares the reference correlation with the one left after the
marker has been coupled and uncoupled. Confirmed is set when the gap exceeds
RestorationThreshold, meaning the erasure demonstrably failed to restore the
reference correlation. TStatistic equals Sigma under the normal approximation.
*/
type Restoration struct {
	Angle         float64      `json:"angle" yaml:"angle"`
	CStandard     float64      `json:"C_standard" yaml:"c_standard"`
	CWithReversal float64      `json:"C_with_reversal" yaml:"c_with_reversal"`
	TStatistic    float64      `json:"t_statistic" yaml:"t_statistic"`
	Test          Significance `json:"test" yaml:"test"`
	Confirmed     bool         `json:"confirmed" yaml:"confirmed"`
}

// ErasureEffect compares the forward-only and forward+reverse conditions.
type ErasureEffect struct {
	CNoReversal       float64      `json:"C_no_reversal" yaml:"c_no_reversal"`
	CWithReversal     float64      `json:"C_with_reversal" yaml:"c_with_reversal"`
	Test              Significance `json:"test" yaml:"test"`
	Verdict           Verdict      `json:"verdict" yaml:"verdict"`
	StatisticallySame bool         `json:"statistically_same" yaml:"statistically_same"`
}

// HardwareQuality summarizes the reference circuit over every angle.
type HardwareQuality struct {
	MeanCorrelation float64 `json:"mean_correlation" yaml:"mean_correlation"`
	FidelityPercent float64 `json:"fidelity_percent" yaml:"fidelity_percent"`
}

// Analysis is the derived summary of a record at one coupling angle.
type Analysis struct {
	Device      string          `json:"device" yaml:"device"`
	RunID       string          `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Shots       int             `json:"n_shots" yaml:"n_shots"`
	Restoration Restoration     `json:"restoration" yaml:"restoration"`
	Erasure     ErasureEffect   `json:"erasure" yaml:"erasure"`
	Quality     HardwareQuality `json:"hardware_quality" yaml:"hardware_quality"`
	MarkerP0    *float64        `json:"marker_P0,omitempty" yaml:"marker_p0,omitempty"`
}

// Analyze runs both significance tests at angle. The record is not modified.
func Analyze(record *Record, angle float64) (*Analysis, error) {
	idx, err := record.Lookup(angle)
	if err != nil {
		return nil, err
	}

	std, err := record.EstimateAt(ConditionStandard, idx)
	if err != nil {
		return nil, err
	}

	nr, err := record.EstimateAt(ConditionNoReversal, idx)
	if err != nil {
		return nil, err
	}

	wr, err := record.EstimateAt(ConditionWithReversal, idx)
	if err != nil {
		return nil, err
	}

	restoration := GapTest(std, wr)
	erasure := GapTest(nr, wr)
	verdict := Classify(erasure)

	if len(record.Data.CStandard) == 0 {
		return nil, fmt.Errorf("%w: no reference data", ErrInvalidRecord)
	}

	mean := stat.Mean(record.Data.CStandard, nil)

	a := &Analysis{
		Device: record.Metadata.Device,
		RunID:  record.Metadata.RunID,
		Shots:  record.Metadata.Shots,
		Restoration: Restoration{
			Angle:         record.Data.Theta[idx],
			CStandard:     std.Value,
			CWithReversal: wr.Value,
			TStatistic:    restoration.Sigma,
			Test:          restoration,
			Confirmed:     restoration.Defined && restoration.Sigma > RestorationThreshold,
		},
		Erasure: ErasureEffect{
			CNoReversal:       nr.Value,
			CWithReversal:     wr.Value,
			Test:              erasure,
			Verdict:           verdict,
			StatisticallySame: verdict == Indistinguishable,
		},
		Quality: HardwareQuality{
			MeanCorrelation: mean,
			FidelityPercent: mean * 100,
		},
	}

	if idx < len(record.RawCounts) {
		if res, ok := record.RawCounts[idx].Circuits[ConditionWithReversal]; ok && res.MarkerP0 != nil {
			p0 := *res.MarkerP0
			a.MarkerP0 = &p0
		}
	}

	return a, nil
}
