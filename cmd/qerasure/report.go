package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/theapemachine/qerasure"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	rule        = strings.Repeat("=", 70)
	subRule     = strings.Repeat("-", 40)
)

func printBanner(w io.Writer) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, headerStyle.Render("EXPERIMENTAL TEST: Can Local Erasure Restore Entanglement?"))
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "\nProtocol:")
	fmt.Fprintln(w, "1. Prepare Bell state (Alice-Bob)")
	fmt.Fprintln(w, "2. Entangle Alice with Marker (stores which-path info)")
	fmt.Fprintln(w, "3. Erase Marker information (inverse operations)")
	fmt.Fprintln(w, "4. Measure: Does Alice-Bob correlation restore?")
	fmt.Fprintln(w, mutedStyle.Render("\nPrediction (LOCC theorem): NO - erasure cannot restore"))
	fmt.Fprintln(w, rule)
}

func printAngle(w io.Writer, res qerasure.AngleResult) {
	fmt.Fprintf(w, "\nθ = %g°\n", res.Angle)

	for _, cond := range qerasure.Conditions {
		r := res.Results[cond]
		fmt.Fprintf(w, "  %-16s C = %+.3f ± %.3f\n", cond.Label()+":", r.Value, r.Err)
	}

	if p0 := res.Results[qerasure.ConditionWithReversal].MarkerP0; p0 != nil {
		fmt.Fprintf(w, "  %-16s P(0) = %.3f\n", "Marker erased:", *p0)
	}

	sig := res.Restoration

	switch res.Verdict {
	case qerasure.Distinguishable:
		fmt.Fprintln(w, failStyle.Render(
			fmt.Sprintf("  → Restoration FAILED: Δ = %.3f (%.1fσ)", sig.Gap, sig.Sigma),
		))
	case qerasure.Indistinguishable:
		fmt.Fprintln(w, okStyle.Render(
			fmt.Sprintf("  → Restoration successful: Δ = %.3f (%.1fσ)", sig.Gap, sig.Sigma),
		))
	default:
		fmt.Fprintf(w, "  → Restoration undefined: Δ = %.3f (no error estimate)\n", sig.Gap)
	}
}

func printSummary(w io.Writer) {
	fmt.Fprintln(w, "\n"+rule)
	fmt.Fprintln(w, headerStyle.Render("EXPERIMENT COMPLETE"))
	fmt.Fprintln(w, rule)
}

func printAnalysis(w io.Writer, a *qerasure.Analysis) {
	r := a.Restoration
	e := a.Erasure

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, headerStyle.Render("STATISTICAL ANALYSIS"))
	fmt.Fprintln(w, rule)

	fmt.Fprintln(w, "\nTest 1: Does erasure restore correlation?")
	fmt.Fprintln(w, subRule)
	fmt.Fprintf(w, "At θ = %g°:\n", r.Angle)
	fmt.Fprintf(w, "  Standard Bell:    C = %+.3f\n", r.CStandard)
	fmt.Fprintf(w, "  With reversal:    C = %+.3f\n", r.CWithReversal)
	fmt.Fprintf(w, "  Gap:              ΔC = %.3f\n", r.Test.Gap)

	if r.Test.Defined {
		fmt.Fprintf(w, "  Significance:     %.1fσ\n", r.Test.Sigma)
		fmt.Fprintf(w, "  p-value:          %.2e\n", r.Test.PValue)
	} else {
		fmt.Fprintln(w, "  Significance:     undefined (zero combined error)")
	}

	if r.Confirmed {
		fmt.Fprintln(w, failStyle.Render(
			fmt.Sprintf("\n  ✓ CONFIRMED: Restoration FAILS (>%gσ)", qerasure.RestorationThreshold),
		))
	} else {
		fmt.Fprintln(w, okStyle.Render("\n  ✗ Restoration succeeds"))
	}

	fmt.Fprintln(w, "\nTest 2: Does erasure affect correlation at all?")
	fmt.Fprintln(w, subRule)
	fmt.Fprintf(w, "  No reversal:      C = %+.3f\n", e.CNoReversal)
	fmt.Fprintf(w, "  With reversal:    C = %+.3f\n", e.CWithReversal)
	fmt.Fprintf(w, "  Difference:       ΔC = %.3f\n", e.Test.Gap)
	fmt.Fprintf(w, "  Significance:     %.1fσ (%s)\n", e.Test.Sigma, e.Verdict)

	if e.StatisticallySame {
		fmt.Fprintln(w, okStyle.Render("\n  ✓ CONFIRMED: Erasure has NO effect"))
	} else {
		fmt.Fprintln(w, warnStyle.Render("\n  Note: Small difference detected"))
	}

	if a.MarkerP0 != nil {
		fmt.Fprintf(w, "  Marker erased:    P(0) = %.3f\n", *a.MarkerP0)
	}

	fmt.Fprintln(w, "\nHardware Quality:")
	fmt.Fprintln(w, subRule)
	fmt.Fprintf(w, "  Average Bell correlation: %.3f\n", a.Quality.MeanCorrelation)
	fmt.Fprintf(w, "  Gate fidelity:            ~%.1f%%\n", a.Quality.FidelityPercent)
	fmt.Fprintln(w, "  Expected ideal:           1.000 (100%)")

	fmt.Fprintln(w, "\n"+rule)
}
