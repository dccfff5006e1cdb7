package qerasure

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	_ "gonum.org/v1/plot/vg/vgimg"
)

// Palette assigns a fill color to each condition.
type Palette struct {
	Standard     color.Color
	NoReversal   color.Color
	WithReversal color.Color
}

func DefaultPalette() Palette {
	return Palette{
		Standard:     color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
		NoReversal:   color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
		WithReversal: color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	}
}

// For returns the color of one condition.
func (p Palette) For(cond Condition) color.Color {
	switch cond {
	case ConditionNoReversal:
		return p.NoReversal
	case ConditionWithReversal:
		return p.WithReversal
	default:
		return p.Standard
	}
}

// Palette parses the configured hex colors.
func (pc PaletteConfig) Palette() (Palette, error) {
	var (
		p   Palette
		err error
	)

	if p.Standard, err = parseHex(pc.Standard); err != nil {
		return Palette{}, err
	}

	if p.NoReversal, err = parseHex(pc.NoReversal); err != nil {
		return Palette{}, err
	}

	if p.WithReversal, err = parseHex(pc.WithReversal); err != nil {
		return Palette{}, err
	}

	return p, nil
}

func parseHex(s string) (color.Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return nil, fmt.Errorf("palette color %q is not #rrggbb", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("palette color %q: %w", s, err)
	}

	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// fade applies the 0.75 bar opacity as premultiplied alpha.
func fade(c color.Color) color.Color {
	r, g, b, _ := c.RGBA()

	return color.RGBA{
		R: uint8(r >> 8 * 3 / 4),
		G: uint8(g >> 8 * 3 / 4),
		B: uint8(b >> 8 * 3 / 4),
		A: 0xbf,
	}
}

type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

func newErrorBars(xs, ys, errs []float64, capWidth vg.Length) (*plotter.YErrorBars, error) {
	pts := errorPoints{
		XYs:     make(plotter.XYs, len(xs)),
		YErrors: make(plotter.YErrors, len(xs)),
	}

	for i := range xs {
		pts.XYs[i].X = xs[i]
		pts.XYs[i].Y = ys[i]
		pts.YErrors[i].Low = errs[i]
		pts.YErrors[i].High = errs[i]
	}

	bars, err := plotter.NewYErrorBars(pts)
	if err != nil {
		return nil, err
	}

	bars.CapWidth = capWidth

	return bars, nil
}

func zeroLine(from, to float64) (*plotter.Line, error) {
	line, err := plotter.NewLine(plotter.XYs{{X: from, Y: 0}, {X: to, Y: 0}})
	if err != nil {
		return nil, err
	}

	line.Color = color.Gray{Y: 0x80}
	line.Width = vg.Points(0.5)

	return line, nil
}

/*
PlotMainResult draws the three conditions at one angle side by side, with
error bars and the reference versus forward+reverse gap in the title. The
file at path is overwritten.
*/
func PlotMainResult(record *Record, angle float64, palette Palette, path string) error {
	idx, err := record.Lookup(angle)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Y.Label.Text = "Correlation C"
	p.Y.Min = -0.2
	p.Y.Max = 1.1

	xs := make([]float64, len(Conditions))
	ys := make([]float64, len(Conditions))
	errs := make([]float64, len(Conditions))
	names := make([]string, len(Conditions))

	for i, cond := range Conditions {
		est, err := record.EstimateAt(cond, idx)
		if err != nil {
			return err
		}

		bar, err := plotter.NewBarChart(plotter.Values{est.Value}, vg.Points(50))
		if err != nil {
			return err
		}

		bar.XMin = float64(i)
		bar.Color = fade(palette.For(cond))
		bar.LineStyle.Width = vg.Points(1)
		p.Add(bar)

		xs[i], ys[i], errs[i] = float64(i), est.Value, est.Err
		names[i] = cond.Label()
	}

	bars, err := newErrorBars(xs, ys, errs, vg.Points(10))
	if err != nil {
		return err
	}

	axis, err := zeroLine(-0.5, float64(len(Conditions))-0.5)
	if err != nil {
		return err
	}

	p.Add(axis, bars)
	p.NominalX(names...)

	sig := GapTest(
		Estimate{Value: ys[0], Err: errs[0]},
		Estimate{Value: ys[2], Err: errs[2]},
	)

	p.Title.Text = fmt.Sprintf(
		"Complete Correlation Destruction at θ=%g°\nΔC = %.2f (%.0fσ)",
		record.Data.Theta[idx], sig.Gap, sig.Sigma,
	)

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

/*
PlotAngleDependence draws one group of three bars per stored angle, with a
legend and horizontal grid. The file at path is overwritten.
*/
func PlotAngleDependence(record *Record, palette Palette, path string) error {
	const offset = 0.27

	p := plot.New()
	p.Title.Text = "Correlation vs Coupling Angle: Reversal Fails at All Angles"
	p.X.Label.Text = "Coupling Angle θ (degrees)"
	p.Y.Label.Text = "Correlation C"
	p.Y.Min = -0.15
	p.Y.Max = 1.0
	p.Legend.Top = true

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	p.Add(grid)

	n := len(record.Data.Theta)
	if n == 0 {
		return fmt.Errorf("%w: nothing to plot", ErrInvalidRecord)
	}

	for i, cond := range Conditions {
		values, errs := record.Series(cond)

		bar, err := plotter.NewBarChart(plotter.Values(values), vg.Points(18))
		if err != nil {
			return err
		}

		shift := float64(i-1) * offset
		bar.XMin = shift
		bar.Color = fade(palette.For(cond))
		bar.LineStyle.Width = vg.Points(0.8)

		xs := make([]float64, n)
		for j := range xs {
			xs[j] = float64(j) + shift
		}

		bars, err := newErrorBars(xs, values, errs, vg.Points(6))
		if err != nil {
			return err
		}

		p.Add(bar, bars)
		p.Legend.Add(cond.Label(), bar)
	}

	axis, err := zeroLine(-0.5, float64(n)-0.5)
	if err != nil {
		return err
	}

	p.Add(axis)

	labels := make([]string, n)
	for i, theta := range record.Data.Theta {
		labels[i] = fmt.Sprintf("%g°", theta)
	}

	p.NominalX(labels...)

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}
