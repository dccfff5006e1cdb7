package qerasure

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPalette(t *testing.T) {
	Convey("Given the configured palette", t, func() {
		p, err := NewConfig().Palette.Palette()
		So(err, ShouldBeNil)
		So(p, ShouldResemble, DefaultPalette())
		So(p.For(ConditionWithReversal), ShouldResemble, color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff})
	})

	Convey("Given malformed colors", t, func() {
		_, err := PaletteConfig{Standard: "blue", NoReversal: "#000000", WithReversal: "#000000"}.Palette()
		So(err, ShouldNotBeNil)

		_, err = PaletteConfig{Standard: "#zzzzzz", NoReversal: "#000000", WithReversal: "#000000"}.Palette()
		So(err, ShouldNotBeNil)
	})
}

func TestPlots(t *testing.T) {
	Convey("Given a complete record", t, func() {
		record := syntheticRecord(DefaultAngles(), 2000, 0.84, 0.02, 0.02)
		dir := t.TempDir()

		Convey("The main figure should be written", func() {
			path := filepath.Join(dir, "figure_main_result.png")
			So(PlotMainResult(record, 90, DefaultPalette(), path), ShouldBeNil)

			info, err := os.Stat(path)
			So(err, ShouldBeNil)
			So(info.Size(), ShouldBeGreaterThan, 0)

			Convey("And overwritten on the next call", func() {
				So(PlotMainResult(record, 90, DefaultPalette(), path), ShouldBeNil)
			})
		})

		Convey("The angle figure should be written", func() {
			path := filepath.Join(dir, "figure_angle_dependence.png")
			So(PlotAngleDependence(record, DefaultPalette(), path), ShouldBeNil)

			info, err := os.Stat(path)
			So(err, ShouldBeNil)
			So(info.Size(), ShouldBeGreaterThan, 0)
		})

		Convey("A missing angle should fail before drawing", func() {
			err := PlotMainResult(record, 45, DefaultPalette(), filepath.Join(dir, "x.png"))
			So(errors.Is(err, ErrAngleNotFound), ShouldBeTrue)
		})
	})
}
