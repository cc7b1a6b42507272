package minmax_test

import (
	"math"
	"testing"

	"github.com/jayant1554/credit-score-defi/internal/domain/minmax"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScale(t *testing.T) {
	Convey("Given a batch of values", t, func() {
		Convey("When scaling to the unit range", func() {
			out, zero := minmax.Unit([]float64{2, 4, 6})

			Convey("Then the extremes should map to 0 and 1", func() {
				So(zero, ShouldBeFalse)
				So(out[0], ShouldEqual, 0)
				So(out[1], ShouldAlmostEqual, 0.5, 1e-12)
				So(out[2], ShouldAlmostEqual, 1, 1e-12)
			})
		})

		Convey("When scaling to [0, 1000]", func() {
			out, _ := minmax.Scale([]float64{-5, 0, 5}, 0, 1000)

			Convey("Then values should spread over the target range", func() {
				So(out[0], ShouldEqual, 0)
				So(out[1], ShouldAlmostEqual, 500, 1e-9)
				So(out[2], ShouldAlmostEqual, 1000, 1e-9)
			})
		})

		Convey("When every value is the same", func() {
			out, zero := minmax.Unit([]float64{5, 5, 5})

			Convey("Then every value should be 0 rather than NaN", func() {
				So(zero, ShouldBeTrue)
				So(out, ShouldResemble, []float64{0, 0, 0})
			})
		})

		Convey("When the batch has a single value", func() {
			out, zero := minmax.Scale([]float64{42}, 0, 1000)

			Convey("Then it should collapse to the lower bound", func() {
				So(zero, ShouldBeTrue)
				So(out, ShouldResemble, []float64{0})
			})
		})

		Convey("When the batch contains non-finite values", func() {
			out, zero := minmax.Unit([]float64{math.NaN(), 10, math.Inf(1)})

			Convey("Then they should be treated as 0", func() {
				So(zero, ShouldBeFalse)
				So(out[0], ShouldEqual, 0)
				So(out[1], ShouldAlmostEqual, 1, 1e-12)
				So(out[2], ShouldEqual, 0)
			})
		})

		Convey("When the batch is empty", func() {
			out, zero := minmax.Unit(nil)

			Convey("Then the result should be empty", func() {
				So(zero, ShouldBeFalse)
				So(out, ShouldBeEmpty)
			})
		})
	})
}
