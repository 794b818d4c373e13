package plot

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	marginLeft   = 70
	marginRight  = 20
	marginTop    = 20
	marginBottom = 50
)

var seriesPalette = []color.RGBA{
	{0x1F, 0x77, 0xB4, 0xFF},
	{0xFF, 0x7F, 0x0E, 0xFF},
	{0x2C, 0xA0, 0x2C, 0xFF},
	{0xD6, 0x27, 0x28, 0xFF},
	{0x94, 0x67, 0xBD, 0xFF},
	{0x8C, 0x56, 0x4B, 0xFF},
}

// Render draws all series on one log-scale pressure/time chart.
// Non-finite and non-positive pressures are skipped; they have no place
// on a log axis.
func Render(series []FileSeries, width, height int) (*image.RGBA, error) {
	tMin, tMax, pMin, pMax, n := bounds(series)
	if n == 0 {
		return nil, fmt.Errorf("no plottable points in %d file(s)", len(series))
	}
	if tMax.Equal(tMin) {
		tMax = tMin.Add(time.Second)
	}

	// Pad the pressure range to whole decades.
	logMin := math.Floor(math.Log10(pMin))
	logMax := math.Ceil(math.Log10(pMax))
	if logMax == logMin {
		logMax++
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	plotArea := image.Rect(marginLeft, marginTop, width-marginRight, height-marginBottom)
	gridColor := color.RGBA{0xDD, 0xDD, 0xDD, 0xFF}
	axisColor := color.RGBA{0x33, 0x33, 0x33, 0xFF}

	xAt := func(t time.Time) int {
		frac := t.Sub(tMin).Seconds() / tMax.Sub(tMin).Seconds()
		return plotArea.Min.X + int(frac*float64(plotArea.Dx()))
	}
	yAt := func(p float64) int {
		frac := (math.Log10(p) - logMin) / (logMax - logMin)
		return plotArea.Max.Y - int(frac*float64(plotArea.Dy()))
	}

	// Decade grid lines and tick labels.
	for decade := logMin; decade <= logMax; decade++ {
		y := yAt(math.Pow(10, decade))
		drawLine(img, plotArea.Min.X, y, plotArea.Max.X, y, gridColor)
		label := fmt.Sprintf("1e%+03d", int(decade))
		drawText(img, plotArea.Min.X-62, y+4, label, axisColor)
	}

	// Time ticks: start, middle, end.
	for _, frac := range []float64{0, 0.5, 1} {
		t := tMin.Add(time.Duration(frac * float64(tMax.Sub(tMin))))
		x := xAt(t)
		drawLine(img, x, plotArea.Max.Y, x, plotArea.Max.Y+5, axisColor)
		drawText(img, x-28, plotArea.Max.Y+18, t.Format("15:04:05"), axisColor)
	}

	// Axis frame.
	drawLine(img, plotArea.Min.X, plotArea.Min.Y, plotArea.Min.X, plotArea.Max.Y, axisColor)
	drawLine(img, plotArea.Min.X, plotArea.Max.Y, plotArea.Max.X, plotArea.Max.Y, axisColor)
	drawText(img, plotArea.Min.X+plotArea.Dx()/2-14, height-8, "Time", axisColor)
	drawText(img, 6, marginTop+10, "mbar", axisColor)

	// Data, one color per file.
	for i, fs := range series {
		c := seriesPalette[i%len(seriesPalette)]
		prevOK := false
		var prevX, prevY int
		for _, pt := range fs.Points {
			if !plottable(pt.Pressure) {
				prevOK = false
				continue
			}
			x, y := xAt(pt.Time), yAt(pt.Pressure)
			drawMarker(img, x, y, c)
			if prevOK {
				drawLine(img, prevX, prevY, x, y, c)
			}
			prevX, prevY, prevOK = x, y, true
		}
	}

	return img, nil
}

// WritePNG encodes a rendered chart.
func WritePNG(w io.Writer, img *image.RGBA) error {
	return png.Encode(w, img)
}

func plottable(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p > 0
}

func bounds(series []FileSeries) (tMin, tMax time.Time, pMin, pMax float64, n int) {
	pMin = math.Inf(1)
	pMax = math.Inf(-1)
	for _, fs := range series {
		for _, pt := range fs.Points {
			if !plottable(pt.Pressure) {
				continue
			}
			if n == 0 || pt.Time.Before(tMin) {
				tMin = pt.Time
			}
			if n == 0 || pt.Time.After(tMax) {
				tMax = pt.Time
			}
			pMin = math.Min(pMin, pt.Pressure)
			pMax = math.Max(pMax, pt.Pressure)
			n++
		}
	}
	return tMin, tMax, pMin, pMax, n
}

func drawText(img *image.RGBA, x, y int, text string, c color.Color) {
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}

func drawMarker(img *image.RGBA, x, y int, c color.Color) {
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			img.Set(x+dx, y+dy, c)
		}
	}
}

// drawLine draws a 1px line with the integer midpoint algorithm.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		img.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
