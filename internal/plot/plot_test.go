package plot

import (
	"bytes"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gauge1.txt")
	content := "2026-03-14 09:27:00.123456    1.05000e+03\n" +
		"2026-03-14 09:27:01.000000    9.90000e+02\n" +
		"\n" +
		"2026-03-14 09:27:02.000000    NaN\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	fs, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, fs.Points, 3)

	assert.Equal(t, time.Date(2026, 3, 14, 9, 27, 0, 123456000, time.UTC), fs.Points[0].Time)
	assert.InDelta(t, 1050.0, fs.Points[0].Pressure, 1e-9)
	assert.InDelta(t, 990.0, fs.Points[1].Pressure, 1e-9)
	assert.True(t, math.IsNaN(fs.Points[2].Pressure))
}

func TestParseFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"wrong column count", "2026-03-14 09:27:00.123456\n"},
		{"bad timestamp", "not-a-date 09:27:00.123456 1.0\n"},
		{"bad pressure", "2026-03-14 09:27:00.123456 banana\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.txt")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := ParseFile(path)
			assert.Error(t, err)
		})
	}
}

func TestParseFilesMissingFile(t *testing.T) {
	_, err := ParseFiles([]string{filepath.Join(t.TempDir(), "absent.txt")})
	assert.Error(t, err)
}

func TestRenderProducesChart(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	fs := FileSeries{Name: "gauge1", Points: []Point{
		{Time: base, Pressure: 1000},
		{Time: base.Add(10 * time.Second), Pressure: 100},
		{Time: base.Add(20 * time.Second), Pressure: math.NaN()},
		{Time: base.Add(30 * time.Second), Pressure: 1},
		{Time: base.Add(40 * time.Second), Pressure: 0.01},
	}}

	img, err := Render([]FileSeries{fs}, 640, 480)
	require.NoError(t, err)
	assert.Equal(t, 640, img.Bounds().Dx())
	assert.Equal(t, 480, img.Bounds().Dy())

	// Something other than the white background must have been drawn.
	nonWhite := 0
	for y := 0; y < 480; y++ {
		for x := 0; x < 640; x++ {
			if img.RGBAAt(x, y) != (color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}) {
				nonWhite++
			}
		}
	}
	assert.Greater(t, nonWhite, 100)

	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, img))
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, buf.Bytes()[:4])
}

func TestRenderRejectsEmptyInput(t *testing.T) {
	_, err := Render([]FileSeries{{Name: "empty"}}, 640, 480)
	assert.Error(t, err)

	// All points unusable on a log axis.
	fs := FileSeries{Name: "bad", Points: []Point{
		{Time: time.Now(), Pressure: math.NaN()},
		{Time: time.Now(), Pressure: -5},
		{Time: time.Now(), Pressure: 0},
	}}
	_, err = Render([]FileSeries{fs}, 640, 480)
	assert.Error(t, err)
}

func TestRenderSinglePoint(t *testing.T) {
	fs := FileSeries{Name: "one", Points: []Point{
		{Time: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Pressure: 10},
	}}
	img, err := Render([]FileSeries{fs}, 320, 240)
	require.NoError(t, err)
	assert.NotNil(t, img)
}
