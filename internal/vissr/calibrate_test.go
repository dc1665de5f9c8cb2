package vissr

import (
	"math"
	"testing"
)

func frameWithCounts(table Table, counts []uint8) *Frame {
	return &Frame{
		Satellite:      "GMS5",
		SamplesPerLine: len(counts),
		Scanlines:      1,
		Calibration:    table,
		Counts:         counts,
	}
}

func approxEq(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// TestCalibrateInterpolates checks linear interpolation between adjacent
// table entries.
func TestCalibrateInterpolates(t *testing.T) {
	table := Table{
		{Count: 50, Kelvin: 200},
		{Count: 150, Kelvin: 300},
	}
	grid := Calibrate(frameWithCounts(table, []uint8{50, 100, 150}))

	if !approxEq(grid.At(0, 0), 200-kelvinOffset) {
		t.Errorf("at table entry: got %v", grid.At(0, 0))
	}
	if !approxEq(grid.At(0, 1), 250-kelvinOffset) {
		t.Errorf("midpoint: got %v, want %v", grid.At(0, 1), 250-kelvinOffset)
	}
	if !approxEq(grid.At(0, 2), 300-kelvinOffset) {
		t.Errorf("at table end: got %v", grid.At(0, 2))
	}
	if grid.Clamped != 0 {
		t.Errorf("clamped = %d, want 0", grid.Clamped)
	}
}

// TestCalibrateMonotonic checks that a monotonic table yields monotonic
// output across the full count range, in both table directions.
func TestCalibrateMonotonic(t *testing.T) {
	counts := make([]uint8, 256)
	for i := range counts {
		counts[i] = uint8(i)
	}

	increasing := Table{{0, 180}, {64, 220}, {128, 250}, {255, 320}}
	grid := Calibrate(frameWithCounts(increasing, counts))
	for i := 1; i < 256; i++ {
		if grid.Values[i] < grid.Values[i-1] {
			t.Fatalf("increasing table: output fell at count %d", i)
		}
	}

	// Sensor-count-to-temperature is typically inverse; the calibrator must
	// follow the table, not assume a direction.
	decreasing := Table{{0, 320}, {64, 250}, {128, 220}, {255, 180}}
	grid = Calibrate(frameWithCounts(decreasing, counts))
	for i := 1; i < 256; i++ {
		if grid.Values[i] > grid.Values[i-1] {
			t.Fatalf("decreasing table: output rose at count %d", i)
		}
	}
}

// TestCalibrateClamps checks that counts outside the table span take the
// boundary temperature and are counted, never extrapolated.
func TestCalibrateClamps(t *testing.T) {
	table := Table{
		{Count: 50, Kelvin: 200},
		{Count: 150, Kelvin: 300},
	}
	grid := Calibrate(frameWithCounts(table, []uint8{0, 49, 151, 255}))

	if !approxEq(grid.At(0, 0), 200-kelvinOffset) || !approxEq(grid.At(0, 1), 200-kelvinOffset) {
		t.Errorf("low clamp: got %v, %v", grid.At(0, 0), grid.At(0, 1))
	}
	if !approxEq(grid.At(0, 2), 300-kelvinOffset) || !approxEq(grid.At(0, 3), 300-kelvinOffset) {
		t.Errorf("high clamp: got %v, %v", grid.At(0, 2), grid.At(0, 3))
	}
	if grid.Clamped != 4 {
		t.Errorf("clamped = %d, want 4", grid.Clamped)
	}
	if !approxEq(grid.ClampFraction(), 1.0) {
		t.Errorf("clamp fraction = %v, want 1", grid.ClampFraction())
	}
}

// TestCalibrateDimensions checks that the grid mirrors the frame geometry.
func TestCalibrateDimensions(t *testing.T) {
	frame := &Frame{
		SamplesPerLine: 4,
		Scanlines:      3,
		Calibration:    ApproxTable(),
		Counts:         make([]uint8, 12),
	}
	grid := Calibrate(frame)
	if grid.Width != 4 || grid.Height != 3 || len(grid.Values) != 12 {
		t.Fatalf("grid %dx%d with %d values", grid.Width, grid.Height, len(grid.Values))
	}
}
