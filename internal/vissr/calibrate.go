package vissr

// kelvinOffset converts Kelvin to Celsius.
const kelvinOffset = 273.15

// TemperatureGrid is the calibrated counterpart of a Frame: brightness
// temperatures in Celsius, same dimensions, immutable once produced.
type TemperatureGrid struct {
	Width  int
	Height int
	// Values is row-major: Values[row*Width+col].
	Values []float64
	// Clamped counts samples whose raw count fell outside the calibration
	// table's span. A high fraction signals decode corruption.
	Clamped int
}

// At returns the temperature at (row, col).
func (g *TemperatureGrid) At(row, col int) float64 {
	return g.Values[row*g.Width+col]
}

// ClampFraction is the share of samples that were clamped to a table
// boundary during calibration.
func (g *TemperatureGrid) ClampFraction() float64 {
	n := len(g.Values)
	if n == 0 {
		return 0
	}
	return float64(g.Clamped) / float64(n)
}

// Calibrate maps every raw count through the frame's calibration table with
// linear interpolation between adjacent entries. Counts outside the table's
// span clamp to the boundary temperature; the table is never extrapolated.
// The table's own temperature ordering is honored, whichever direction it
// runs.
func Calibrate(f *Frame) *TemperatureGrid {
	grid := &TemperatureGrid{
		Width:  f.SamplesPerLine,
		Height: f.Scanlines,
		Values: make([]float64, len(f.Counts)),
	}

	// Counts are uint8, so a 256-entry direct lookup covers every sample.
	var lut [256]float64
	var clamped [256]bool
	for c := 0; c < 256; c++ {
		lut[c], clamped[c] = f.Calibration.kelvinFor(uint16(c))
	}

	for i, c := range f.Counts {
		grid.Values[i] = lut[c] - kelvinOffset
		if clamped[c] {
			grid.Clamped++
		}
	}
	return grid
}

// kelvinFor interpolates the temperature for one raw count and reports
// whether the count was clamped to a table boundary.
func (t Table) kelvinFor(count uint16) (float64, bool) {
	if len(t) == 0 {
		return 0, true
	}
	if count <= t[0].Count {
		return t[0].Kelvin, count < t[0].Count
	}
	last := t[len(t)-1]
	if count >= last.Count {
		return last.Kelvin, count > last.Count
	}

	// Entries are ordered by ascending count; find the bracketing pair.
	for i := 1; i < len(t); i++ {
		if count <= t[i].Count {
			lo, hi := t[i-1], t[i]
			frac := float64(count-lo.Count) / float64(hi.Count-lo.Count)
			return lo.Kelvin + frac*(hi.Kelvin-lo.Kelvin), false
		}
	}
	return last.Kelvin, false // unreachable
}
