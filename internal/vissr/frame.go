// Package vissr decodes the fixed-layout VISSR IR1 segment format used by
// the GMS-5 and GOES-9 archive and calibrates raw sensor counts into
// brightness temperatures.
//
// Segment layout (big-endian), with the manual decoder's byte offsets as
// the source of truth:
//
//	0:6     magic "VISSR\x00"
//	6:8     satellite code (1 = GMS5, 2 = GOES9)
//	8:10    samples per line
//	10:12   scanline count
//	12:16   observation time, Unix seconds UTC
//	16:18   calibration entry count (2..80)
//	18:20   reserved
//	20:340  calibration entries, 4 bytes each: raw count, centikelvin
//	0:352   header region, zero padded
//	352:    raw samples, row-major uint8
package vissr

import (
	"fmt"
	"time"
)

// Header geometry constants shared by both decoders.
const (
	HeaderSize     = 352
	calTableOffset = 20
	maxCalEntries  = 80
	minCalEntries  = 2

	// Nominal full-disk geometry, assumed when a damaged header can't
	// declare its own.
	DefaultSamplesPerLine = 2366
	DefaultScanlines      = 2366
)

// Entry maps one raw sensor count to a brightness temperature in Kelvin.
type Entry struct {
	Count  uint16
	Kelvin float64
}

// Table is a calibration lookup ordered by ascending raw count. Temperature
// may rise or fall with count; no direction is assumed.
type Table []Entry

// Frame is one decoded VISSR segment: header metadata, the embedded
// calibration table, and the raw count grid.
type Frame struct {
	Satellite      string
	SamplesPerLine int
	Scanlines      int
	// ObservedAt is the observation time encoded in the segment; zero when
	// the header was too damaged to carry one.
	ObservedAt  time.Time
	Calibration Table
	// Counts holds the raw grid row-major: Counts[row*SamplesPerLine+col].
	Counts []uint8
}

// At returns the raw count at (row, col).
func (f *Frame) At(row, col int) uint8 {
	return f.Counts[row*f.SamplesPerLine+col]
}

// DecodeError reports a structural failure while parsing a segment. Stage
// identifies which check failed.
type DecodeError struct {
	Decoder string
	Stage   string // header, geometry, calibration, scanlines, sanity
	Detail  string
	// Fallback holds the manual decoder's failure when both paths failed.
	Fallback error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("vissr decode (%s, stage %s): %s", e.Decoder, e.Stage, e.Detail)
	if e.Fallback != nil {
		msg += fmt.Sprintf("; fallback also failed: %v", e.Fallback)
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Fallback }
