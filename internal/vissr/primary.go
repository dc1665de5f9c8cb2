package vissr

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

var segmentMagic = []byte{'V', 'I', 'S', 'S', 'R', 0}

// HeaderDecoder is the primary decode path: a strict parse of the declared
// header layout. Every structural field must check out; lenient recovery is
// the ManualDecoder's job.
type HeaderDecoder struct{}

func (HeaderDecoder) Name() string { return "header" }

func (d HeaderDecoder) fail(stage, format string, args ...interface{}) error {
	return &DecodeError{Decoder: d.Name(), Stage: stage, Detail: fmt.Sprintf(format, args...)}
}

// Decode parses data into a Frame, validating the magic, geometry,
// calibration table bounds and ordering, and the full presence of the
// declared scanline grid.
func (d HeaderDecoder) Decode(data []byte) (*Frame, error) {
	if len(data) < HeaderSize {
		return nil, d.fail("header", "segment is %d bytes, header needs %d", len(data), HeaderSize)
	}
	if !bytes.Equal(data[0:6], segmentMagic) {
		return nil, d.fail("header", "bad magic %q", data[0:6])
	}

	var sat string
	switch code := binary.BigEndian.Uint16(data[6:8]); code {
	case 1:
		sat = "GMS5"
	case 2:
		sat = "GOES9"
	default:
		return nil, d.fail("header", "unknown satellite code %d", code)
	}

	width := int(binary.BigEndian.Uint16(data[8:10]))
	height := int(binary.BigEndian.Uint16(data[10:12]))
	if width == 0 || height == 0 {
		return nil, d.fail("geometry", "declared geometry %dx%d", width, height)
	}

	observed := time.Unix(int64(binary.BigEndian.Uint32(data[12:16])), 0).UTC()

	calCount := int(binary.BigEndian.Uint16(data[16:18]))
	if calCount < minCalEntries || calCount > maxCalEntries {
		return nil, d.fail("calibration", "entry count %d outside [%d, %d]", calCount, minCalEntries, maxCalEntries)
	}

	table := make(Table, calCount)
	for i := 0; i < calCount; i++ {
		off := calTableOffset + i*4
		count := binary.BigEndian.Uint16(data[off : off+2])
		centiK := binary.BigEndian.Uint16(data[off+2 : off+4])
		if i > 0 && count <= table[i-1].Count {
			return nil, d.fail("calibration", "raw counts not strictly increasing at entry %d", i)
		}
		table[i] = Entry{Count: count, Kelvin: float64(centiK) / 100}
	}

	need := width * height
	payload := data[HeaderSize:]
	if len(payload) < need {
		return nil, d.fail("scanlines", "grid needs %d bytes for %dx%d, have %d", need, width, height, len(payload))
	}

	counts := make([]uint8, need)
	copy(counts, payload[:need])

	return &Frame{
		Satellite:      sat,
		SamplesPerLine: width,
		Scanlines:      height,
		ObservedAt:     observed,
		Calibration:    table,
		Counts:         counts,
	}, nil
}
