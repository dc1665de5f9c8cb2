package vissr

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Approximate IR1 calibration span used when a segment carries no usable
// table: raw counts 0..255 map linearly over 180..320 K.
const (
	approxMinKelvin = 180.0
	approxMaxKelvin = 320.0
)

// ManualDecoder is the fallback decode path: a lenient byte-offset parse
// that recovers as much of a damaged segment as possible. It assumes the
// nominal full-disk geometry when the header can't declare its own, accepts
// truncated grids by dropping incomplete trailing scanlines, and
// substitutes the approximate linear calibration when the embedded table is
// unusable.
type ManualDecoder struct{}

func (ManualDecoder) Name() string { return "manual" }

// Decode parses data into a Frame, tolerating structural damage. It fails
// only when not a single whole scanline can be recovered.
func (d ManualDecoder) Decode(data []byte) (*Frame, error) {
	width := DefaultSamplesPerLine
	height := DefaultScanlines
	if len(data) >= 12 {
		if w := int(binary.BigEndian.Uint16(data[8:10])); w > 0 {
			width = w
		}
		if h := int(binary.BigEndian.Uint16(data[10:12])); h > 0 {
			height = h
		}
	}

	var observed time.Time
	if len(data) >= 16 {
		if secs := binary.BigEndian.Uint32(data[12:16]); secs != 0 {
			observed = time.Unix(int64(secs), 0).UTC()
		}
	}

	sat := ""
	if len(data) >= 8 {
		switch binary.BigEndian.Uint16(data[6:8]) {
		case 1:
			sat = "GMS5"
		case 2:
			sat = "GOES9"
		}
	}

	if len(data) < HeaderSize+width {
		return nil, &DecodeError{
			Decoder: d.Name(),
			Stage:   "scanlines",
			Detail:  fmt.Sprintf("segment is %d bytes; no whole %d-sample scanline after header", len(data), width),
		}
	}

	payload := data[HeaderSize:]
	if avail := len(payload) / width; avail < height {
		height = avail
	}

	counts := make([]uint8, width*height)
	copy(counts, payload[:width*height])

	return &Frame{
		Satellite:      sat,
		SamplesPerLine: width,
		Scanlines:      height,
		ObservedAt:     observed,
		Calibration:    d.table(data),
		Counts:         counts,
	}, nil
}

// table reads the embedded calibration table when it is present and sane,
// and otherwise synthesizes the approximate linear one.
func (d ManualDecoder) table(data []byte) Table {
	if len(data) >= HeaderSize {
		calCount := int(binary.BigEndian.Uint16(data[16:18]))
		if calCount >= minCalEntries && calCount <= maxCalEntries {
			table := make(Table, 0, calCount)
			ok := true
			for i := 0; i < calCount; i++ {
				off := calTableOffset + i*4
				count := binary.BigEndian.Uint16(data[off : off+2])
				centiK := binary.BigEndian.Uint16(data[off+2 : off+4])
				if i > 0 && count <= table[i-1].Count {
					ok = false
					break
				}
				table = append(table, Entry{Count: count, Kelvin: float64(centiK) / 100})
			}
			if ok {
				return table
			}
		}
	}
	return ApproxTable()
}

// ApproxTable returns the linear 180..320 K calibration used when a segment
// carries no usable table.
func ApproxTable() Table {
	return Table{
		{Count: 0, Kelvin: approxMinKelvin},
		{Count: 255, Kelvin: approxMaxKelvin},
	}
}
