package vissr

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Decoder is one decode strategy for a VISSR segment. Implementations must
// be pure functions of their input so strategies can be retried safely.
type Decoder interface {
	Name() string
	Decode(data []byte) (*Frame, error)
}

// timestampTolerance bounds how far a frame's embedded observation time may
// drift from the requested hour before the frame is rejected as the wrong
// one.
const timestampTolerance = time.Hour

// DecodeFrame runs the fixed decode policy: the strict header decoder
// first, then the manual decoder on the same bytes when the primary fails
// or its frame fails the sanity check. When both fail, the returned error
// carries both causes. requestedAt gates the embedded-timestamp check; pass
// the zero time to skip it.
func DecodeFrame(data []byte, requestedAt time.Time) (*Frame, error) {
	primary := HeaderDecoder{}
	fallback := ManualDecoder{}

	frame, perr := primary.Decode(data)
	if perr == nil {
		if serr := sanityCheck(frame, requestedAt); serr == nil {
			return frame, nil
		} else {
			perr = serr
		}
	}

	log.Debug().Err(perr).Msg("primary decode rejected, trying manual decoder")

	frame, ferr := fallback.Decode(data)
	if ferr == nil {
		if serr := sanityCheck(frame, requestedAt); serr == nil {
			return frame, nil
		} else {
			ferr = serr
		}
	}

	de := &DecodeError{Decoder: primary.Name(), Stage: "sanity", Detail: perr.Error(), Fallback: ferr}
	if pe, ok := perr.(*DecodeError); ok {
		de.Stage = pe.Stage
		de.Detail = pe.Detail
	}
	return nil, de
}

// sanityCheck validates a decoded frame's internal consistency: positive
// geometry matching the grid length, calibration bounds, and, when both
// sides carry one, agreement between the embedded observation time and the
// requested hour.
func sanityCheck(f *Frame, requestedAt time.Time) error {
	if f.SamplesPerLine <= 0 || f.Scanlines <= 0 {
		return sanityErr("geometry %dx%d", f.SamplesPerLine, f.Scanlines)
	}
	if len(f.Counts) != f.SamplesPerLine*f.Scanlines {
		return sanityErr("grid has %d samples, geometry %dx%d wants %d",
			len(f.Counts), f.SamplesPerLine, f.Scanlines, f.SamplesPerLine*f.Scanlines)
	}
	if len(f.Calibration) < minCalEntries || len(f.Calibration) > maxCalEntries {
		return sanityErr("calibration table has %d entries", len(f.Calibration))
	}
	if !requestedAt.IsZero() && !f.ObservedAt.IsZero() {
		if drift := f.ObservedAt.Sub(requestedAt); drift > timestampTolerance || drift < -timestampTolerance {
			return sanityErr("embedded time %s drifts %s from requested %s",
				f.ObservedAt.Format(time.RFC3339), drift, requestedAt.Format(time.RFC3339))
		}
	}
	return nil
}

func sanityErr(format string, args ...interface{}) error {
	return &DecodeError{Decoder: "sanity", Stage: "sanity", Detail: fmt.Sprintf(format, args...)}
}
