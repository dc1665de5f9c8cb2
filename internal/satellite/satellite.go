package satellite

import (
	"fmt"
	"time"
)

// Satellite identifies one of the two spacecraft whose VISSR imagery the
// Chiba University archive holds.
type Satellite string

const (
	GMS5  Satellite = "GMS5"
	GOES9 Satellite = "GOES9"
)

// CoverageWindow is the inclusive UTC range during which archived imagery
// exists for a satellite.
type CoverageWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window, boundaries included.
func (w CoverageWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

func (w CoverageWindow) String() string {
	return w.Start.Format("2006-01-02 15:04") + " .. " + w.End.Format("2006-01-02 15:04") + " UTC"
}

// Archive coverage, hourly imagery throughout. GMS-5 hands over to GOES-9
// (Pacific relocation) with no overlap.
var coverage = []struct {
	Sat    Satellite
	Window CoverageWindow
}{
	{GMS5, CoverageWindow{
		Start: time.Date(1995, 6, 13, 6, 0, 0, 0, time.UTC),
		End:   time.Date(2003, 5, 22, 0, 0, 0, 0, time.UTC),
	}},
	{GOES9, CoverageWindow{
		Start: time.Date(2003, 5, 22, 1, 0, 0, 0, time.UTC),
		End:   time.Date(2005, 6, 28, 2, 0, 0, 0, time.UTC),
	}},
}

// Window returns the coverage window for a satellite.
func Window(s Satellite) (CoverageWindow, bool) {
	for _, c := range coverage {
		if c.Sat == s {
			return c.Window, true
		}
	}
	return CoverageWindow{}, false
}

// Request is a validated hourly request: the satellite covering the instant
// plus the instant itself, truncated to the hour in UTC.
type Request struct {
	Satellite Satellite
	Time      time.Time
}

// Key returns a canonical string key for indexing this request in caches.
func (r Request) Key() string {
	return string(r.Satellite) + ":" + r.Time.Format("2006010215")
}

// OutOfCoverageError reports a requested instant outside both coverage
// windows. It carries the valid windows so callers can surface them.
type OutOfCoverageError struct {
	Requested time.Time
	Windows   map[Satellite]CoverageWindow
}

func (e *OutOfCoverageError) Error() string {
	gms := e.Windows[GMS5]
	goes := e.Windows[GOES9]
	return fmt.Sprintf("requested time %s is outside the dataset's period of coverage (GMS5: %s, GOES9: %s)",
		e.Requested.Format(time.RFC3339), gms, goes)
}

// Resolve maps a UTC instant to the satellite covering it. The instant is
// truncated to the hour; no rounding to the nearest hour is performed.
// Resolve does no I/O.
func Resolve(t time.Time) (Request, error) {
	hour := t.UTC().Truncate(time.Hour)
	for _, c := range coverage {
		if c.Window.Contains(hour) {
			return Request{Satellite: c.Sat, Time: hour}, nil
		}
	}

	windows := make(map[Satellite]CoverageWindow, len(coverage))
	for _, c := range coverage {
		windows[c.Sat] = c.Window
	}
	return Request{}, &OutOfCoverageError{Requested: hour, Windows: windows}
}
