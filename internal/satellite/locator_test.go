package satellite

import (
	"testing"
	"time"
)

// TestLocateConvention checks the exact path and filename convention for
// both satellites.
func TestLocateConvention(t *testing.T) {
	cases := []struct {
		req      Request
		wantDir  string
		wantFile string
	}{
		{
			Request{GMS5, time.Date(1999, 6, 15, 12, 0, 0, 0, time.UTC)},
			"/pub/GMS5/VISSR/199906/15",
			"VISSR_GMS5_199906151200.tar",
		},
		{
			Request{GMS5, time.Date(1995, 6, 13, 6, 0, 0, 0, time.UTC)},
			"/pub/GMS5/VISSR/199506/13",
			"VISSR_GMS5_199506130600.tar",
		},
		{
			Request{GOES9, time.Date(2004, 1, 2, 3, 0, 0, 0, time.UTC)},
			"/pub/GOES9-Pacific/VISSR/200401/02",
			"VISSR_GOES9_200401020300.tar",
		},
	}
	for _, tc := range cases {
		loc, err := Locate(tc.req)
		if err != nil {
			t.Errorf("Locate(%v): unexpected error: %v", tc.req, err)
			continue
		}
		if loc.Dir != tc.wantDir {
			t.Errorf("dir: got %q, want %q", loc.Dir, tc.wantDir)
		}
		if loc.File != tc.wantFile {
			t.Errorf("file: got %q, want %q", loc.File, tc.wantFile)
		}
		if want := tc.wantDir + "/" + tc.wantFile; loc.String() != want {
			t.Errorf("String: got %q, want %q", loc.String(), want)
		}
	}
}

// TestLocateDeterministic checks that repeated calls yield the identical
// locator.
func TestLocateDeterministic(t *testing.T) {
	req := Request{GMS5, time.Date(2000, 2, 29, 23, 0, 0, 0, time.UTC)}
	first, err := Locate(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		loc, err := Locate(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if loc != first {
			t.Fatalf("locator changed between calls: %v vs %v", loc, first)
		}
	}
}

// TestLocateUnknownSatellite checks the internal invariant error for a
// request that never came from Resolve.
func TestLocateUnknownSatellite(t *testing.T) {
	_, err := Locate(Request{Satellite: "METEOSAT", Time: time.Now()})
	if _, ok := err.(*LocatorError); !ok {
		t.Fatalf("got %v, want LocatorError", err)
	}
}
