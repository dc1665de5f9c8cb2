package satellite

import "fmt"

// Locator addresses one archived VISSR tarball on the FTP host.
type Locator struct {
	Dir  string // remote directory, e.g. /pub/GMS5/VISSR/199906/15
	File string // tar filename, e.g. VISSR_GMS5_199906151200.tar
}

func (l Locator) String() string {
	return l.Dir + "/" + l.File
}

// LocatorError reports an internal invariant violation while building a
// locator. Unreachable for requests produced by Resolve.
type LocatorError struct {
	Detail string
}

func (e *LocatorError) Error() string {
	return "archive locator: " + e.Detail
}

// basePath returns the per-satellite archive root on the FTP host.
func basePath(s Satellite) (string, bool) {
	switch s {
	case GMS5:
		return "/pub/GMS5/VISSR", true
	case GOES9:
		return "/pub/GOES9-Pacific/VISSR", true
	}
	return "", false
}

// Locate computes the remote directory and filename for a validated request.
// The convention encodes date and hour positionally:
//
//	<base>/YYYYMM/DD/VISSR_<SAT>_YYYYMMDDHH00.tar
//
// Locate is pure and performs no network access.
func Locate(req Request) (Locator, error) {
	base, ok := basePath(req.Satellite)
	if !ok {
		return Locator{}, &LocatorError{Detail: fmt.Sprintf("unknown satellite %q", req.Satellite)}
	}

	t := req.Time.UTC()
	dir := fmt.Sprintf("%s/%04d%02d/%02d", base, t.Year(), int(t.Month()), t.Day())
	file := fmt.Sprintf("VISSR_%s_%04d%02d%02d%02d00.tar", req.Satellite, t.Year(), int(t.Month()), t.Day(), t.Hour())
	return Locator{Dir: dir, File: file}, nil
}
