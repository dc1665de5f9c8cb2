package fetch

import (
	"archive/tar"
	"bytes"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// innerMemberSuffix identifies the IR1 channel member inside the daily
// tarball. Each tarball holds one such member.
const innerMemberSuffix = "IR1.A.IMG.gz"

// ExtractVISSR unwraps the outer tar container, locates the gzipped IR1
// member, and decompresses it into the raw VISSR segment bytes.
func ExtractVISSR(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, &CorruptArchiveError{Reason: "empty archive"}
	}

	tr := tar.NewReader(bytes.NewReader(raw))
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil, &CorruptArchiveError{Reason: "no " + innerMemberSuffix + " member in archive"}
		}
		if err != nil {
			return nil, &CorruptArchiveError{Reason: "malformed tar container", Cause: err}
		}
		if hdr.Typeflag != tar.TypeReg || !strings.HasSuffix(hdr.Name, innerMemberSuffix) {
			continue
		}

		gz, err := gzip.NewReader(tr)
		if err != nil {
			return nil, &CorruptArchiveError{Reason: "malformed gzip member " + hdr.Name, Cause: err}
		}
		segment, err := io.ReadAll(gz)
		if cerr := gz.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, &CorruptArchiveError{Reason: "gzip stream error in " + hdr.Name, Cause: err}
		}
		if len(segment) == 0 {
			return nil, &CorruptArchiveError{Reason: "empty VISSR segment in " + hdr.Name}
		}
		return segment, nil
	}
}
