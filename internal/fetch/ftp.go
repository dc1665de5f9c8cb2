package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"os"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rs/zerolog/log"

	"github.com/sekaiwx/vissrview/internal/satellite"
)

// Transport fetches the raw archive bytes for a locator. The production
// implementation speaks FTP; tests substitute fakes.
type Transport interface {
	Fetch(ctx context.Context, loc satellite.Locator) ([]byte, error)
}

// FTPTransport retrieves archive tarballs from the Chiba University FTP
// server with an anonymous login.
type FTPTransport struct {
	Host    string        // host:port
	Timeout time.Duration // dial and control-connection timeout
}

// NewFTPTransport returns a transport for the given host. A missing port
// defaults to 21.
func NewFTPTransport(host string, timeout time.Duration) *FTPTransport {
	if !strings.Contains(host, ":") {
		host += ":21"
	}
	return &FTPTransport{Host: host, Timeout: timeout}
}

// Fetch downloads loc into a temporary file and returns its contents. The
// temporary file is removed on every exit path. The archive server predates
// EPSV, so extended passive mode is disabled.
func (t *FTPTransport) Fetch(ctx context.Context, loc satellite.Locator) ([]byte, error) {
	conn, err := ftp.Dial(t.Host,
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(t.Timeout),
		ftp.DialWithDisabledEPSV(true),
	)
	if err != nil {
		return nil, fmt.Errorf("ftp dial %s: %w", t.Host, err)
	}
	defer func() {
		if qerr := conn.Quit(); qerr != nil {
			log.Debug().Err(qerr).Msg("ftp quit failed")
		}
	}()

	if err := conn.Login("anonymous", "anonymous"); err != nil {
		return nil, fmt.Errorf("ftp login: %w", err)
	}

	if err := conn.ChangeDir(loc.Dir); err != nil {
		if isPermanentReply(err) {
			return nil, &NotFoundError{Locator: loc.String()}
		}
		return nil, fmt.Errorf("ftp cwd %s: %w", loc.Dir, err)
	}

	resp, err := conn.Retr(loc.File)
	if err != nil {
		if isPermanentReply(err) {
			return nil, &NotFoundError{Locator: loc.String()}
		}
		return nil, fmt.Errorf("ftp retr %s: %w", loc.File, err)
	}
	defer resp.Close()

	// Archives run to tens of megabytes; spool through a temp file rather
	// than growing a buffer while the transfer is in flight.
	tmp, err := os.CreateTemp("", "vissr-*.tar")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		if rerr := os.Remove(tmp.Name()); rerr != nil && !os.IsNotExist(rerr) {
			log.Warn().Err(rerr).Str("path", tmp.Name()).Msg("failed to remove temp file")
		}
	}()

	n, err := io.Copy(tmp, resp)
	if err != nil {
		return nil, fmt.Errorf("ftp transfer after %d bytes: %w", n, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("ftp transfer of %s returned no data", loc.File)
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind temp file: %w", err)
	}
	data, err := io.ReadAll(tmp)
	if err != nil {
		return nil, fmt.Errorf("read temp file: %w", err)
	}
	return data, nil
}

// isPermanentReply reports whether an FTP error is a 5xx permanent negative
// reply (550 file unavailable and friends).
func isPermanentReply(err error) bool {
	var proto *textproto.Error
	if errors.As(err, &proto) {
		return proto.Code >= 500 && proto.Code < 600
	}
	return false
}
