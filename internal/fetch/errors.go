package fetch

import "fmt"

// RetrievalError reports exhaustion of the retry budget while fetching an
// archive from the remote host.
type RetrievalError struct {
	Locator  string
	Attempts int
	Reason   error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval of %s failed after %d attempt(s): %v", e.Locator, e.Attempts, e.Reason)
}

func (e *RetrievalError) Unwrap() error { return e.Reason }

// NotFoundError reports that the remote host has no archive at the locator.
// This is permanent for a given locator and is not retried.
type NotFoundError struct {
	Locator string
}

func (e *NotFoundError) Error() string {
	return "archive not found on remote host: " + e.Locator
}

// CorruptArchiveError reports a malformed outer container or inner
// compression layer.
type CorruptArchiveError struct {
	Reason string
	Cause  error
}

func (e *CorruptArchiveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("corrupt archive: %s: %v", e.Reason, e.Cause)
	}
	return "corrupt archive: " + e.Reason
}

func (e *CorruptArchiveError) Unwrap() error { return e.Cause }
