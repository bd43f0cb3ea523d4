// Package iohelper provides bounded body reading for the scanning-service
// API client. Result payloads can be tens of megabytes for large scans, so
// every read is capped and connections are drained for keep-alive reuse.
package iohelper

import "io"

// Body size limits by payload class.
const (
	// SmallMaxBodySize covers status and error payloads (64KB).
	SmallMaxBodySize int64 = 64 * 1024

	// DefaultMaxBodySize covers module lists and scan summaries (4MB).
	DefaultMaxBodySize int64 = 4 * 1024 * 1024

	// ResultsMaxBodySize covers full scan result sets (64MB).
	ResultsMaxBodySize int64 = 64 * 1024 * 1024
)

// ReadBody reads from r with a hard size limit. A nil reader yields an
// empty slice, matching an empty response body.
func ReadBody(r io.Reader, maxSize int64) ([]byte, error) {
	if r == nil {
		return []byte{}, nil
	}
	return io.ReadAll(io.LimitReader(r, maxSize))
}

// ReadBodyDefault reads with DefaultMaxBodySize.
func ReadBodyDefault(r io.Reader) ([]byte, error) {
	return ReadBody(r, DefaultMaxBodySize)
}

// DrainAndClose consumes any remaining data from r and closes it when it
// is a ReadCloser, so the transport can reuse the connection. The drain is
// capped at 64KB. Always returns nil so it can sit in a defer.
func DrainAndClose(r io.Reader) error {
	if r == nil {
		return nil
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 64*1024))
	if rc, ok := r.(io.ReadCloser); ok {
		rc.Close()
	}
	return nil
}
