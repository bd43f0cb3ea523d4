package spiderfoot

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/osintment/osintment/pkg/retry"
)

// Defaults for WaitForScan. Scans routinely run for tens of minutes,
// so the timeout is generous and the poll interval polite.
const (
	DefaultWaitTimeout  = time.Hour
	DefaultPollInterval = 10 * time.Second
)

// errScanRunning signals the polling loop that the scan has not
// settled yet.
var errScanRunning = errors.New("scan still running")

// WaitForScan polls the scan status until it settles. It returns true
// when the scan finished, and false when it errored, was aborted, or
// the timeout elapsed. A failed status lookup aborts the wait with its
// error; cancellation of the caller's context surfaces as that
// context's error.
func (c *Client) WaitForScan(ctx context.Context, id string, timeout, pollInterval time.Duration) (bool, error) {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	attempts := int(timeout/pollInterval) + 1

	var finished, settled bool
	err := retry.Do(ctx, retry.Polling(pollInterval, attempts), func() error {
		status, err := c.Status(ctx, id)
		if err != nil {
			return retry.Stop(err)
		}
		switch {
		case strings.Contains(status, StatusFinished):
			finished, settled = true, true
		case strings.Contains(status, StatusError), strings.Contains(status, StatusAborted):
			settled = true
		}
		if settled {
			return nil
		}
		return errScanRunning
	})

	switch {
	case err == nil:
		return finished, nil
	case errors.Is(err, errScanRunning), errors.Is(err, context.DeadlineExceeded):
		if perr := parent.Err(); perr != nil {
			return false, perr
		}
		return false, nil
	default:
		return false, err
	}
}
