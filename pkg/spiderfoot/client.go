// Package spiderfoot is a client for the SpiderFoot HTTP API. It covers
// the scan lifecycle (start, status, results, logs, export, stop,
// delete) plus module discovery, with bearer-token auth, request rate
// limiting, and bounded retries on transient failures.
package spiderfoot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/osintment/osintment/pkg/finding"
	"github.com/osintment/osintment/pkg/httpclient"
	"github.com/osintment/osintment/pkg/iohelper"
	"github.com/osintment/osintment/pkg/jsonutil"
	"github.com/osintment/osintment/pkg/retry"
)

// Scan status values reported by the service. Matching is substring
// based because the service decorates statuses with detail
// ("ERROR-FAILED" and friends).
const (
	StatusFinished = "FINISHED"
	StatusError    = "ERROR"
	StatusAborted  = "ABORTED"
	StatusRunning  = "RUNNING"
)

// ScanTypePassive restricts a scan to modules the service flags as
// passive. Any other scan type value enables the full module set.
const ScanTypePassive = "passive"

// DefaultBaseURL is the stock address of a local SpiderFoot instance.
const DefaultBaseURL = "http://127.0.0.1:5001"

// DefaultRateLimit is the request budget per second against one
// service instance. Polling loops and result fetches share it.
const DefaultRateLimit = 8.0

// timeNow is swapped out in tests.
var timeNow = time.Now

// Config holds client configuration options. The zero value is usable
// and targets DefaultBaseURL without authentication.
type Config struct {
	// BaseURL is the service root, e.g. "http://127.0.0.1:5001".
	BaseURL string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// HTTPClient overrides the shared pooled client.
	HTTPClient *http.Client

	// RateLimit is the maximum requests per second (default: 8).
	RateLimit float64

	// Retry controls transient-failure retries (default: retry.DefaultConfig).
	Retry retry.Config
}

// Client talks to one SpiderFoot instance. Safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	retry   retry.Config
}

// New creates a client. Zero-value config fields fall back to defaults.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = httpclient.Default()
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.DefaultConfig()
	}

	burst := int(cfg.RateLimit)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    cfg.HTTPClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), burst),
		retry:   cfg.Retry,
	}
}

// BaseURL returns the normalized service root the client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// APIError is returned when the service answers with a non-2xx status.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spiderfoot: %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// ModuleInfo describes one scanning module as reported by the service.
type ModuleInfo struct {
	Descr string `json:"descr"`
	Type  string `json:"type"`
}

// StartScanOptions controls StartScan. All fields are optional.
type StartScanOptions struct {
	// Name labels the scan in the service UI. Empty names are
	// synthesized as Scan_<target>_<timestamp>.
	Name string

	// Modules lists the exact modules to run. When empty the set is
	// chosen from the service module catalog according to ScanType.
	Modules []string

	// ScanType selects the module set when Modules is empty:
	// ScanTypePassive picks passive modules only, anything else all.
	ScanType string
}

// StartScan launches a scan against target and returns the scan ID.
func (c *Client) StartScan(ctx context.Context, target string, opts StartScanOptions) (string, error) {
	if strings.TrimSpace(target) == "" {
		return "", errors.New("spiderfoot: startscan: target is required")
	}

	name := opts.Name
	if name == "" {
		name = fmt.Sprintf("Scan_%s_%s", target, timeNow().Format("20060102_150405"))
	}

	modules := opts.Modules
	if len(modules) == 0 {
		catalog, err := c.Modules(ctx)
		if err != nil {
			return "", err
		}
		for mod, info := range catalog {
			if opts.ScanType == ScanTypePassive && info.Type != ScanTypePassive {
				continue
			}
			modules = append(modules, mod)
		}
		sort.Strings(modules)
	}

	params := url.Values{}
	params.Set("scanname", name)
	params.Set("scantarget", target)
	params.Set("modulelist", strings.Join(modules, ","))
	params.Set("typelist", "")

	body, err := c.do(ctx, http.MethodPost, "startscan", params, iohelper.SmallMaxBodySize)
	if err != nil {
		return "", err
	}

	var result []any
	if err := jsonutil.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("spiderfoot: startscan: decode: %w", err)
	}
	if len(result) == 0 {
		return "", errors.New("spiderfoot: startscan: empty response")
	}
	id, ok := result[0].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("spiderfoot: startscan: unexpected scan id %v", result[0])
	}
	return id, nil
}

// ScanStatus returns the raw status rows for a scan. The first row
// carries the lifecycle status; see Status for the common case.
func (c *Client) ScanStatus(ctx context.Context, id string) ([]map[string]any, error) {
	return c.getRows(ctx, "scanstatus", idParams(id), iohelper.SmallMaxBodySize)
}

// Status returns the current lifecycle status string for a scan.
func (c *Client) Status(ctx context.Context, id string) (string, error) {
	rows, err := c.ScanStatus(ctx, id)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("spiderfoot: scanstatus: no status for scan %s", id)
	}
	status, _ := rows[0]["status"].(string)
	return status, nil
}

// ScanResults returns the raw result records for a scan.
func (c *Client) ScanResults(ctx context.Context, id string) ([]map[string]any, error) {
	return c.getRows(ctx, "scanresults", idParams(id), iohelper.ResultsMaxBodySize)
}

// ScanFindings fetches the scan results converted to findings. The raw
// records are returned alongside for exports that keep the original
// key set.
func (c *Client) ScanFindings(ctx context.Context, id string) ([]finding.Finding, []map[string]any, error) {
	raw, err := c.ScanResults(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return finding.FromMaps(raw), raw, nil
}

// ScanSummary returns the per-scan summary record.
func (c *Client) ScanSummary(ctx context.Context, id string) (map[string]any, error) {
	body, err := c.do(ctx, http.MethodGet, "scansummary", idParams(id), iohelper.DefaultMaxBodySize)
	if err != nil {
		return nil, err
	}
	var summary map[string]any
	if err := jsonutil.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("spiderfoot: scansummary: decode: %w", err)
	}
	return summary, nil
}

// ScanInfo projects the scan summary onto report metadata. Missing
// fields stay empty; the report layer substitutes its own labels.
func (c *Client) ScanInfo(ctx context.Context, id string) (finding.ScanInfo, error) {
	summary, err := c.ScanSummary(ctx, id)
	if err != nil {
		return finding.ScanInfo{}, err
	}
	info := finding.ScanInfo{ID: id}
	info.Name, _ = summary["name"].(string)
	info.Target, _ = summary["target"].(string)
	info.Created, _ = summary["created"].(string)
	return info, nil
}

// ScanLogs returns the scan log rows.
func (c *Client) ScanLogs(ctx context.Context, id string) ([]map[string]any, error) {
	return c.getRows(ctx, "scanlogs", idParams(id), iohelper.ResultsMaxBodySize)
}

// Modules returns the service module catalog keyed by module name.
func (c *Client) Modules(ctx context.Context) (map[string]ModuleInfo, error) {
	body, err := c.do(ctx, http.MethodGet, "modules", nil, iohelper.DefaultMaxBodySize)
	if err != nil {
		return nil, err
	}
	var catalog map[string]ModuleInfo
	if err := jsonutil.Unmarshal(body, &catalog); err != nil {
		return nil, fmt.Errorf("spiderfoot: modules: decode: %w", err)
	}
	return catalog, nil
}

// ExportScan downloads the scan data in the given format (default
// json). JSON payloads are validated before being returned; other
// formats pass through as the service sent them.
func (c *Client) ExportScan(ctx context.Context, id, format string) ([]byte, error) {
	if format == "" {
		format = "json"
	}
	params := idParams(id)
	params.Set("format", format)

	body, err := c.do(ctx, http.MethodGet, "scanexport", params, iohelper.ResultsMaxBodySize)
	if err != nil {
		return nil, err
	}
	if format == "json" && !jsonutil.Valid(body) {
		return nil, errors.New("spiderfoot: scanexport: invalid json payload")
	}
	return body, nil
}

// ListScans returns every scan the service knows about.
func (c *Client) ListScans(ctx context.Context) ([]map[string]any, error) {
	return c.getRows(ctx, "scanlist", nil, iohelper.DefaultMaxBodySize)
}

// DeleteScan removes a scan and its results from the service.
func (c *Client) DeleteScan(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodGet, "scandelete", idParams(id), iohelper.SmallMaxBodySize)
	return err
}

// StopScan aborts a running scan.
func (c *Client) StopScan(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodGet, "stopscan", idParams(id), iohelper.SmallMaxBodySize)
	return err
}

// Ping verifies the service is reachable and the credentials work.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "scanlist", nil, iohelper.DefaultMaxBodySize)
	return err
}

// getRows runs a query whose response is a JSON array of objects.
func (c *Client) getRows(ctx context.Context, op string, params url.Values, maxBody int64) ([]map[string]any, error) {
	body, err := c.do(ctx, http.MethodGet, op, params, maxBody)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := jsonutil.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("spiderfoot: %s: decode: %w", op, err)
	}
	return rows, nil
}

// do issues one API request with rate limiting and retries. Every
// query goes through the single /api endpoint, selected by the q
// parameter; the service expects POST parameters in the query string
// as well. 5xx and 429 responses are retried, other failures are
// permanent.
func (c *Client) do(ctx context.Context, method, op string, params url.Values, maxBody int64) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("q", op)
	endpoint := c.baseURL + "/api?" + params.Encode()

	var body []byte
	err := retry.Do(ctx, c.retry, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return retry.Stop(err)
		}

		req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
		if err != nil {
			return retry.Stop(err)
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer iohelper.DrainAndClose(resp.Body)

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			raw, _ := iohelper.ReadBody(resp.Body, iohelper.SmallMaxBodySize)
			apiErr := &APIError{Op: op, StatusCode: resp.StatusCode, Body: errorBody(raw)}
			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				return apiErr
			}
			return retry.Stop(apiErr)
		}

		body, err = iohelper.ReadBody(resp.Body, maxBody)
		return err
	})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, err
		}
		return nil, fmt.Errorf("spiderfoot: %s: %w", op, err)
	}
	return body, nil
}

func idParams(id string) url.Values {
	p := url.Values{}
	p.Set("id", id)
	return p
}

// errorBody trims an error response down to something printable.
func errorBody(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 256 {
		s = s[:256] + "..."
	}
	return s
}
