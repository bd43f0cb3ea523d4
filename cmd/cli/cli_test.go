package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/osintment/osintment/pkg/config"
	"github.com/osintment/osintment/pkg/finding"
	"github.com/osintment/osintment/pkg/retry"
	"github.com/osintment/osintment/pkg/spiderfoot"
	"github.com/osintment/osintment/pkg/testutil"
	"github.com/osintment/osintment/pkg/ui"
)

func testConfig() *config.Config {
	return &config.Config{
		SpiderFootURL: "http://recon.internal:5001",
		OutputDir:     "./reports",
		LogoPath:      "./templates/assets/logo.png",
		CompanyName:   "Acme Intel",
		Author:        "Recon Team",
	}
}

func TestCommonFlagsDefaults(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cf := registerCommonFlags(fs, testConfig())

	testutil.MustComplete(t, "parse flags", fs.Parse([]string{}))

	if cf.URL != "http://recon.internal:5001" {
		t.Errorf("URL default = %q, want the configured service URL", cf.URL)
	}
	if cf.Insecure {
		t.Error("Insecure default should be false")
	}
	if cf.Silent {
		t.Error("Silent default should be false")
	}
}

func TestCommonFlagsOverride(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cf := registerCommonFlags(fs, testConfig())

	testutil.MustComplete(t, "parse flags", fs.Parse([]string{
		"-url", "http://other:5001",
		"-api-key", "sekrit",
		"-proxy", "socks5://127.0.0.1:9050",
		"-insecure",
	}))

	if cf.URL != "http://other:5001" {
		t.Errorf("URL = %q, want the flag value", cf.URL)
	}
	if cf.APIKey != "sekrit" {
		t.Errorf("APIKey = %q, want sekrit", cf.APIKey)
	}
	if cf.Proxy != "socks5://127.0.0.1:9050" {
		t.Errorf("Proxy = %q", cf.Proxy)
	}
	if !cf.Insecure {
		t.Error("Insecure = false, want true")
	}
}

func TestReportFlagsDefaults(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	rf := registerReportFlags(fs, testConfig())

	testutil.MustComplete(t, "parse flags", fs.Parse([]string{"-pdf-engine", "chrome"}))

	if rf.Output != "./reports" {
		t.Errorf("Output = %q, want ./reports", rf.Output)
	}
	if rf.Company != "Acme Intel" {
		t.Errorf("Company = %q, want the configured company", rf.Company)
	}
	if rf.PDFEngine != "chrome" {
		t.Errorf("PDFEngine = %q, want chrome", rf.PDFEngine)
	}
}

func TestFilterFlagsBuild(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	ff := registerFilterFlags(fs)

	testutil.MustComplete(t, "parse flags", fs.Parse([]string{
		"-filter-types", "IP_ADDRESS, EMAILADDR",
		"-min-confidence", "75",
	}))

	fltr, err := ff.build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if fltr.Empty() {
		t.Fatal("filter should not be empty")
	}

	keep := finding.Finding{Type: "IP_ADDRESS", Data: "192.0.2.1", Confidence: 80}
	drop := finding.Finding{Type: "DOMAIN_NAME", Data: "example.com", Confidence: 80}
	lowConf := finding.Finding{Type: "EMAILADDR", Data: "a@example.com", Confidence: 50}

	if !fltr.Keep(keep) {
		t.Error("matching finding was dropped")
	}
	if fltr.Keep(drop) {
		t.Error("non-matching type was kept")
	}
	if fltr.Keep(lowConf) {
		t.Error("low-confidence finding was kept")
	}
}

func TestSplitCSV(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"a", []string{"a"}},
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b ,, c ", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		if got := splitCSV(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitCSV(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMaskSecret(t *testing.T) {
	if got := maskSecret(""); got != "(not set)" {
		t.Errorf("empty = %q", got)
	}
	if got := maskSecret("ab"); got != "****" {
		t.Errorf("short = %q", got)
	}
	if got := maskSecret("abcdef123456"); got != "abcd****" {
		t.Errorf("long = %q", got)
	}
	if strings.Contains(maskSecret("abcdef123456"), "123456") {
		t.Error("mask leaked the secret tail")
	}
}

func TestStringField(t *testing.T) {
	row := map[string]any{
		"name":     "sweep",
		"elements": 42.0,
		"count":    7,
		"nested":   map[string]any{},
	}
	if got := stringField(row, "name"); got != "sweep" {
		t.Errorf("string = %q", got)
	}
	if got := stringField(row, "elements"); got != "42" {
		t.Errorf("float = %q", got)
	}
	if got := stringField(row, "count"); got != "7" {
		t.Errorf("int = %q", got)
	}
	if got := stringField(row, "nested"); got != "" {
		t.Errorf("non-scalar = %q", got)
	}
	if got := stringField(row, "missing"); got != "" {
		t.Errorf("missing = %q", got)
	}
}

// statusServer fakes the scanstatus endpoint, serving each status in
// sequence and repeating the last one.
func statusServer(t *testing.T, statuses ...string) *spiderfoot.Client {
	t.Helper()

	var mu sync.Mutex
	i := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "scanstatus" {
			t.Errorf("unexpected op %q", r.URL.Query().Get("q"))
		}
		mu.Lock()
		status := statuses[i]
		if i < len(statuses)-1 {
			i++
		}
		mu.Unlock()
		json.NewEncoder(w).Encode([]map[string]any{{"status": status}})
	}))
	t.Cleanup(srv.Close)

	return spiderfoot.New(spiderfoot.Config{
		BaseURL:   srv.URL,
		RateLimit: 1000,
		Retry: retry.Config{
			MaxAttempts: 2,
			InitDelay:   time.Millisecond,
			MaxDelay:    time.Millisecond,
			Strategy:    retry.Constant,
		},
	})
}

func TestWatchScanFinishes(t *testing.T) {
	ui.SetSilent(true)
	defer ui.SetSilent(false)

	client := statusServer(t, "RUNNING", "RUNNING", "FINISHED")

	status, finished, err := watchScan(context.Background(), client, "AA11", "example.com", time.Second, 5*time.Millisecond)
	if err != nil {
		t.Fatalf("watchScan: %v", err)
	}
	if !finished {
		t.Error("finished = false, want true")
	}
	if status != "FINISHED" {
		t.Errorf("status = %q, want FINISHED", status)
	}
}

func TestWatchScanErrorStatus(t *testing.T) {
	ui.SetSilent(true)
	defer ui.SetSilent(false)

	client := statusServer(t, "RUNNING", "ERROR-FAILED")

	status, finished, err := watchScan(context.Background(), client, "AA11", "example.com", time.Second, 5*time.Millisecond)
	if err != nil {
		t.Fatalf("watchScan: %v", err)
	}
	if finished {
		t.Error("finished = true, want false")
	}
	if !strings.Contains(status, spiderfoot.StatusError) {
		t.Errorf("status = %q, want an ERROR status", status)
	}
}

func TestWatchScanTimeout(t *testing.T) {
	ui.SetSilent(true)
	defer ui.SetSilent(false)

	client := statusServer(t, "RUNNING")

	start := time.Now()
	_, finished, err := watchScan(context.Background(), client, "AA11", "example.com", 40*time.Millisecond, 5*time.Millisecond)
	if err != nil {
		t.Fatalf("watchScan: %v", err)
	}
	if finished {
		t.Error("finished = true, want false on timeout")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("watchScan took %v, should stop at the timeout", elapsed)
	}
}

func TestWatchScanContextCancel(t *testing.T) {
	ui.SetSilent(true)
	defer ui.SetSilent(false)

	client := statusServer(t, "RUNNING")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, finished, err := watchScan(ctx, client, "AA11", "example.com", time.Minute, 5*time.Millisecond)
	if err == nil {
		t.Fatal("expected a context error")
	}
	if finished {
		t.Error("finished = true, want false on cancellation")
	}
}
