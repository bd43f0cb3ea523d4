// Package server is the HTTP service over the scan pipeline. It starts
// scans through the SpiderFoot client, tracks them with a store and
// monitor, and serves report generation and download endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/osintment/osintment/pkg/defaults"
	"github.com/osintment/osintment/pkg/finding"
	"github.com/osintment/osintment/pkg/hooks"
	"github.com/osintment/osintment/pkg/iohelper"
	"github.com/osintment/osintment/pkg/jsonutil"
	"github.com/osintment/osintment/pkg/report"
	"github.com/osintment/osintment/pkg/spiderfoot"
)

// Config configures the HTTP service.
type Config struct {
	// Addr is the listen address (default ":5000").
	Addr string

	// Client talks to the scanning service. Required.
	Client *spiderfoot.Client

	// Generator renders report artifacts. Required.
	Generator *report.Generator

	// Store tracks started scans (default: a fresh MemoryStore).
	Store ScanStore

	// Hooks receives lifecycle notifications (default: none).
	Hooks hooks.Hook

	// PollInterval is the monitor cadence (default: 10s).
	PollInterval time.Duration

	// Metrics is mounted at /metrics when set.
	Metrics http.Handler

	// CompanyName and Author are reported by the config check.
	CompanyName string
	Author      string

	// Server timeouts. The write timeout must cover report
	// generation, which can take minutes with the chrome PDF engine.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the HTTP service. It implements http.Handler so tests can
// drive it without a listener.
type Server struct {
	cfg       Config
	mux       *http.ServeMux
	client    *spiderfoot.Client
	store     ScanStore
	generator *report.Generator
	hooks     hooks.Hook
	monitor   *Monitor

	// baseCtx outlives individual requests; monitor goroutines run on
	// it so they survive the response that started them.
	baseCtx    context.Context
	httpServer *http.Server
}

// New creates the service and wires its routes.
func New(cfg Config) (*Server, error) {
	if cfg.Client == nil {
		return nil, errors.New("server: spiderfoot client is required")
	}
	if cfg.Generator == nil {
		return nil, errors.New("server: report generator is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = fmt.Sprintf(":%d", defaults.WebPort)
	}
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}
	if cfg.Hooks == nil {
		cfg.Hooks = hooks.Nop{}
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 5 * time.Minute
	}

	s := &Server{
		cfg:       cfg,
		client:    cfg.Client,
		store:     cfg.Store,
		generator: cfg.Generator,
		hooks:     cfg.Hooks,
		monitor:   NewMonitor(cfg.Client, cfg.Store, cfg.Hooks, cfg.PollInterval),
		baseCtx:   context.Background(),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/scan/start", s.handleScanStart)
	mux.HandleFunc("GET /api/scan/{id}/status", s.handleScanStatus)
	mux.HandleFunc("GET /api/scan/{id}/results", s.handleScanResults)
	mux.HandleFunc("POST /api/report/generate", s.handleReportGenerate)
	mux.HandleFunc("GET /api/report/download/{filename}", s.handleReportDownload)
	mux.HandleFunc("GET /api/reports/list", s.handleReportsList)
	mux.HandleFunc("GET /api/scans/list", s.handleScansList)
	mux.HandleFunc("GET /api/config/check", s.handleConfigCheck)
	if s.cfg.Metrics != nil {
		mux.Handle("GET /metrics", s.cfg.Metrics)
	}
	s.mux = mux
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Start runs the server until ctx is cancelled, then shuts down
// gracefully and waits for monitor goroutines to drain.
func (s *Server) Start(ctx context.Context) error {
	s.baseCtx = ctx
	s.httpServer = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		s.monitor.Wait()
		return nil
	}
	return err
}

type scanStartRequest struct {
	Target   string `json:"target"`
	ScanName string `json:"scan_name"`
	ScanType string `json:"scan_type"`
}

func (s *Server) handleScanStart(w http.ResponseWriter, r *http.Request) {
	var req scanStartRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Target) == "" {
		s.writeError(w, http.StatusBadRequest, "Target is required")
		return
	}

	name := req.ScanName
	if name == "" {
		name = fmt.Sprintf("Scan_%s_%s", req.Target, time.Now().Format("20060102_150405"))
	}
	scanType := req.ScanType
	if scanType == "" {
		scanType = "all"
	}

	scanID, err := s.client.StartScan(r.Context(), req.Target, spiderfoot.StartScanOptions{
		Name:     name,
		ScanType: scanType,
	})
	if err != nil {
		s.writeError(w, http.StatusBadGateway, fmt.Sprintf("Failed to start scan: %v", err))
		return
	}

	s.store.Put(ScanRecord{
		ID:        scanID,
		Target:    req.Target,
		Name:      name,
		Type:      scanType,
		Status:    StateRunning,
		StartedAt: time.Now(),
	})
	s.hooks.ScanStarted(s.baseCtx, scanID, req.Target)
	s.monitor.Watch(s.baseCtx, scanID)

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"scan_id": scanID,
		"message": "Scan started successfully",
	})
}

func (s *Server) handleScanStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	rows, err := s.client.ScanStatus(r.Context(), id)
	if err != nil {
		s.writeClientError(w, err)
		return
	}
	if len(rows) == 0 || rows[0] == nil {
		s.writeError(w, http.StatusNotFound, "Scan not found")
		return
	}

	var progress any = map[string]any{}
	if rec, ok := s.store.Get(id); ok {
		progress = rec.Progress
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"status":   rows[0],
		"progress": progress,
	})
}

func (s *Server) handleScanResults(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	findings, raw, err := s.client.ScanFindings(r.Context(), id)
	if err != nil {
		s.writeClientError(w, err)
		return
	}
	s.hooks.FindingsFetched(s.baseCtx, id, len(findings))

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"results": raw,
		"count":   len(raw),
	})
}

type reportGenerateRequest struct {
	ScanID   string `json:"scan_id"`
	Format   string `json:"format"`
	Filename string `json:"filename"`
}

type artifactView struct {
	report.Artifact
	Filename    string `json:"filename"`
	DownloadURL string `json:"download_url"`
}

func (s *Server) handleReportGenerate(w http.ResponseWriter, r *http.Request) {
	var req reportGenerateRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ScanID == "" {
		s.writeError(w, http.StatusBadRequest, "Scan ID is required")
		return
	}
	if req.Format == "" {
		req.Format = string(report.FormatHTML)
	}

	format, err := report.ParseFormat(req.Format)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid format")
		return
	}

	results, err := s.client.ScanResults(r.Context(), req.ScanID)
	if err != nil {
		s.writeClientError(w, err)
		return
	}
	if len(results) == 0 {
		s.writeError(w, http.StatusNotFound, "No results found for this scan")
		return
	}

	// Missing summary metadata degrades to Unknown labels in the report.
	info, err := s.client.ScanInfo(r.Context(), req.ScanID)
	if err != nil {
		info = finding.ScanInfo{ID: req.ScanID}
	}

	start := time.Now()
	artifacts, err := s.generator.Generate(r.Context(), results, info, format, req.Filename)
	elapsed := time.Since(start)
	if err != nil {
		s.hooks.ReportFailed(s.baseCtx, string(format))

		var pdfErr *report.PDFError
		if errors.As(err, &pdfErr) {
			s.writeJSON(w, http.StatusInternalServerError, map[string]any{
				"error":         pdfErr.Error(),
				"fallback_path": pdfErr.FallbackPath,
			})
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	views := make([]artifactView, 0, len(artifacts))
	for _, a := range artifacts {
		s.hooks.ReportGenerated(s.baseCtx, string(a.Format), elapsed)
		name := filepath.Base(a.Path)
		views = append(views, artifactView{
			Artifact:    a,
			Filename:    name,
			DownloadURL: "/api/report/download/" + name,
		})
	}

	resp := map[string]any{
		"success":    true,
		"request_id": uuid.NewString(),
		"artifacts":  views,
	}
	if len(views) > 0 {
		resp["report_path"] = views[0].Path
		resp["filename"] = views[0].Filename
		resp["download_url"] = views[0].DownloadURL
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReportDownload(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		s.writeError(w, http.StatusBadRequest, "Invalid filename")
		return
	}

	path := filepath.Join(s.generator.OutputDir(), name)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		s.writeError(w, http.StatusNotFound, "Report not found")
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}

func (s *Server) handleReportsList(w http.ResponseWriter, r *http.Request) {
	type reportEntry struct {
		Filename    string    `json:"filename"`
		Size        int64     `json:"size"`
		Modified    time.Time `json:"modified"`
		Extension   string    `json:"extension"`
		DownloadURL string    `json:"download_url"`
	}

	reports := []reportEntry{}
	entries, err := os.ReadDir(s.generator.OutputDir())
	if err != nil && !os.IsNotExist(err) {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		reports = append(reports, reportEntry{
			Filename:    entry.Name(),
			Size:        fi.Size(),
			Modified:    fi.ModTime(),
			Extension:   filepath.Ext(entry.Name()),
			DownloadURL: "/api/report/download/" + entry.Name(),
		})
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Modified.After(reports[j].Modified)
	})

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"reports": reports,
	})
}

func (s *Server) handleScansList(w http.ResponseWriter, r *http.Request) {
	scans, err := s.client.ListScans(r.Context())
	if err != nil {
		s.writeClientError(w, err)
		return
	}

	// Annotate remote rows with local monitor state where we have it.
	for _, row := range scans {
		id, _ := row["id"].(string)
		if id == "" {
			continue
		}
		if rec, ok := s.store.Get(id); ok {
			row["local"] = rec
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"scans":   scans,
		"count":   len(scans),
	})
}

func (s *Server) handleConfigCheck(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"spiderfoot_url": s.client.BaseURL(),
		"report_dir":     s.generator.OutputDir(),
		"company_name":   s.cfg.CompanyName,
		"report_author":  s.cfg.Author,
	}

	ok := true
	modules, err := s.client.Modules(r.Context())
	if err != nil {
		ok = false
		resp["connected"] = false
		resp["error"] = err.Error()
	} else {
		resp["connected"] = true
		resp["modules_count"] = len(modules)
	}

	writable := dirWritable(s.generator.OutputDir())
	resp["report_dir_writable"] = writable
	if !writable {
		ok = false
	}

	resp["success"] = ok
	code := http.StatusOK
	if !ok {
		code = http.StatusInternalServerError
	}
	s.writeJSON(w, code, resp)
}

// writeClientError maps scanning-service failures onto response codes:
// a service 404 stays a 404, everything else is a bad gateway.
func (s *Server) writeClientError(w http.ResponseWriter, err error) {
	var apiErr *spiderfoot.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		s.writeError(w, http.StatusNotFound, "Scan not found")
		return
	}
	s.writeError(w, http.StatusBadGateway, err.Error())
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", defaults.ContentTypeJSON)
	w.WriteHeader(code)
	if err := jsonutil.NewStreamEncoder(w).Encode(v); err != nil {
		log.Printf("server: encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, map[string]any{"error": msg})
}

func decodeBody(r *http.Request, v any) error {
	defer iohelper.DrainAndClose(r.Body)
	body, err := iohelper.ReadBody(r.Body, iohelper.SmallMaxBodySize)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return errors.New("empty request body")
	}
	return jsonutil.Unmarshal(body, v)
}

func dirWritable(dir string) bool {
	f, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}
