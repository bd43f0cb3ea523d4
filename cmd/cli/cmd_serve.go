package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/osintment/osintment/pkg/config"
	"github.com/osintment/osintment/pkg/defaults"
	"github.com/osintment/osintment/pkg/hooks"
	"github.com/osintment/osintment/pkg/server"
	"github.com/osintment/osintment/pkg/ui"
)

// runServe runs the HTTP service until Ctrl-C or SIGTERM.
func runServe() {
	cfg := config.Load()

	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", fmt.Sprintf(":%d", defaults.WebPort), "Listen address")
	metricsOn := fs.Bool("metrics", false, "Expose Prometheus metrics on /metrics")
	metricsAddr := fs.String("metrics-addr", "", "Serve metrics on a separate address instead (e.g. :9090)")
	otlp := fs.String("otlp", cfg.OTLPEndpoint, "OTLP/gRPC endpoint for trace export (empty disables)")
	poll := fs.Duration("poll", 10*time.Second, "Scan monitor poll interval")
	cf := registerCommonFlags(fs, cfg)
	rf := registerReportFlags(fs, cfg)
	fs.Parse(os.Args[2:])
	cf.apply()

	ui.PrintBanner()

	gen, err := rf.generator()
	if err != nil {
		fatal(defaults.ExitUserError, "Report setup failed: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	var hookList hooks.Multi
	var promHandler http.Handler
	metricsDisplay := "off"

	if *metricsOn || *metricsAddr != "" {
		prom, err := hooks.NewPrometheusHook()
		if err != nil {
			fatal(defaults.ExitInternalError, "Metrics setup failed: %v", err)
		}
		hookList = append(hookList, prom)
		if *metricsAddr != "" {
			prom.Serve(*metricsAddr)
			metricsDisplay = *metricsAddr + "/metrics"
		} else {
			promHandler = prom.Handler()
			metricsDisplay = "/metrics"
		}
	}

	if *otlp != "" {
		otel, err := hooks.NewOTelHook(ctx, hooks.OTelOptions{Endpoint: *otlp, Insecure: true})
		if err != nil {
			ui.PrintWarning(fmt.Sprintf("Trace export disabled: %v", err))
		} else if otel.Enabled() {
			hookList = append(hookList, otel)
			defer otel.Close(context.Background())
		}
	}

	var hook hooks.Hook = hooks.Nop{}
	if len(hookList) > 0 {
		hook = hookList
	}

	srv, err := server.New(server.Config{
		Addr:         *addr,
		Client:       cf.client(),
		Generator:    gen,
		Hooks:        hook,
		PollInterval: *poll,
		Metrics:      promHandler,
		CompanyName:  rf.Company,
		Author:       rf.Author,
	})
	if err != nil {
		fatal(defaults.ExitInternalError, "%v", err)
	}

	ui.PrintConfigBanner(map[string]string{
		"Listen":         *addr,
		"SpiderFoot URL": cf.URL,
		"Output":         rf.Output,
		"Metrics":        metricsDisplay,
		"Proxy":          cf.Proxy,
	})
	ui.PrintInfo(fmt.Sprintf("Service listening on %s, press Ctrl-C to stop", *addr))

	if err := srv.Start(ctx); err != nil {
		fatal(defaults.ExitInternalError, "Service failed: %v", err)
	}
	ui.PrintSuccess("Service stopped")
}
