package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/qkdlab/bb84-go/pkg/metrics"
	"github.com/qkdlab/bb84-go/pkg/server"
)

func serveCommand() {
	fs := pflag.NewFlagSet("serve", pflag.ExitOnError)
	addr := fs.String("addr", ":8080", "Address to listen on")
	origin := fs.String("origin", "*", "CORS allowed origin")
	logLevel := fs.String("log-level", "info", "Log level: debug, info, warn, error, silent")
	logFormat := fs.String("log-format", "text", "Log format: text or json")
	tracing := fs.String("tracing", "none", "Tracing mode: none, simple, otel (requires -tags otel)")

	fs.Usage = func() {
		fmt.Println(`USAGE: bb84-sim serve [options]

Start the JSON HTTP API. Routes:

    POST /api/bb84     Run the protocol
    POST /api/encrypt  Seal a message
    POST /api/decrypt  Open an envelope
    GET  /healthz      Health report
    GET  /metrics      Prometheus metrics

OPTIONS:`)
		fs.PrintDefaults()
		fmt.Println(`
EXAMPLES:
    # Default port with JSON logs
    bb84-sim serve --log-format json

    # Restrict CORS to the local frontend
    bb84-sim serve --addr :8080 --origin http://localhost:3000`)
	}

	_ = fs.Parse(os.Args[2:])

	log := metrics.NewLogger(
		metrics.WithLevel(metrics.ParseLevel(*logLevel)),
		metrics.WithFormat(metrics.ParseFormat(*logFormat)),
	)

	switch *tracing {
	case "none":
	case "simple":
		metrics.SetTracer(metrics.NewSimpleTracer())
	case "otel":
		if !metrics.OTelEnabled() {
			fatal("otel tracing requires building with -tags otel")
		}
		metrics.SetTracer(metrics.NewOTelTracer("bb84-sim"))
	default:
		fatal("unknown tracing mode %q (want none, simple, or otel)", *tracing)
	}

	srv := server.New(server.Options{
		Logger:        log,
		Collector:     metrics.NewCollector(metrics.Labels{"service": "bb84-sim"}),
		AllowedOrigin: *origin,
	})

	log.Info("starting bb84-sim", metrics.Fields{"version": getVersion(), "addr": *addr})
	if err := srv.ListenAndServe(*addr); err != nil {
		fatal("server: %v", err)
	}
}
