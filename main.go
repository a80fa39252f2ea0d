// SPDX-License-Identifier: MIT
package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"audioviz/cmd"
	"audioviz/internal/analysis"
	"audioviz/internal/config"
	"audioviz/internal/engine"
	applog "audioviz/internal/log"
	"audioviz/internal/metrics"
	"audioviz/internal/source"
	"audioviz/internal/transport"
	"audioviz/internal/transport/udp"
	"audioviz/pkg/build"
)

// main wires the configured source, analyzer, transports and metrics into a
// running engine. The program flow has three phases:
//
//  1. Startup: resolve build info, parse arguments, construct collaborators.
//  2. Streaming: the engine loop analyzes frames and broadcasts vectors.
//  3. Shutdown: on SIGINT/SIGTERM, stop the loop and close everything.
func main() {
	build.Initialize()

	opts, err := cmd.ParseArgs()
	if err != nil {
		applog.Fatal(err)
	}
	if !opts.Run {
		// A one-off subcommand (analyze, version, help) already ran.
		return
	}
	cfg := opts.Config

	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}
	if cfg.Debug {
		applog.SetLevel(applog.LevelDebug)
	}

	method, err := analysis.ParseMethod(cfg.Analysis.Method)
	if err != nil {
		applog.Fatal(err)
	}

	src, err := source.New(source.Options{
		Kind:         cfg.Source.Kind,
		FrameSamples: cfg.Source.FrameSamples,
		SampleRate:   cfg.Source.SampleRate,
		Frequency:    cfg.Source.Frequency,
		WAVPath:      cfg.Source.WAVPath,
		Loop:         cfg.Source.Loop,
	})
	if err != nil {
		applog.Fatal(err)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		go serveMetrics(cfg.Metrics.Address, m)
	}

	transports, err := buildTransports(cfg, m)
	if err != nil {
		applog.Fatal(err)
	}

	e := engine.New(src, method, cfg.Analysis.FrameInterval.Std(), transports, m)
	e.Start()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	applog.Info("Shutting down...")
	if err := e.Close(); err != nil {
		applog.Errorf("Error closing engine: %v", err)
	}
}

// buildTransports assembles the configured transports; with none enabled
// the engine falls back to the logging transport so frames remain visible.
func buildTransports(cfg *config.Config, m *metrics.Metrics) ([]transport.Transport, error) {
	var transports []transport.Transport

	if cfg.Transport.WSEnabled {
		var clientGauge prometheus.Gauge
		if m != nil {
			clientGauge = m.ConnectedClients
		}
		transports = append(transports,
			transport.NewWebSocketTransport(cfg.Transport.WSAddress, clientGauge))
	}
	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			return nil, err
		}
		pub, err := udp.NewPublisher(cfg.Transport.UDPSendInterval.Std(), sender)
		if err != nil {
			return nil, err
		}
		transports = append(transports, pub)
	}
	if len(transports) == 0 {
		transports = append(transports, transport.NewLoggingTransport())
	}
	return transports, nil
}

func serveMetrics(addr string, m *metrics.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	applog.Infof("Metrics: listening on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		applog.Errorf("Metrics: server error: %v", err)
	}
}
