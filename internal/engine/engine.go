// SPDX-License-Identifier: MIT
/*
Package engine drives the analysis loop: on a fixed cadence it pulls one raw
frame from the configured source, analyzes it into a visualization vector
and fans the vector out to every configured transport.

The loop owns a single reusable output slice, so the steady state allocates
nothing per frame beyond whatever individual transports copy for
themselves.
*/
package engine

import (
	"io"
	"sync"
	"time"

	"audioviz/internal/analysis"
	applog "audioviz/internal/log"
	"audioviz/internal/metrics"
	"audioviz/internal/source"
	"audioviz/internal/transport"
)

// Engine pumps frames from a source through the analyzer to transports.
// Start/Stop manage a single goroutine; both are safe to call repeatedly.
type Engine struct {
	analyzer   *analysis.Analyzer
	method     analysis.Method
	src        source.Source
	transports []transport.Transport
	interval   time.Duration
	metrics    *metrics.Metrics // may be nil

	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex

	vec []float64 // reusable output vector
}

// New creates an Engine. metrics may be nil when instrumentation is
// disabled. An interval <= 0 defaults to 33ms (~30Hz).
func New(src source.Source, method analysis.Method, interval time.Duration,
	transports []transport.Transport, m *metrics.Metrics) *Engine {
	if interval <= 0 {
		interval = 33 * time.Millisecond
		applog.Warnf("Engine: invalid frame interval provided, defaulting to %s", interval)
	}
	return &Engine{
		analyzer:   analysis.New(),
		method:     method,
		src:        src,
		transports: transports,
		interval:   interval,
		metrics:    m,
		vec:        make([]float64, analysis.NumBins),
	}
}

// Start launches the analysis loop goroutine. Subsequent calls while
// running are no-ops.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.ticker != nil {
		e.mu.Unlock()
		applog.Warnf("Engine: Start called but already running.")
		return
	}

	e.ticker = time.NewTicker(e.interval)
	e.doneChan = make(chan struct{})
	e.stopOnce = sync.Once{}

	ticker := e.ticker
	doneChan := e.doneChan
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		applog.Infof("Engine: analysis loop started (method: %s, interval: %s)", e.method, e.interval)
		for {
			select {
			case <-ticker.C:
				if !e.analyzeFrame() {
					applog.Info("Engine: source exhausted, analysis loop stopping")
					return
				}
			case <-doneChan:
				return
			}
		}
	}()
}

// Stop signals the loop to terminate and waits for it to exit.
func (e *Engine) Stop() error {
	e.mu.Lock()
	if e.ticker == nil {
		e.mu.Unlock()
		return nil
	}
	e.stopOnce.Do(func() {
		close(e.doneChan)
		e.ticker.Stop()
		e.ticker = nil
	})
	e.mu.Unlock()

	e.wg.Wait()
	return nil
}

// Close stops the loop and closes the source and all transports.
func (e *Engine) Close() error {
	if err := e.Stop(); err != nil {
		return err
	}
	if err := e.src.Close(); err != nil {
		applog.Errorf("Engine: error closing source: %v", err)
	}
	for _, t := range e.transports {
		if err := t.Close(); err != nil {
			applog.Errorf("Engine: error closing transport: %v", err)
		}
	}
	return nil
}

// analyzeFrame processes one frame end to end. It returns false when the
// source is exhausted and the loop should stop.
func (e *Engine) analyzeFrame() bool {
	frame, err := e.src.ReadFrame()
	if err == io.EOF {
		return false
	}
	if err != nil {
		applog.Warnf("Engine: frame read error: %v", err)
		if e.metrics != nil {
			e.metrics.SourceErrors.Inc()
		}
		return true // transient: keep the loop alive
	}

	start := time.Now()
	n, err := e.analyzer.AnalyzeInto(e.vec, frame, e.method)
	if err != nil {
		// Only reachable through a programming error (short vec).
		applog.Errorf("Engine: analysis error: %v", err)
		return true
	}
	if n == 0 {
		// Empty snapshot; by contract nothing to draw this frame.
		if e.metrics != nil {
			e.metrics.EmptyFrames.Inc()
		}
		return true
	}

	if e.metrics != nil {
		e.metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
		e.metrics.FramesAnalyzed.WithLabelValues(e.method.String()).Inc()
	}

	for _, t := range e.transports {
		if err := t.Send(e.vec[:n]); err != nil {
			applog.Debugf("Engine: transport send failed: %v", err)
			if e.metrics != nil {
				e.metrics.TransportErrors.Inc()
			}
		}
	}
	return true
}
