// SPDX-License-Identifier: MIT
//
// Package transport delivers visualization vectors to rendering consumers.
// Implementations must be safe for concurrent use and must never block the
// analysis loop: a slow or absent consumer drops frames, it does not stall
// the feed.
package transport

import (
	applog "audioviz/internal/log"
)

// Transport defines a generic interface for sending visualization vectors.
// Implementations should be thread-safe.
type Transport interface {
	Send(bins []float64) error
	Close() error
}

// LoggingTransport implements Transport by logging a frame summary, useful
// when no network consumer is configured.
type LoggingTransport struct{}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	applog.Info("Transport: Using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs the frame at debug level. It never fails.
func (lt *LoggingTransport) Send(bins []float64) error {
	peak := 0.0
	for _, v := range bins {
		if v > peak {
			peak = v
		}
	}
	applog.Debugf("LoggingTransport: frame of %d bins, peak %.3f", len(bins), peak)
	return nil
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	return nil
}

var _ Transport = (*LoggingTransport)(nil)
