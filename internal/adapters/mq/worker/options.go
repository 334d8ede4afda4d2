// Package worker drains the write-back queue.
package worker

import (
	"github.com/Qwealzy/roots-of-sentient/pkg/logger"
)

// Option applies a configuration option to a Writeback worker.
type Option func(*Writeback)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *Writeback) {
		if name != "" {
			w.name = name
			w.logger = w.logger.Named(name)
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Writeback) {
		if l != nil {
			w.logger = l
		}
	}
}
