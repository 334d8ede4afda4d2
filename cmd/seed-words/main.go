package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/Qwealzy/roots-of-sentient/internal/seedwords"
	"github.com/Qwealzy/roots-of-sentient/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumWords     = 100
	defaultBaseCapacity = 4
	defaultTimeout      = 30 * time.Second
	defaultRunTimeout   = 10 * time.Minute
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:8080", "Base URL of the service")
		numWords     = flag.Int("words", defaultNumWords, "Number of words to generate and submit")
		workers      = flag.Int("workers", runtime.NumCPU()*2, "Number of concurrent submitters")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		baseCapacity = flag.Int("base-capacity", defaultBaseCapacity, "Layer 0 capacity the target service runs with")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &seedwords.Config{
		BaseURL:      *baseURL,
		NumWords:     *numWords,
		Workers:      *workers,
		Timeout:      *timeout,
		BaseCapacity: *baseCapacity,
		Verbose:      *verbose,
	}

	if err := seedwords.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("seeding failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
