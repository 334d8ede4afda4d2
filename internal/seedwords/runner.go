package seedwords

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Qwealzy/roots-of-sentient/pkg/logger"
)

// Run executes the complete seeding run: health check, generate, submit,
// list, verify.
func Run(ctx context.Context, cfg *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting word ring seeding",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("words", cfg.NumWords),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
	)

	if err := checkServiceHealth(ctx, cfg); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	words := generateContributions(ctx, cfg, stats)
	submitContributions(ctx, cfg, words, stats)

	listed, err := fetchWords(ctx, cfg, stats)
	if err != nil {
		return fmt.Errorf("listing failed: %w", err)
	}

	if err := verifyLayout(ctx, cfg, listed); err != nil {
		return fmt.Errorf("layout verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, cfg *Config) error {
	c := newClient(cfg.Timeout)
	resp, err := c.get(ctx, cfg.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status: %d", resp.StatusCode)
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// displayFinalStats prints the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.WordsSubmitted) / stats.Duration.Seconds()
	}
	logger.Get().Info(ctx, "final statistics",
		logger.Int("wordsGenerated", stats.WordsGenerated),
		logger.Int("wordsSubmitted", stats.WordsSubmitted),
		logger.Int("wordsAccepted", stats.WordsAccepted),
		logger.Int("wordsConflict", stats.WordsConflict),
		logger.Int("wordsFailed", stats.WordsFailed),
		logger.Int("wordsListed", stats.WordsListed),
		logger.Duration("duration", stats.Duration),
		logger.Float64("wordsPerSecond", perSecond),
	)
}
