package seedwords

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Qwealzy/roots-of-sentient/pkg/logger"
)

// client wraps http.Client with the configured timeout.
type client struct {
	http *http.Client
}

func newClient(timeout time.Duration) *client {
	return &client{http: &http.Client{Timeout: timeout}}
}

func (c *client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	return c.http.Do(req)
}

// postWord submits one contribution as a multipart form.
func (c *client) postWord(ctx context.Context, url string, w Contribution) (*http.Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("term", w.Term)
	_ = mw.WriteField("username", w.DisplayName)
	_ = mw.WriteField("clientToken", w.ClientToken)
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.http.Do(req)
}

// submitContributions pushes all contributions through a worker pool.
func submitContributions(ctx context.Context, cfg *Config, words []Contribution, stats *Stats) {
	logger.Get().Info(ctx, "submitting contributions",
		logger.Int("count", len(words)),
		logger.Int("workers", cfg.Workers),
	)

	c := newClient(cfg.Timeout)
	url := cfg.BaseURL + "/words"

	var accepted, conflict, failed int64

	jobs := make(chan Contribution, cfg.Workers*2)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for w := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				switch submitOne(ctx, c, url, w) {
				case http.StatusCreated:
					atomic.AddInt64(&accepted, 1)
				case http.StatusConflict:
					atomic.AddInt64(&conflict, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}
			}
		}()
	}

	for _, w := range words {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		case jobs <- w:
		}
	}
	close(jobs)
	wg.Wait()

	stats.WordsSubmitted = len(words)
	stats.WordsAccepted = int(atomic.LoadInt64(&accepted))
	stats.WordsConflict = int(atomic.LoadInt64(&conflict))
	stats.WordsFailed = int(atomic.LoadInt64(&failed))
}

// submitOne posts a single contribution and returns the response status,
// or 0 on transport failure.
func submitOne(ctx context.Context, c *client, url string, w Contribution) int {
	resp, err := c.postWord(ctx, url, w)
	if err != nil {
		return 0
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode
}

// fetchWords retrieves the full listing.
func fetchWords(ctx context.Context, cfg *Config, stats *Stats) ([]Word, error) {
	c := newClient(cfg.Timeout)
	resp, err := c.get(ctx, cfg.BaseURL+"/words")
	if err != nil {
		return nil, fmt.Errorf("fetch words: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch words: unexpected status %d", resp.StatusCode)
	}
	var body struct {
		Words []Word `json:"words"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode words: %w", err)
	}
	stats.WordsListed = len(body.Words)
	return body.Words, nil
}
