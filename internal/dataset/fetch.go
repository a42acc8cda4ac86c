package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// RetryPolicy bounds how a remote dataset is downloaded.
type RetryPolicy struct {
	Timeout     time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy mirrors the config defaults.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Timeout:     60 * time.Second,
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    4 * time.Second,
	}
}

// Fetcher downloads datasets over HTTP, retrying transport errors, 429 and 5xx.
type Fetcher struct {
	Client *http.Client
	Policy RetryPolicy
	Log    *logrus.Entry
}

// NewFetcher returns a Fetcher with an http.Client honoring the policy timeout.
func NewFetcher(p RetryPolicy, log *logrus.Entry) *Fetcher {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Fetcher{
		Client: &http.Client{Timeout: p.Timeout},
		Policy: p,
		Log:    log.WithField("component", "fetch"),
	}
}

// Fetch returns the body of url.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	attempt := 0
	op := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		resp, err := f.Client.Do(req)
		if err != nil {
			return fmt.Errorf("get %s: %w", url, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("get %s: unexpected status %s", url, resp.Status)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
			return backoff.Permanent(fmt.Errorf("get %s: unexpected status %s: %s", url, resp.Status, string(snippet)))
		}
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		body = b
		return nil
	}

	notify := func(err error, wait time.Duration) {
		f.Log.WithError(err).WithFields(logrus.Fields{
			"attempt": attempt,
			"wait":    wait.String(),
		}).Warn("dataset fetch failed, retrying")
	}
	if err := backoff.RetryNotify(op, f.backoff(ctx), notify); err != nil {
		return nil, err
	}
	f.Log.WithFields(logrus.Fields{"url": url, "bytes": len(body), "attempts": attempt}).Debug("dataset fetched")
	return body, nil
}

func (f *Fetcher) backoff(ctx context.Context) backoff.BackOff {
	p := f.Policy
	eb := backoff.NewExponentialBackOff()
	if p.BaseDelay > 0 {
		eb.InitialInterval = p.BaseDelay
	}
	if p.MaxDelay > 0 {
		eb.MaxInterval = p.MaxDelay
	}
	eb.MaxElapsedTime = 0
	retries := p.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(retries)), ctx)
}
