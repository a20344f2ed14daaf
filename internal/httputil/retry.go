// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the cloud engine client.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// RetryBaseDelay is the first backoff after an HTTP 429. Each further retry
// doubles it. Tests override this to avoid real sleeps.
var RetryBaseDelay = time.Second

// MaxRetryAfter caps a server-supplied Retry-After value.
var MaxRetryAfter = 30 * time.Second

const defaultMaxRetries = 3

// DoWithRetry executes req and retries only on HTTP 429 (Too Many Requests).
// The wait is the server's Retry-After when present, otherwise
// RetryBaseDelay doubled per attempt. Requests with a body are never
// retried because the body cannot be replayed.
//
// When maxRetries is 0 the default (3) is used. After exhausting retries the
// last 429 response is returned so the caller can inspect it. A cancelled
// context during a wait returns ctx.Err().
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int, log logrus.FieldLogger) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if req.Body != nil && req.Body != http.NoBody {
		maxRetries = 0
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= maxRetries {
			return resp, nil
		}

		wait := backoff(resp, attempt)
		DrainClose(resp)
		log.WithFields(logrus.Fields{
			"url":     req.URL.Redacted(),
			"attempt": attempt + 1,
			"wait":    wait,
		}).Debug("rate limited, retrying")

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func backoff(resp *http.Response, attempt int) time.Duration {
	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs >= 0 {
			return min(time.Duration(secs)*time.Second, MaxRetryAfter)
		}
	}
	return RetryBaseDelay << attempt
}

// DrainClose discards the rest of resp's body and closes it so the
// connection can be reused.
func DrainClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}

// StatusError describes an unexpected HTTP status. Body holds the start of
// the response body for logging.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.Code)
}

// CheckStatus returns a *StatusError and closes the body when resp's status
// is not 2xx. On success the body is left open for the caller.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	DrainClose(resp)
	e := &StatusError{Code: resp.StatusCode, Body: string(snippet)}
	if resp.Request != nil {
		e.Method = resp.Request.Method
		e.URL = resp.Request.URL.Redacted()
	}
	return e
}
