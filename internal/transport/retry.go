package transport

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/addonify/core/internal/corelog"
	"github.com/addonify/core/internal/ratelimit"
)

var retryLog = corelog.New("transport")

// retryPolicy controls when doWithRetry retries a non-2xx response.
// Add-ons are expected to answer fast, so the backoffs here are short.
type retryPolicy struct {
	maxRetries int
	backoff    time.Duration // base backoff; doubles each attempt with ±25% jitter
	max429Wait time.Duration
}

var defaultRetryPolicy = retryPolicy{
	maxRetries: 2,
	backoff:    250 * time.Millisecond,
	max429Wait: 10 * time.Second,
}

// limiters is the process-wide per-add-on rate limiter: one token bucket
// per scheme+host (ratelimit.HostOf), shared by every Transport, so a chatty
// aggregator fan-out (§4.5) never hammers a single add-on past what it can
// take. 5 req/s with a burst of 10 is a conservative default; add-ons that
// need more can be raised per-host once SLOs are known.
var limiters = ratelimit.New(5, 10)

// doWithRetry performs req, first waiting on the per-host rate limiter,
// and retries up to policy.maxRetries times: 5xx with exponential backoff
// and jitter, 429 after its Retry-After delay (capped at max429Wait) with
// jitter. A retried request re-sends req's body via req.GetBody.
// Non-retryable statuses (including 4xx other
// than 429) are returned as-is; caller closes resp.Body.
func doWithRetry(ctx context.Context, client *http.Client, req *http.Request, policy retryPolicy) (*http.Response, error) {
	if err := limiters.Wait(ctx, ratelimit.HostOf(req.URL.String())); err != nil {
		return nil, err
	}

	var lastResp *http.Response
	for attempt := 0; attempt <= policy.maxRetries; attempt++ {
		if attempt > 0 {
			var body io.ReadCloser
			if req.GetBody != nil {
				b, err := req.GetBody()
				if err != nil {
					return nil, err
				}
				body = b
			}
			req2, err := http.NewRequestWithContext(ctx, req.Method, req.URL.String(), body)
			if err != nil {
				return nil, err
			}
			req2.GetBody = req.GetBody
			req2.ContentLength = req.ContentLength
			for k, v := range req.Header {
				req2.Header[k] = v
			}
			req = req2
			if err := limiters.Wait(ctx, ratelimit.HostOf(req.URL.String())); err != nil {
				return nil, err
			}
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}

		code := resp.StatusCode
		if code == http.StatusOK || code == http.StatusNotModified {
			return resp, nil
		}

		if code == http.StatusTooManyRequests && attempt < policy.maxRetries {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			wait := jitter(parseRetryAfter(resp.Header.Get("Retry-After"), policy.max429Wait))
			retryLog.Warn("%s returned 429 (attempt %d/%d); retrying in %s",
				req.URL.Host, attempt+1, policy.maxRetries, wait.Round(time.Millisecond))
			if err := sleepCtx(ctx, wait); err != nil {
				return nil, err
			}
			lastResp = nil
			continue
		}

		if code >= 500 && code < 600 && attempt < policy.maxRetries {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			wait := jitter(policy.backoff * time.Duration(1<<uint(attempt)))
			retryLog.Warn("%s returned %d (attempt %d/%d); retrying in %s",
				req.URL.Host, code, attempt+1, policy.maxRetries, wait.Round(time.Millisecond))
			if err := sleepCtx(ctx, wait); err != nil {
				return nil, err
			}
			lastResp = nil
			continue
		}

		lastResp = resp
		break
	}

	if lastResp != nil {
		return lastResp, nil
	}
	return nil, fmt.Errorf("transport: exhausted retries for %s", req.URL.String())
}

func parseRetryAfter(s string, max time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return 500 * time.Millisecond
	}
	if sec, err := strconv.Atoi(s); err == nil && sec >= 0 {
		d := time.Duration(sec) * time.Second
		if d > max {
			return max
		}
		return d
	}
	t, err := time.Parse(time.RFC1123, s)
	if err != nil {
		return 500 * time.Millisecond
	}
	until := time.Until(t)
	if until <= 0 {
		return 0
	}
	if until > max {
		return max
	}
	return until
}

func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	frac := float64(d) * 0.25
	delta := time.Duration(rand.Int63n(int64(frac*2+1))) - time.Duration(frac)
	result := d + delta
	if result < 0 {
		return 0
	}
	return result
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
