// Package httpclient builds the process-wide tuned *http.Client that
// internal/httpenv uses for API calls (Authenticate, PullUserFromAPI,
// PushUserToAPI), with a shared retry policy and per-host concurrency
// limit so a burst of concurrent dispatches never floods one backend.
package httpclient

import (
	"net/http"
	"time"
)

// Default returns an HTTP client with timeouts so a stalled API endpoint
// can't hang a dispatch's Fetch call forever.
func Default() *http.Client {
	return &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			ResponseHeaderTimeout: 15 * time.Second,
			ExpectContinueTimeout: 5 * time.Second,
			IdleConnTimeout:       30 * time.Second,
		},
	}
}
