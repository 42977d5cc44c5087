// Package providers contains the source-specific adapters that fetch raw
// pricing records. All adapters satisfy the same Fetch contract so the sync
// orchestrator treats them uniformly; they never touch persisted state other
// than the scraper snapshot files.
package providers

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"pricedex/internal/models"
)

// Adapter is the single capability every pricing source implements.
type Adapter interface {
	ID() string
	DisplayName() string
	// Strategy is one of models.StrategyAPI/StrategyScraper/StrategyStatic.
	// The orchestrator uses it to bound concurrent scraper sessions.
	Strategy() string
	// Fetch returns the source's records in source-native shape. Failures
	// are reported as *FetchError so callers can tell retryable transport
	// problems from terminal ones.
	Fetch(ctx context.Context) ([]models.RawRecord, error)
}

// FetchError describes a failed adapter fetch.
type FetchError struct {
	Provider  string
	Retryable bool
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// retryableStatus reports whether an HTTP status should be retried.
// 5xx and 429 are transient; other 4xx are terminal.
func retryableStatus(status int) bool {
	return status >= 500 || status == http.StatusTooManyRequests
}

// newHTTPClient builds the outbound client shared by the REST adapters.
// Connection pooling settings matter here because the azure adapter walks
// many result pages per fetch.
func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects (max 10)")
			}
			return nil
		},
	}
}
