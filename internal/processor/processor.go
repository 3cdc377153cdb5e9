// Package processor holds one adapter per external payment system. Each
// adapter is a stateless variant of the same shape: validate required
// configuration, perform exactly one outbound HTTP call, parse the
// processor's response envelope, and map every failure onto the shared
// error taxonomy in internal/domain/errors. Adapters never retry and are
// safe for concurrent use.
package processor

import (
	"net/http"
	"time"

	"github.com/tundeakins/billspay/internal/infrastructure/observability"
)

// Processor is the capability shared by all adapters.
type Processor interface {
	Name() string
}

// NewHTTPClient returns the client adapters share. Timeout is the only
// deadline the core imposes; callers tighten it per request via context.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
	}
}

// observe records one outbound call. Metrics are optional so adapters stay
// constructible in tests without a registry.
func observe(m *observability.Metrics, processor, operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.ProcessorCallsTotal.WithLabelValues(processor, operation, outcome).Inc()
	m.ProcessorCallDuration.WithLabelValues(processor, operation).Observe(time.Since(start).Seconds())
}
