package monitoring

import (
	"fmt"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// Config holds New Relic configuration
type Config struct {
	LicenseKey string
	AppName    string
	Enabled    bool
}

// NewRelicApp wraps the New Relic application
type NewRelicApp struct {
	*newrelic.Application
	enabled bool
}

// New creates a new New Relic application. A disabled or unconfigured
// instrument returns a no-op wrapper.
func New(cfg Config) (*NewRelicApp, error) {
	if !cfg.Enabled || cfg.LicenseKey == "" {
		return &NewRelicApp{nil, false}, nil
	}

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.AppName),
		newrelic.ConfigLicense(cfg.LicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create New Relic application: %w", err)
	}

	return &NewRelicApp{app, true}, nil
}

// IsEnabled returns whether New Relic is enabled. A nil receiver
// behaves like a disabled instrument, so callers can hold the wrapper
// optionally without guarding every call.
func (nr *NewRelicApp) IsEnabled() bool {
	return nr != nil && nr.enabled
}

// Shutdown gracefully shuts down the New Relic application
func (nr *NewRelicApp) Shutdown(timeout time.Duration) {
	if !nr.IsEnabled() || nr.Application == nil {
		return
	}
	nr.Application.Shutdown(timeout)
}

// RecordCustomEvent records a custom event
func (nr *NewRelicApp) RecordCustomEvent(eventType string, params map[string]interface{}) {
	if !nr.IsEnabled() || nr.Application == nil {
		return
	}
	nr.Application.RecordCustomEvent(eventType, params)
}

// RecordCustomMetric records a custom metric
func (nr *NewRelicApp) RecordCustomMetric(name string, value float64) {
	if !nr.IsEnabled() || nr.Application == nil {
		return
	}
	nr.Application.RecordCustomMetric(name, value)
}

// Custom metric helpers

// RecordRequestSubmitted records a new service request
func (nr *NewRelicApp) RecordRequestSubmitted(serviceType, priority string, assigned bool) {
	nr.RecordCustomEvent("ServiceRequestSubmitted", map[string]interface{}{
		"service_type": serviceType,
		"priority":     priority,
		"assigned":     assigned,
		"timestamp":    time.Now().Unix(),
	})
}

// RecordAssignment records a mechanic assignment with its price estimate
func (nr *NewRelicApp) RecordAssignment(requestID, mechanicID int, estimatedPrice float64) {
	nr.RecordCustomEvent("MechanicAssigned", map[string]interface{}{
		"request_id":      requestID,
		"mechanic_id":     mechanicID,
		"estimated_price": estimatedPrice,
	})
}

// RecordMatchingLatency records how long candidate selection took
func (nr *NewRelicApp) RecordMatchingLatency(latencyMs float64) {
	nr.RecordCustomMetric("custom/dispatch/matching_latency_ms", latencyMs)
}

// RecordStatusTransition records a lifecycle transition
func (nr *NewRelicApp) RecordStatusTransition(requestID int, from, to string) {
	nr.RecordCustomEvent("RequestStatusChanged", map[string]interface{}{
		"request_id": requestID,
		"from":       from,
		"to":         to,
	})
}
