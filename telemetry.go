package nuru

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// TelemetryEvent describes one dispatched route invocation.
type TelemetryEvent struct {
	// Session identifies the process; assigned once, lazily.
	Session uuid.UUID
	// Route is the matched route pattern.
	Route string
	// Elapsed is the time the handler took.
	Elapsed time.Duration
}

// TelemetrySink receives events from generated dispatch code. Exporters
// are external collaborators; the default sink drops events.
type TelemetrySink func(TelemetryEvent)

var (
	telemetryMu   sync.RWMutex
	telemetrySink TelemetrySink

	sessionOnce sync.Once
	sessionID   uuid.UUID
)

// SetTelemetrySink installs the process-wide telemetry sink.
func SetTelemetrySink(sink TelemetrySink) {
	telemetryMu.Lock()
	defer telemetryMu.Unlock()
	telemetrySink = sink
}

// SessionID returns the stable per-process telemetry session identifier.
func SessionID() uuid.UUID {
	sessionOnce.Do(func() {
		sessionID = uuid.New()
	})
	return sessionID
}

// EmitTelemetry reports one route invocation. Generated dispatchers call it
// when the application was built with EnableTelemetry.
func EmitTelemetry(route string, elapsed time.Duration) {
	telemetryMu.RLock()
	sink := telemetrySink
	telemetryMu.RUnlock()
	if sink == nil {
		return
	}
	sink(TelemetryEvent{Session: SessionID(), Route: route, Elapsed: elapsed})
}
