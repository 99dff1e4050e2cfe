package events

import (
	"net/http"
	"time"
)

// ComposeStart is emitted before a source is composed.
type ComposeStart struct {
	Source    string
	Fragments int
	Resolvers int
}

// ComposeFinish is emitted after a source is composed.
type ComposeFinish struct {
	Source   string
	Bindings int
	Err      error
	Duration time.Duration
}

// ValidateFinish is emitted after the composed schema was validated.
type ValidateFinish struct {
	Types    int
	Err      error
	Start    time.Time
	Duration time.Duration
}

// HTTPStart is emitted when an HTTP request is received.
// Context carries the request context.
type HTTPStart struct {
	Request *http.Request
}

// HTTPFinish is emitted after the handler completes.
type HTTPFinish struct {
	Request  *http.Request
	Status   int
	Duration time.Duration
}
