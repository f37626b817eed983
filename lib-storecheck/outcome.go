package storecheck

import (
	"time"
)

// Outcome is the raw result of a single probe.
//
// If Responded is true the HTTP exchange completed and StatusCode and Body are set.
// Otherwise the probe failed before a response was received, and Error explains why.
type Outcome struct {
	Responded  bool
	StatusCode int
	Latency    time.Duration
	Body       []byte
	Error      string
}

// Responded makes an Outcome of a completed HTTP exchange.
func Responded(statusCode int, latency time.Duration, body []byte) Outcome {
	return Outcome{
		Responded:  true,
		StatusCode: statusCode,
		Latency:    latency,
		Body:       body,
	}
}

// Failed makes an Outcome of a failed probe.
func Failed(latency time.Duration, message string) Outcome {
	return Outcome{
		Latency: latency,
		Error:   message,
	}
}

// LatencyMs returns the latency in whole milliseconds.
func (o Outcome) LatencyMs() int64 {
	return o.Latency.Milliseconds()
}
