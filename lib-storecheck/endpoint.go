package storecheck

import (
	"net/url"
	"time"
)

// Endpoint is a monitored URL with its expected-good response profile.
//
// ID is unique in a catalog, and it is the join key of the history.
type Endpoint struct {
	ID   string
	Name string

	// Type is a display label like "Web Page" or "API".
	Type string

	Category Category

	URL            *url.URL
	Method         string
	Timeout        time.Duration
	ExpectedStatus int

	// Critical marks business-critical endpoints. A critical endpoint in down status is reported separately in Summary.
	Critical bool
}

// Path returns the path and query of the URL for display.
func (e Endpoint) Path() string {
	if e.URL == nil {
		return ""
	}

	p := e.URL.EscapedPath()
	if p == "" {
		p = "/"
	}
	if e.URL.RawQuery != "" {
		p += "?" + e.URL.RawQuery
	}
	return p
}
