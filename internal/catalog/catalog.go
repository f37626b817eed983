// Package catalog loads the list of monitored endpoints and their profiles.
package catalog

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/storecheck/storecheck/internal/checkerr"
	api "github.com/storecheck/storecheck/lib-storecheck"
)

//go:embed default.yaml
var defaultCatalog []byte

const (
	DefaultWebTimeout     = 10 * time.Second
	DefaultAPITimeout     = 5 * time.Second
	DefaultExpectedStatus = 200
)

// Catalog is the set of monitored endpoints.
type Catalog struct {
	// UserAgent overrides the User-Agent header of probes if not empty.
	UserAgent string

	Endpoints []api.Endpoint
	Profiles  map[string]api.Profile
}

// Profile returns the profile of the endpoint.
// It returns the zero Profile if the endpoint has no specific profile.
func (c Catalog) Profile(id string) api.Profile {
	return c.Profiles[id]
}

// Lookup finds endpoint by id.
func (c Catalog) Lookup(id string) (api.Endpoint, bool) {
	for _, e := range c.Endpoints {
		if e.ID == id {
			return e, true
		}
	}
	return api.Endpoint{}, false
}

// IDs returns every endpoint id in the catalog order.
func (c Catalog) IDs() []string {
	ids := make([]string, len(c.Endpoints))
	for i, e := range c.Endpoints {
		ids[i] = e.ID
	}
	return ids
}

// Default returns the built-in storefront catalog.
func Default() Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is broken: %s", err))
	}
	return c
}

// Load reads a catalog file in YAML.
func Load(path string) (Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, checkerr.New(api.ErrInvalidCatalog, err, "failed to read catalog")
	}
	return Parse(b)
}

// Parse parses catalog YAML.
// Every problem in the catalog is reported at once as a checkerr.List.
func Parse(b []byte) (Catalog, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Catalog{}, checkerr.New(api.ErrInvalidCatalog, err, "failed to parse catalog")
	}

	f.applyDefaults()
	return f.build()
}

type file struct {
	UserAgent string      `yaml:"user_agent"`
	Endpoints []entryFile `yaml:"endpoints"`
}

type entryFile struct {
	ID             string       `yaml:"id"`
	Name           string       `yaml:"name"`
	Type           string       `yaml:"type"`
	Category       string       `yaml:"category"`
	URL            string       `yaml:"url"`
	Method         string       `yaml:"method"`
	Timeout        string       `yaml:"timeout"`
	ExpectedStatus int          `yaml:"expected_status,omitempty"`
	Critical       bool         `yaml:"critical,omitempty"`
	Diagnostics    messagesFile `yaml:"diagnostics,omitempty"`
	Incidents      messagesFile `yaml:"incidents,omitempty"`
	Metrics        []metricFile `yaml:"metrics,omitempty"`
}

type messagesFile struct {
	Healthy  string `yaml:"healthy,omitempty"`
	Degraded string `yaml:"degraded,omitempty"`
	Down     string `yaml:"down,omitempty"`
}

type metricFile struct {
	Name     string  `yaml:"name"`
	Kind     string  `yaml:"kind"`
	Factor   float64 `yaml:"factor,omitempty"`
	Value    float64 `yaml:"value,omitempty"`
	Healthy  float64 `yaml:"healthy,omitempty"`
	Degraded float64 `yaml:"degraded,omitempty"`
	Down     float64 `yaml:"down,omitempty"`
}

func (f *file) applyDefaults() {
	f.UserAgent = strings.TrimSpace(f.UserAgent)

	for i := range f.Endpoints {
		e := &f.Endpoints[i]

		e.ID = strings.TrimSpace(e.ID)
		e.URL = strings.TrimSpace(e.URL)

		if strings.TrimSpace(e.Category) == "" {
			e.Category = string(api.CategoryWeb)
		}
		if strings.TrimSpace(e.Name) == "" {
			e.Name = e.ID
		}
		if strings.TrimSpace(e.Method) == "" {
			e.Method = "GET"
		}
		e.Method = strings.ToUpper(strings.TrimSpace(e.Method))
		if e.ExpectedStatus == 0 {
			e.ExpectedStatus = DefaultExpectedStatus
		}
	}
}

func (f file) build() (Catalog, error) {
	errs := &checkerr.ListBuilder{What: api.ErrInvalidCatalog}

	if len(f.Endpoints) == 0 {
		errs.Pushf("no endpoints")
	}

	c := Catalog{
		UserAgent: f.UserAgent,
		Endpoints: make([]api.Endpoint, 0, len(f.Endpoints)),
		Profiles:  make(map[string]api.Profile),
	}
	seen := make(map[string]struct{}, len(f.Endpoints))

	for i, e := range f.Endpoints {
		name := fmt.Sprintf("endpoint[%d]", i)
		if e.ID == "" {
			errs.Pushf("%s: missing id", name)
			continue
		}
		name = fmt.Sprintf("endpoint %q", e.ID)

		if _, ok := seen[e.ID]; ok {
			errs.Pushf("%s: duplicate id", name)
			continue
		}
		seen[e.ID] = struct{}{}

		ep, err := e.endpoint()
		if err != nil {
			errs.Push(fmt.Errorf("%s: %w", name, err))
			continue
		}

		p, err := e.profile()
		if err != nil {
			errs.Push(fmt.Errorf("%s: %w", name, err))
			continue
		}

		c.Endpoints = append(c.Endpoints, ep)
		c.Profiles[ep.ID] = p
	}

	if err := errs.Build(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

func (e entryFile) endpoint() (api.Endpoint, error) {
	cat, err := api.ParseCategory(e.Category)
	if err != nil {
		return api.Endpoint{}, err
	}

	if e.URL == "" {
		return api.Endpoint{}, fmt.Errorf("missing url")
	}
	u, err := url.Parse(e.URL)
	if err != nil {
		return api.Endpoint{}, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return api.Endpoint{}, fmt.Errorf("url must start with http:// or https://")
	}
	if u.Host == "" {
		return api.Endpoint{}, fmt.Errorf("url has no host")
	}

	switch e.Method {
	case "GET", "HEAD", "POST", "PUT", "DELETE", "OPTIONS", "PATCH":
	default:
		return api.Endpoint{}, fmt.Errorf("invalid method %q", e.Method)
	}

	timeout := DefaultWebTimeout
	if cat == api.CategoryAPI {
		timeout = DefaultAPITimeout
	}
	if strings.TrimSpace(e.Timeout) != "" {
		timeout, err = time.ParseDuration(strings.TrimSpace(e.Timeout))
		if err != nil {
			return api.Endpoint{}, fmt.Errorf("invalid timeout %q: %w", e.Timeout, err)
		}
		if timeout <= 0 {
			return api.Endpoint{}, fmt.Errorf("timeout must be > 0")
		}
	}

	if e.ExpectedStatus < 100 || e.ExpectedStatus > 599 {
		return api.Endpoint{}, fmt.Errorf("expected_status must be 100..599")
	}

	typ := strings.TrimSpace(e.Type)
	if typ == "" {
		typ = "Web Page"
		if cat == api.CategoryAPI {
			typ = "API"
		}
	}

	return api.Endpoint{
		ID:             e.ID,
		Name:           strings.TrimSpace(e.Name),
		Type:           typ,
		Category:       cat,
		URL:            u,
		Method:         e.Method,
		Timeout:        timeout,
		ExpectedStatus: e.ExpectedStatus,
		Critical:       e.Critical,
	}, nil
}

func (e entryFile) profile() (api.Profile, error) {
	diag, err := e.Diagnostics.messages("diagnostics")
	if err != nil {
		return api.Profile{}, err
	}
	inc, err := e.Incidents.messages("incidents")
	if err != nil {
		return api.Profile{}, err
	}

	var metrics []api.Metric
	names := make(map[string]struct{}, len(e.Metrics))
	for _, m := range e.Metrics {
		if m.Name == "" {
			return api.Profile{}, fmt.Errorf("metric without name")
		}
		if _, ok := names[m.Name]; ok {
			return api.Profile{}, fmt.Errorf("duplicate metric %q", m.Name)
		}
		names[m.Name] = struct{}{}

		kind := api.MetricKind(strings.ToLower(strings.TrimSpace(m.Kind)))
		switch kind {
		case api.MetricLatency, api.MetricStatus, api.MetricFixed:
		default:
			return api.Profile{}, fmt.Errorf("metric %q: unknown kind %q (use latency, status or fixed)", m.Name, m.Kind)
		}

		metrics = append(metrics, api.Metric{
			Name:     m.Name,
			Kind:     kind,
			Factor:   m.Factor,
			Value:    m.Value,
			Healthy:  m.Healthy,
			Degraded: m.Degraded,
			Down:     m.Down,
		})
	}

	return api.Profile{
		Diagnostics: diag,
		Incidents:   inc,
		Metrics:     metrics,
	}, nil
}

func (m messagesFile) messages(field string) (api.Messages, error) {
	var ms api.Messages
	for _, x := range []struct {
		status api.Status
		text   string
		dst    **api.Template
	}{
		{api.StatusHealthy, m.Healthy, &ms.Healthy},
		{api.StatusDegraded, m.Degraded, &ms.Degraded},
		{api.StatusDown, m.Down, &ms.Down},
	} {
		text := strings.TrimSpace(x.text)
		if text == "" {
			continue
		}

		t, err := api.ParseTemplate(field+"."+x.status.String(), text)
		if err != nil {
			return api.Messages{}, fmt.Errorf("%s.%s: %w", field, x.status, err)
		}
		*x.dst = t
	}
	return ms, nil
}
