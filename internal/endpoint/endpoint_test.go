package endpoint_test

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/storecheck/storecheck/internal/endpoint"
	api "github.com/storecheck/storecheck/lib-storecheck"
)

type dummyStore struct {
	healthy  bool
	messages []string
	records  []api.Record
}

func (d dummyStore) Errors() (bool, []string) {
	return d.healthy, d.messages
}

func (d dummyStore) Records() []api.Record {
	return d.records
}

func sampleReport() api.Report {
	now := time.Now().UTC().Add(-3 * time.Minute).Truncate(time.Millisecond)

	return api.Report{
		Entries: []api.SnapshotEntry{
			{ID: "cart", Name: "Cart API", Category: api.CategoryAPI, Status: api.StatusHealthy, Latency: 150 * time.Millisecond, Availability: 99.9, LastCheck: now},
			{ID: "checkout", Name: "Checkout", Category: api.CategoryWeb, Status: api.StatusDown, Latency: 2500 * time.Millisecond, Availability: 94, LastCheck: now},
		},
		Summary: api.Summary{
			Healthy:      1,
			Down:         1,
			CriticalDown: []string{"Checkout"},
		},
		GeneratedAt: now,
	}
}

func startServer(t *testing.T, latest *endpoint.Latest, s endpoint.Store) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(endpoint.New(latest, s, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, string) {
	t.Helper()

	resp, err := srv.Client().Get(srv.URL + path)
	if err != nil {
		t.Fatalf("failed to get %s: %s", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %s", err)
	}
	return resp, string(body)
}

func TestStatusJSONEndpoint(t *testing.T) {
	t.Parallel()

	latest := &endpoint.Latest{}
	srv := startServer(t, latest, dummyStore{healthy: true})

	_, body := get(t, srv, "/status.json")

	var empty api.Report
	if err := json.Unmarshal([]byte(body), &empty); err != nil {
		t.Fatalf("failed to parse response: %s\n%s", err, body)
	}
	if len(empty.Entries) != 0 {
		t.Errorf("expected no entries before the first run: %s", body)
	}
	if !strings.Contains(body, `"entries":[]`) {
		t.Errorf("entries should be an empty list: %s", body)
	}

	report := sampleReport()
	if err := latest.Publish(context.Background(), report); err != nil {
		t.Fatalf("failed to publish: %s", err)
	}

	resp, body := get(t, srv, "/status.json")
	if ct := resp.Header.Get("Content-Type"); ct != "application/json; charset=UTF-8" {
		t.Errorf("unexpected content type: %s", ct)
	}

	var got api.Report
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("failed to parse response: %s\n%s", err, body)
	}
	if len(got.Entries) != 2 || got.Entries[1].Status != api.StatusDown || !got.GeneratedAt.Equal(report.GeneratedAt) {
		t.Errorf("unexpected report: %#v", got)
	}
}

func TestStatusTextEndpoint(t *testing.T) {
	t.Parallel()

	latest := &endpoint.Latest{}
	srv := startServer(t, latest, dummyStore{healthy: true})

	if _, body := get(t, srv, "/status.txt"); !strings.Contains(body, "no run yet") {
		t.Errorf("unexpected response before the first run:\n%s", body)
	}

	latest.Publish(context.Background(), sampleReport())

	_, body := get(t, srv, "/status.txt")
	for _, want := range []string{
		"generated 3 minutes ago",
		"healthy: 1  degraded: 0  down: 1  (50% healthy)",
		"[ OK ] healthy    150ms   99.90%  cart (Cart API)",
		"[FAIL] down     2,500ms   94.00%  checkout (Checkout)",
		"CRITICAL SYSTEMS DOWN:\n  - Checkout",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("response does not include %q\n%s", want, body)
		}
	}
}

func TestHealthzEndpoint(t *testing.T) {
	t.Parallel()

	records := []api.Record{
		{ID: "cart", Status: api.StatusHealthy, Latency: 150 * time.Millisecond, Timestamp: time.Now().UTC()},
		{ID: "home", Status: api.StatusDown, Latency: 10 * time.Second, Timestamp: time.Now().UTC()},
	}
	report := sampleReport()

	type healthz struct {
		Status         string `json:"status"`
		HistoryRecords int    `json:"history_records"`
		LastRun        string `json:"last_run"`
		Errors         []struct {
			Time    string `json:"time"`
			Message string `json:"message"`
		} `json:"errors"`
	}

	tests := []struct {
		Name      string
		Store     dummyStore
		Published bool
		Code      int
		Status    string
		Errors    []string
	}{
		{"cold", dummyStore{healthy: true}, false, http.StatusOK, "healthy", nil},
		{"healthy", dummyStore{healthy: true, records: records}, true, http.StatusOK, "healthy", nil},
		{"failure", dummyStore{healthy: false, records: records, messages: []string{"2024-05-01T12:00:00Z\tfailed to write history"}}, true, http.StatusServiceUnavailable, "failure", []string{"failed to write history"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.Name, func(t *testing.T) {
			t.Parallel()

			latest := &endpoint.Latest{}
			if tt.Published {
				latest.Publish(context.Background(), report)
			}
			srv := startServer(t, latest, tt.Store)

			resp, body := get(t, srv, "/healthz")
			if resp.StatusCode != tt.Code {
				t.Errorf("unexpected status: %s", resp.Status)
			}
			if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
				t.Errorf("unexpected content type: %s", ct)
			}

			var got healthz
			if err := json.Unmarshal([]byte(body), &got); err != nil {
				t.Fatalf("failed to parse response: %s\n%s", err, body)
			}

			if got.Status != tt.Status {
				t.Errorf("expected status %q but got %q", tt.Status, got.Status)
			}
			if got.HistoryRecords != len(tt.Store.records) {
				t.Errorf("expected %d records but got %d", len(tt.Store.records), got.HistoryRecords)
			}
			if tt.Published && got.LastRun != api.FormatTime(report.GeneratedAt) {
				t.Errorf("unexpected last run: %q", got.LastRun)
			}
			if !tt.Published && got.LastRun != "" {
				t.Errorf("last run should be empty before the first run: %q", got.LastRun)
			}

			if len(got.Errors) != len(tt.Errors) {
				t.Fatalf("unexpected errors: %s", body)
			}
			for i, msg := range tt.Errors {
				if got.Errors[i].Message != msg || got.Errors[i].Time != "2024-05-01T12:00:00Z" {
					t.Errorf("%d: unexpected error: %#v", i, got.Errors[i])
				}
			}
		})
	}
}

func TestNew_gzip(t *testing.T) {
	t.Parallel()

	report := sampleReport()
	for i := 0; i < 40; i++ {
		e := report.Entries[0]
		e.ID = fmt.Sprintf("extra-%d", i)
		report.Entries = append(report.Entries, e)
	}

	latest := &endpoint.Latest{}
	latest.Publish(context.Background(), report)
	srv := startServer(t, latest, dummyStore{healthy: true})

	req, _ := http.NewRequest("GET", srv.URL+"/status.txt", nil)
	req.Header.Set("Accept-Encoding", "gzip")

	tr := &http.Transport{DisableCompression: true}
	resp, err := (&http.Client{Transport: tr}).Do(req)
	if err != nil {
		t.Fatalf("failed to get: %s", err)
	}
	defer resp.Body.Close()

	if resp.Header.Get("Content-Encoding") != "gzip" {
		t.Fatalf("response is not compressed: %v", resp.Header)
	}

	r, err := gzip.NewReader(resp.Body)
	if err != nil {
		t.Fatalf("failed to open gzip: %s", err)
	}
	body, _ := io.ReadAll(r)
	if !strings.Contains(string(body), "cart (Cart API)") {
		t.Errorf("unexpected response:\n%s", body)
	}
}

func TestNew_redirectAndNotFound(t *testing.T) {
	t.Parallel()

	srv := startServer(t, &endpoint.Latest{}, dummyStore{healthy: true})

	client := srv.Client()
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := client.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("failed to get: %s", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/status.txt" {
		t.Errorf("unexpected response: %s %s", resp.Status, resp.Header.Get("Location"))
	}

	resp, err = client.Get(srv.URL + "/no-such-page")
	if err != nil {
		t.Fatalf("failed to get: %s", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unexpected status: %s", resp.Status)
	}
}
