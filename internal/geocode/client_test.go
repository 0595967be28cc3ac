package geocode

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/nexwaste/nexwaste-backend/pkg/config"
	apperrors "github.com/nexwaste/nexwaste-backend/pkg/errors"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(fn roundTripFunc) *Client {
	return NewClient(config.GeocodeConfig{
		BaseURL:   "https://geo.test",
		UserAgent: "nexwaste-test",
	}, WithHTTPClient(&http.Client{Transport: fn}))
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestReverseParsesAddress(t *testing.T) {
	var gotURL, gotAgent string
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		gotURL = req.URL.String()
		gotAgent = req.Header.Get("User-Agent")
		return jsonResponse(200, `{
			"display_name": "FC Road, Shivajinagar, Pune, Maharashtra, 411005",
			"address": {
				"road": "FC Road",
				"suburb": "Shivajinagar",
				"city": "Pune",
				"state": "Maharashtra",
				"postcode": "411005"
			}
		}`), nil
	})

	addr, err := client.Reverse(context.Background(), 18.52, 73.85)
	if err != nil {
		t.Fatalf("reverse failed: %v", err)
	}
	if addr.Street != "FC Road" || addr.City != "Pune" || addr.Postcode != "411005" {
		t.Fatalf("unexpected address %+v", addr)
	}
	if !strings.Contains(gotURL, "lat=18.52") || !strings.Contains(gotURL, "lon=73.85") {
		t.Fatalf("coordinates not encoded: %s", gotURL)
	}
	if gotAgent != "nexwaste-test" {
		t.Fatalf("expected custom user agent, got %q", gotAgent)
	}
}

func TestReverseFallsBackToTown(t *testing.T) {
	client := newTestClient(func(*http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"address": {"town": "Lonavala", "state": "Maharashtra"}}`), nil
	})

	addr, err := client.Reverse(context.Background(), 18.75, 73.41)
	if err != nil {
		t.Fatalf("reverse failed: %v", err)
	}
	if addr.City != "Lonavala" {
		t.Fatalf("expected town fallback, got %q", addr.City)
	}
}

func TestReverseNonOKStatus(t *testing.T) {
	client := newTestClient(func(*http.Request) (*http.Response, error) {
		return jsonResponse(503, `{"error": "overloaded"}`), nil
	})

	_, err := client.Reverse(context.Background(), 18.52, 73.85)
	if !apperrors.IsCode(err, apperrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
