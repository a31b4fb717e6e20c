package check

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ovsov/mphub/internal/models"
)

func probeView(apiBase string) models.ConnectionView {
	v := models.ConnectionView{
		MarketplaceCode: "wb",
		APIBase:         apiBase,
	}
	v.ID = "con-probe"
	return v
}

func TestHTTPProberAcceptsHealthyEndpoint(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	prober := NewHTTPProber(srv.Client())
	err := prober(context.Background(), probeView(srv.URL), []byte("token-123"))
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if gotAuth != "Bearer token-123" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
}

func TestHTTPProberRejectedCredential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	prober := NewHTTPProber(srv.Client())
	err := prober(context.Background(), probeView(srv.URL), []byte("bad"))
	if err == nil {
		t.Fatal("Expected an error for a rejected credential")
	}
	if !strings.Contains(err.Error(), "rejected") {
		t.Errorf("Error = %v, want credential rejection", err)
	}
}

func TestHTTPProberServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	prober := NewHTTPProber(srv.Client())
	err := prober(context.Background(), probeView(srv.URL), []byte("token"))
	if err == nil {
		t.Fatal("Expected an error for a 5xx response")
	}
	if !strings.Contains(err.Error(), "unavailable") {
		t.Errorf("Error = %v, want marketplace unavailable", err)
	}
}

func TestHTTPProberMissingAPIBase(t *testing.T) {
	prober := NewHTTPProber(nil)
	err := prober(context.Background(), probeView(""), []byte("token"))
	if err == nil {
		t.Fatal("Expected an error for a marketplace without an API base")
	}
}

func TestHTTPProberClientErrorsPassThrough(t *testing.T) {
	// 404 means the marketplace answered; the credential is not at fault
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	prober := NewHTTPProber(srv.Client())
	if err := prober(context.Background(), probeView(srv.URL), []byte("token")); err != nil {
		t.Errorf("Probe failed on 404: %v", err)
	}
}
