package util

import (
	"net/http/httptest"
	"testing"
)

func TestProxyFunc(t *testing.T) {
	req := httptest.NewRequest("GET", "https://example.com/page", nil)

	u, err := ProxyFunc("http://proxy.internal:3128")(req)
	if err != nil {
		t.Fatalf("ProxyFunc: %v", err)
	}
	if u == nil || u.Host != "proxy.internal:3128" {
		t.Errorf("proxy = %v, want proxy.internal:3128", u)
	}

	// Empty config falls back to the environment; with none set, no proxy
	t.Setenv("HTTP_PROXY", "")
	t.Setenv("HTTPS_PROXY", "")
	u, err = ProxyFunc("")(req)
	if err != nil {
		t.Fatalf("ProxyFunc env fallback: %v", err)
	}
	if u != nil {
		t.Errorf("expected no proxy without configuration, got %v", u)
	}
}
