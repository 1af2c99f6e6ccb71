package safety

import (
	"strings"
	"testing"
)

func TestGate_Check_AllowsPublicHTTP(t *testing.T) {
	gate := NewGate()

	for _, u := range []string{
		"https://example.com/blog/post",
		"http://arxiv.org/abs/2301.00001",
		"https://93.184.216.34/page",
	} {
		v := gate.Check(u)
		if !v.Safe {
			t.Errorf("expected %s to be safe, got reason %q", u, v.Reason)
		}
	}
}

func TestGate_Check_RejectsCloudMetadata(t *testing.T) {
	gate := NewGate()

	v := gate.Check("http://169.254.169.254/latest/meta-data/")
	if v.Safe {
		t.Fatal("expected metadata endpoint to be rejected")
	}
	if !strings.Contains(v.Reason, "metadata") {
		t.Errorf("expected cloud-metadata reason, got %q", v.Reason)
	}

	v = gate.Check("http://metadata.google.internal/computeMetadata/v1/")
	if v.Safe {
		t.Error("expected GCP metadata host to be rejected")
	}
}

func TestGate_Check_RejectsPrivateRanges(t *testing.T) {
	gate := NewGate()

	cases := map[string]string{
		"http://127.0.0.1/admin":       "loopback",
		"http://localhost:8080/":       "loopback",
		"http://[::1]/":                "loopback",
		"http://10.0.0.5/internal":     "private",
		"http://172.16.1.1/":           "private",
		"http://192.168.1.1/router":    "private",
		"http://169.254.10.20/":        "link-local",
		"http://[fc00::1]/":            "private",
		"http://[fd12:3456:789a::1]/":  "private",
	}

	for u, wantReason := range cases {
		v := gate.Check(u)
		if v.Safe {
			t.Errorf("expected %s to be rejected", u)
			continue
		}
		if !strings.Contains(v.Reason, wantReason) {
			t.Errorf("%s: expected reason containing %q, got %q", u, wantReason, v.Reason)
		}
	}
}

func TestGate_Check_RejectsNonHTTPSchemes(t *testing.T) {
	gate := NewGate()

	for _, u := range []string{
		"file:///etc/passwd",
		"ftp://example.com/file",
		"gopher://example.com/",
		"javascript:alert(1)",
	} {
		if v := gate.Check(u); v.Safe {
			t.Errorf("expected %s to be rejected", u)
		}
	}
}

func TestGate_Check_RejectsMalformed(t *testing.T) {
	gate := NewGate()

	v := gate.Check("http://[::invalid")
	if v.Safe {
		t.Fatal("expected malformed URL to be rejected")
	}
	if !strings.Contains(v.Reason, "malformed") {
		t.Errorf("expected parse-error reason, got %q", v.Reason)
	}
}
