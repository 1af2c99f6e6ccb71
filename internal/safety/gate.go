package safety

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Verdict is the result of checking one URL against the SSRF blocklist
type Verdict struct {
	Safe   bool
	Reason string // Blocking rule that fired, empty when safe
}

// Gate validates candidate URLs before any network call is issued.
// It rejects private, loopback, link-local and cloud-metadata targets
// so a hostile page cannot steer the crawler at internal infrastructure.
type Gate struct {
	metadataHosts map[string]bool
}

// NewGate creates a gate with the standard blocklist
func NewGate() *Gate {
	return &Gate{
		metadataHosts: map[string]bool{
			"169.254.169.254":          true,
			"metadata.google.internal": true,
			"metadata":                 true,
		},
	}
}

// Check validates a URL string. It must run before every outbound request,
// including ones triggered transitively by a fallback strategy.
func (g *Gate) Check(raw string) Verdict {
	parsed, err := url.Parse(raw)
	if err != nil {
		return Verdict{Safe: false, Reason: fmt.Sprintf("malformed URL: %v", err)}
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return Verdict{Safe: false, Reason: fmt.Sprintf("non-HTTP scheme %q", parsed.Scheme)}
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return Verdict{Safe: false, Reason: "empty host"}
	}

	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return Verdict{Safe: false, Reason: "loopback host"}
	}

	if g.metadataHosts[host] {
		return Verdict{Safe: false, Reason: "cloud metadata host"}
	}

	if ip := net.ParseIP(host); ip != nil {
		return g.checkIP(ip)
	}

	return Verdict{Safe: true}
}

// checkIP applies the address-range blocklist to a literal IP host
func (g *Gate) checkIP(ip net.IP) Verdict {
	switch {
	case ip.IsLoopback():
		return Verdict{Safe: false, Reason: "loopback address"}
	case ip.Equal(net.ParseIP("169.254.169.254")):
		return Verdict{Safe: false, Reason: "cloud metadata host"}
	case ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast():
		return Verdict{Safe: false, Reason: "link-local address"}
	case ip.IsPrivate():
		// RFC1918 ranges and IPv6 unique-local fc00::/7
		return Verdict{Safe: false, Reason: "private address"}
	case ip.IsUnspecified():
		return Verdict{Safe: false, Reason: "unspecified address"}
	}
	return Verdict{Safe: true}
}
