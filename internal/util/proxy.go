package util

import (
	"net/http"
	"net/url"
)

// ProxyFunc returns the proxy selector for the chain's outbound requests.
// An empty or unparseable configured proxy defers to the standard
// HTTP_PROXY/HTTPS_PROXY/NO_PROXY environment variables.
func ProxyFunc(proxy string) func(*http.Request) (*url.URL, error) {
	if proxy == "" {
		return http.ProxyFromEnvironment
	}

	parsed, err := url.Parse(proxy)
	if err != nil {
		return http.ProxyFromEnvironment
	}
	return http.ProxyURL(parsed)
}
