package util

import (
	"context"
	"net/http"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/temoto/robotstxt"

	"github.com/pkozlov/agiwatch/internal/safety"
)

// robotsTTL bounds how long a host's robots.txt policy is believed. A long
// crawl re-reads policy occasionally instead of never.
const robotsTTL = time.Hour

// RobotsChecker answers robots.txt questions for the acquisition chain.
// Policies are cached per host; an unreachable or unparseable robots.txt
// permits the fetch.
type RobotsChecker struct {
	agent    string
	client   *http.Client
	gate     *safety.Gate
	policies *gocache.Cache // host -> *robotstxt.RobotsData
}

func NewRobotsChecker(agent string, timeout time.Duration) *RobotsChecker {
	return &RobotsChecker{
		agent:    agent,
		client:   &http.Client{Timeout: timeout},
		gate:     safety.NewGate(),
		policies: gocache.New(robotsTTL, 2*robotsTTL),
	}
}

// Check reports whether rawURL may be fetched under the host's robots.txt,
// along with any Crawl-delay the host declares for our agent.
func (r *RobotsChecker) Check(ctx context.Context, rawURL string) (bool, time.Duration) {
	page, err := url.Parse(rawURL)
	if err != nil {
		return false, 0
	}

	policy := r.policyFor(ctx, page)
	if policy == nil {
		return true, 0
	}

	allowed := policy.TestAgent(page.Path, r.agent)
	var delay time.Duration
	if group := policy.FindGroup(r.agent); group != nil {
		delay = group.CrawlDelay
	}
	return allowed, delay
}

// policyFor returns the cached policy for the page's host, fetching
// robots.txt on a cache miss. The robots fetch is an outbound request like
// any other, so it passes the safety gate too. nil means no usable policy.
func (r *RobotsChecker) policyFor(ctx context.Context, page *url.URL) *robotstxt.RobotsData {
	if cached, ok := r.policies.Get(page.Host); ok {
		return cached.(*robotstxt.RobotsData)
	}

	robotsURL := page.Scheme + "://" + page.Host + "/robots.txt"
	if r.gate != nil {
		if v := r.gate.Check(robotsURL); !v.Safe {
			return nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", r.agent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	// FromResponse treats 4xx as allow-all and 5xx as disallow-all, which
	// matches the convention crawlers follow
	policy, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}

	r.policies.Set(page.Host, policy, gocache.DefaultExpiration)
	return policy
}
