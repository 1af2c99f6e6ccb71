package acquire

import (
	"encoding/xml"
	"testing"
)

func TestSameHostTopical(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://example.com/research/new-model", true},
		{"https://example.com/blog/2025/01/post", true},
		{"https://example.com/news/item", true},
		{"https://example.com/about/careers", false},
		{"https://other.com/research/new-model", false},
		{"://bad", false},
	}

	for _, tc := range cases {
		if got := sameHostTopical(tc.url, "example.com"); got != tc.want {
			t.Errorf("sameHostTopical(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}

func TestSlugTitle(t *testing.T) {
	cases := map[string]string{
		"https://example.com/research/gpt-5-sets-new-benchmark-records": "gpt 5 sets new benchmark records",
		"https://example.com/blog/scaling_laws_revisited.html":          "scaling laws revisited",
		"https://example.com/":                                          "example.com",
	}

	for url, want := range cases {
		if got := slugTitle(url); got != want {
			t.Errorf("slugTitle(%q) = %q, want %q", url, got, want)
		}
	}
}

func TestSitemapShapes(t *testing.T) {
	var set urlSet
	if err := xml.Unmarshal([]byte(`<urlset><url><loc>https://example.com/research/a</loc></url></urlset>`), &set); err != nil {
		t.Fatalf("decode urlset: %v", err)
	}
	if len(set.URLs) != 1 || set.URLs[0].Loc != "https://example.com/research/a" {
		t.Errorf("unexpected urlset: %+v", set)
	}

	var index sitemapIndex
	if err := xml.Unmarshal([]byte(`<sitemapindex><sitemap><loc>https://example.com/sitemap-posts.xml</loc></sitemap></sitemapindex>`), &index); err != nil {
		t.Fatalf("decode index: %v", err)
	}
	if len(index.Sitemaps) != 1 {
		t.Errorf("unexpected index: %+v", index)
	}
}
