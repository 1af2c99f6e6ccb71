package acquire

import (
	"strings"
	"testing"

	"github.com/pkozlov/agiwatch/internal/model"
)

const listingHTML = `<html><body>
<article>
  <h2>New model posts large benchmark gains</h2>
  <p>` + filler + ` Published 2025-01-15.</p>
  <a href="/research/big-gains">Read more</a>
</article>
<article>
  <h2>数理推論ベンチマークで大幅な改善を報告</h2>
  <p>` + filler + ` 2025年1月16日公開。</p>
  <a href="https://example.com/research/cjk-post">続きを読む</a>
</article>
<div>
  <a href="/short">tiny</a>
</div>
<article>
  <h2>New model posts large benchmark gains</h2>
  <p>` + filler + `</p>
  <a href="/research/big-gains">Duplicate link</a>
</article>
</body></html>`

const filler = "This block carries enough running text to clear the scanner's minimum length requirement for candidate articles."

func TestScanDocuments_FindsArticleBlocks(t *testing.T) {
	chain := testChain(t, nil)
	src := model.Source{Name: "lab", URL: "https://example.com", AutoDiscover: true}

	docs, err := chain.scanDocuments(src, listingHTML)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("expected 2 documents (dedup by URL, short block dropped), got %d", len(docs))
	}

	first := docs[0]
	if first.URL != "https://example.com/research/big-gains" {
		t.Errorf("unexpected URL: %s", first.URL)
	}
	if !strings.Contains(first.Title, "benchmark gains") {
		t.Errorf("unexpected title: %q", first.Title)
	}
	if first.PublishedAt == nil || first.PublishedAt.Year() != 2025 {
		t.Errorf("expected Gregorian date parsed, got %v", first.PublishedAt)
	}

	second := docs[1]
	if second.PublishedAt == nil || second.PublishedAt.Month() != 1 || second.PublishedAt.Day() != 16 {
		t.Errorf("expected CJK date parsed, got %v", second.PublishedAt)
	}
}

func TestScanDocuments_CapsResults(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Crawl.MaxScanArticles = 3
	chain := testChain(t, cfg)

	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 0; i < 10; i++ {
		sb.WriteString(`<article><h2>Numbered article headline `)
		sb.WriteString(strings.Repeat("x", i+1))
		sb.WriteString(`</h2><p>` + filler + `</p><a href="/post/`)
		sb.WriteString(strings.Repeat("a", i+1))
		sb.WriteString(`">link</a></article>`)
	}
	sb.WriteString("</body></html>")

	docs, err := chain.scanDocuments(model.Source{Name: "lab", URL: "https://example.com"}, sb.String())
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(docs) != 3 {
		t.Errorf("expected cap at 3, got %d", len(docs))
	}
}

func TestScanDocuments_DropsUnsafeLinks(t *testing.T) {
	chain := testChain(t, nil)

	html := `<html><body><article>
		<h2>Internal dashboard weekly report</h2>
		<p>` + filler + `</p>
		<a href="http://169.254.169.254/latest/">metadata</a>
	</article></body></html>`

	docs, err := chain.scanDocuments(model.Source{Name: "lab", URL: "https://example.com"}, html)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected unsafe link to be dropped, got %d docs", len(docs))
	}
}

func TestParseBlockDate(t *testing.T) {
	cases := map[string]bool{
		"Published on 2024-03-07 by the team": true,
		"公開日:2024年3月7日":                      true,
		"no date in this text at all":        false,
	}

	for text, want := range cases {
		got := parseBlockDate(text)
		if (got != nil) != want {
			t.Errorf("parseBlockDate(%q) = %v, want present=%v", text, got, want)
		}
	}
}
