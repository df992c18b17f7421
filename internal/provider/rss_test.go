package provider

import (
	"context"
	"net/http"
	"testing"
	"time"

	"terminalcoin/internal/apierr"
	"terminalcoin/pkg/logger"

	"go.opentelemetry.io/otel/trace"
)

func newTestFeedClient(t *testing.T, rt roundTripFunc) *FeedClient {
	t.Helper()
	c, err := NewFeedClient(time.Second, "terminalcoin/2.0", trace.NewNoopTracerProvider().Tracer("test"), logger.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.client = &http.Client{Transport: rt}
	return c
}

func TestFetchFeedRSS(t *testing.T) {
	xmlBody := `<?xml version="1.0"?><rss version="2.0"><channel><title>Example Feed</title>` +
		`<item><title>ETH adoption rises</title><link>https://news.example/eth</link>` +
		`<description><![CDATA[<p>Ethereum growth continues</p>]]></description>` +
		`<pubDate>Fri, 13 Feb 2026 10:00:00 +0000</pubDate></item>` +
		`<item><title>Old story</title><link>https://news.example/old</link>` +
		`<description>Plain text</description><pubDate>Thu, 12 Feb 2026 10:00:00 +0000</pubDate></item>` +
		`</channel></rss>`

	c := newTestFeedClient(t, func(req *http.Request) (*http.Response, error) {
		if req.Header.Get("User-Agent") != "terminalcoin/2.0" {
			t.Fatal("expected identifying user agent")
		}
		return jsonResponse(http.StatusOK, xmlBody), nil
	})

	entries, err := c.FetchFeed(context.Background(), "https://news.example/rss")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Summary != "Ethereum growth continues" {
		t.Fatalf("expected html stripped summary, got %q", entries[0].Summary)
	}
	want := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)
	if !entries[0].PublishedAt.Equal(want) {
		t.Fatalf("unexpected publish time: %v", entries[0].PublishedAt)
	}
}

func TestFetchFeedAtom(t *testing.T) {
	xmlBody := `<?xml version="1.0"?><feed xmlns="http://www.w3.org/2005/Atom">` +
		`<title>Atom Feed</title>` +
		`<entry><title>SOL rallies</title>` +
		`<link rel="alternate" href="https://news.example/sol"/>` +
		`<summary>Solana surges on volume</summary>` +
		`<published>2026-02-13T09:30:00Z</published></entry>` +
		`</feed>`

	c := newTestFeedClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, xmlBody), nil
	})

	entries, err := c.FetchFeed(context.Background(), "https://news.example/atom")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Link != "https://news.example/sol" {
		t.Fatalf("unexpected link: %q", entries[0].Link)
	}
	if entries[0].PublishedAt != time.Date(2026, 2, 13, 9, 30, 0, 0, time.UTC) {
		t.Fatalf("unexpected publish time: %v", entries[0].PublishedAt)
	}
}

func TestFetchFeedMalformedXMLIsParsingError(t *testing.T) {
	c := newTestFeedClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `<rss><channel><item><title>broken`), nil
	})

	_, err := c.FetchFeed(context.Background(), "https://news.example/rss")
	if !apierr.IsKind(err, apierr.KindParsing) {
		t.Fatalf("expected parsing error, got %v", err)
	}
}

func TestFetchFeedHTTPErrorStatus(t *testing.T) {
	c := newTestFeedClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusServiceUnavailable, "maintenance"), nil
	})

	_, err := c.FetchFeed(context.Background(), "https://news.example/rss")
	if !apierr.IsKind(err, apierr.KindAPI) {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestParseFeedDateFallback(t *testing.T) {
	fetchedAt := time.Date(2026, 2, 13, 12, 0, 0, 0, time.UTC)
	body := []byte(`<rss><channel><item><title>No date</title><link>https://x.example/a</link>` +
		`<pubDate>not a date</pubDate></item></channel></rss>`)

	entries, err := parseFeed(body, fetchedAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !entries[0].PublishedAt.Equal(fetchedAt) {
		t.Fatalf("unparseable dates should fall back to fetch time, got %v", entries[0].PublishedAt)
	}
}

func TestParseFeedEmptyChannel(t *testing.T) {
	entries, err := parseFeed([]byte(`<rss version="2.0"><channel><title>Quiet</title></channel></rss>`), time.Now())
	if err != nil {
		t.Fatalf("an empty channel is not an error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestParseFeedUnsupportedRoot(t *testing.T) {
	if _, err := parseFeed([]byte(`<html><body>not a feed</body></html>`), time.Now()); err == nil {
		t.Fatal("expected error for non-feed document")
	}
}

func TestHTMLStrip(t *testing.T) {
	got := htmlStrip(`<p>BTC <b>up</b> today</p>`)
	if got != "BTC up today" {
		t.Fatalf("unexpected strip result: %q", got)
	}
	if htmlStrip("") != "" {
		t.Fatal("empty input should stay empty")
	}
}
