package provider

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"terminalcoin/internal/apierr"
	"terminalcoin/pkg/logger"

	"go.opentelemetry.io/otel/trace"
)

// FeedEntry is one raw item out of an RSS or Atom document. Text fields
// are untrusted at this point; the ingestion pipeline sanitizes and
// validates them.
type FeedEntry struct {
	Title       string
	Link        string
	Summary     string
	PublishedAt time.Time
}

// FeedClient fetches and parses RSS 2.0 and Atom feeds. Feed hosts are
// independent of the market-data upstream, so no shared rate limiter is
// involved; each call is bounded by the client timeout.
type FeedClient struct {
	client    *http.Client
	userAgent string
	tracer    trace.Tracer
	log       *logger.Logger
}

func NewFeedClient(timeout time.Duration, userAgent string, tracer trace.Tracer, log *logger.Logger) (*FeedClient, error) {
	if timeout <= 0 {
		return nil, apierr.New(apierr.KindConfiguration, "feedclient.new", "timeout must be positive, got %s", timeout)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &FeedClient{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		tracer:    tracer,
		log:       log,
	}, nil
}

type rssDocument struct {
	Channel struct {
		Title string `xml:"title"`
		Items []struct {
			Title       string `xml:"title"`
			Link        string `xml:"link"`
			Description string `xml:"description"`
			PubDate     string `xml:"pubDate"`
		} `xml:"item"`
	} `xml:"channel"`
}

type atomDocument struct {
	XMLName xml.Name `xml:"feed"`
	Title   string   `xml:"title"`
	Entries []struct {
		Title string `xml:"title"`
		Links []struct {
			Rel  string `xml:"rel,attr"`
			Href string `xml:"href,attr"`
		} `xml:"link"`
		Summary   string `xml:"summary"`
		Content   string `xml:"content"`
		Published string `xml:"published"`
		Updated   string `xml:"updated"`
	} `xml:"entry"`
}

// FetchFeed downloads one feed URL and parses it into raw entries.
func (c *FeedClient) FetchFeed(ctx context.Context, feedURL string) ([]FeedEntry, error) {
	ctx, span := c.tracer.Start(ctx, "feed.fetch")
	defer span.End()

	feedURL = strings.TrimSpace(feedURL)
	if feedURL == "" {
		return nil, apierr.New(apierr.KindValidation, "feed.fetch", "feed url is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindValidation, "feed.fetch", err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindNetwork, "feed.fetch", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &apierr.Error{
			Kind:       apierr.KindAPI,
			Op:         "feed.fetch",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("feed fetch error: %s", strings.TrimSpace(string(body))),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindNetwork, "feed.fetch", err)
	}

	entries, err := parseFeed(body, time.Now().UTC())
	if err != nil {
		return nil, apierr.Wrap(apierr.KindParsing, "feed.fetch", err)
	}
	c.log.Debugw("fetched feed", "url", feedURL, "entries", len(entries))
	return entries, nil
}

// parseFeed dispatches on the document's root element: <rss> (or RDF)
// parses as RSS, <feed> as Atom. Entries with no parseable publish date
// fall back to fetchedAt so newest-first ordering stays total.
func parseFeed(body []byte, fetchedAt time.Time) ([]FeedEntry, error) {
	root, err := rootElement(body)
	if err != nil {
		return nil, fmt.Errorf("decode feed payload: %w", err)
	}

	switch root {
	case "rss", "RDF":
		var rss rssDocument
		if err := xml.Unmarshal(body, &rss); err != nil {
			return nil, fmt.Errorf("decode rss payload: %w", err)
		}
		entries := make([]FeedEntry, 0, len(rss.Channel.Items))
		for _, item := range rss.Channel.Items {
			published := parseFeedDate(item.PubDate)
			if published.IsZero() {
				published = fetchedAt
			}
			entries = append(entries, FeedEntry{
				Title:       item.Title,
				Link:        strings.TrimSpace(item.Link),
				Summary:     htmlStrip(item.Description),
				PublishedAt: published,
			})
		}
		return entries, nil

	case "feed":
		var atom atomDocument
		if err := xml.Unmarshal(body, &atom); err != nil {
			return nil, fmt.Errorf("decode atom payload: %w", err)
		}
		entries := make([]FeedEntry, 0, len(atom.Entries))
		for _, entry := range atom.Entries {
			published := parseFeedDate(entry.Published)
			if published.IsZero() {
				published = parseFeedDate(entry.Updated)
			}
			if published.IsZero() {
				published = fetchedAt
			}
			summary := entry.Summary
			if strings.TrimSpace(summary) == "" {
				summary = entry.Content
			}
			entries = append(entries, FeedEntry{
				Title:       entry.Title,
				Link:        atomEntryLink(entry.Links),
				Summary:     htmlStrip(summary),
				PublishedAt: published,
			})
		}
		return entries, nil

	default:
		return nil, fmt.Errorf("unsupported feed root element %q", root)
	}
}

func rootElement(body []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := decoder.Token()
		if err != nil {
			return "", err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}

func atomEntryLink(links []struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}) string {
	for _, l := range links {
		if l.Rel == "" || l.Rel == "alternate" {
			return strings.TrimSpace(l.Href)
		}
	}
	if len(links) > 0 {
		return strings.TrimSpace(links[0].Href)
	}
	return ""
}

func parseFeedDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	layouts := []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822, time.RFC3339}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// htmlStrip removes markup tags from feed descriptions, which routinely
// embed HTML inside CDATA.
func htmlStrip(in string) string {
	if strings.TrimSpace(in) == "" {
		return ""
	}
	var b strings.Builder
	inside := false
	for _, r := range in {
		switch r {
		case '<':
			inside = true
			continue
		case '>':
			inside = false
			continue
		}
		if !inside {
			b.WriteRune(r)
		}
	}
	return b.String()
}
