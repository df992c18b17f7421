package news

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"

	"terminalcoin/internal/domain"
	"terminalcoin/internal/provider"
	"terminalcoin/pkg/logger"
)

type stubFetcher struct {
	feeds map[string][]provider.FeedEntry
	errs  map[string]error
}

func (s stubFetcher) FetchFeed(ctx context.Context, feedURL string) ([]provider.FeedEntry, error) {
	if err, ok := s.errs[feedURL]; ok {
		return nil, err
	}
	return s.feeds[feedURL], nil
}

func newTestPipeline(fetcher FeedFetcher, opts ...PipelineOption) *Pipeline {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	return NewPipeline(fetcher, NewAssetExtractor(domain.KeywordSymbols), NewLexiconScorer(), tracer, logger.Nop(), opts...)
}

func at(hour int) time.Time {
	return time.Date(2026, time.March, 1, hour, 0, 0, 0, time.UTC)
}

func TestIngestMergesNewestFirst(t *testing.T) {
	fetcher := stubFetcher{feeds: map[string][]provider.FeedEntry{
		"https://a.example/rss": {
			{Title: "Bitcoin rally extends", Link: "https://a.example/1", PublishedAt: at(9)},
			{Title: "Solana outage resolved", Link: "https://a.example/2", PublishedAt: at(11)},
		},
		"https://b.example/rss": {
			{Title: "Ethereum upgrade ships", Link: "https://b.example/1", PublishedAt: at(10)},
		},
	}}
	p := newTestPipeline(fetcher)

	got, err := p.Ingest(context.Background(), []Source{
		{Name: "FeedA", URL: "https://a.example/rss"},
		{Name: "FeedB", URL: "https://b.example/rss"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if got[0].Title != "Solana outage resolved" || got[1].Title != "Ethereum upgrade ships" || got[2].Title != "Bitcoin rally extends" {
		t.Fatalf("wrong order: %q, %q, %q", got[0].Title, got[1].Title, got[2].Title)
	}
	if got[0].Source != "FeedA" || got[1].Source != "FeedB" {
		t.Fatalf("wrong sources: %s, %s", got[0].Source, got[1].Source)
	}
}

func TestIngestDegradesPerSource(t *testing.T) {
	fetcher := stubFetcher{
		feeds: map[string][]provider.FeedEntry{
			"https://ok.example/rss": {
				{Title: "Cardano adoption grows", Link: "https://ok.example/1", PublishedAt: at(8)},
			},
		},
		errs: map[string]error{"https://down.example/rss": errors.New("503")},
	}
	p := newTestPipeline(fetcher)

	got, err := p.Ingest(context.Background(), []Source{
		{Name: "Down", URL: "https://down.example/rss"},
		{Name: "OK", URL: "https://ok.example/rss"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Source != "OK" {
		t.Fatalf("expected 1 record from surviving source, got %+v", got)
	}
}

func TestIngestAllSourcesFailing(t *testing.T) {
	fetcher := stubFetcher{errs: map[string]error{"https://down.example/rss": errors.New("boom")}}
	p := newTestPipeline(fetcher)

	got, err := p.Ingest(context.Background(), []Source{{Name: "Down", URL: "https://down.example/rss"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no records, got %d", len(got))
	}
}

func TestIngestSanitizesAndScores(t *testing.T) {
	fetcher := stubFetcher{feeds: map[string][]provider.FeedEntry{
		"https://a.example/rss": {
			{Title: "Bitcoin\x07 surge\n\ncontinues", Link: "https://a.example/1", Summary: "ETH traders pile in", PublishedAt: at(9)},
		},
	}}
	p := newTestPipeline(fetcher)

	got, err := p.Ingest(context.Background(), []Source{{Name: "A", URL: "https://a.example/rss"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := got[0]
	if rec.Title != "Bitcoin surge continues" {
		t.Fatalf("title not sanitized: %q", rec.Title)
	}
	if rec.Sentiment != domain.SentimentBullish {
		t.Fatalf("expected bullish, got %s", rec.Sentiment)
	}
	wantAssets := []string{"BTC", "ETH"}
	if len(rec.Assets) != 2 || rec.Assets[0] != wantAssets[0] || rec.Assets[1] != wantAssets[1] {
		t.Fatalf("assets = %v, want %v", rec.Assets, wantAssets)
	}
}

func TestIngestLinkValidation(t *testing.T) {
	fetcher := stubFetcher{feeds: map[string][]provider.FeedEntry{
		"https://a.example/rss": {
			{Title: "Good https", Link: "https://a.example/1", PublishedAt: at(9)},
			{Title: "Good http", Link: "http://a.example/2", PublishedAt: at(8)},
			{Title: "Placeholder", Link: "#", PublishedAt: at(7)},
			{Title: "Fragment", Link: "#more", PublishedAt: at(6)},
			{Title: "Script link", Link: "javascript:alert(1)", PublishedAt: at(5)},
			{Title: "Relative", Link: "/articles/3", PublishedAt: at(4)},
			{Title: "Empty", Link: "", PublishedAt: at(3)},
		},
	}}
	p := newTestPipeline(fetcher)

	got, err := p.Ingest(context.Background(), []Source{{Name: "A", URL: "https://a.example/rss"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 surviving records, got %d", len(got))
	}
	for _, rec := range got {
		if rec.Link[0] != '#' && rec.Link[:4] != "http" {
			t.Fatalf("unsafe link survived: %q", rec.Link)
		}
	}
}

func TestIngestKeepsFragmentLinks(t *testing.T) {
	fetcher := stubFetcher{feeds: map[string][]provider.FeedEntry{
		"https://a.example/rss": {
			{Title: "Story without canonical page", Link: "#more", PublishedAt: at(9)},
		},
	}}
	p := newTestPipeline(fetcher)

	got, err := p.Ingest(context.Background(), []Source{{Name: "A", URL: "https://a.example/rss"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected fragment link to survive, got %d records", len(got))
	}
	if got[0].Link != "#more" {
		t.Fatalf("got link %q", got[0].Link)
	}
}

func TestIngestMaxPerSource(t *testing.T) {
	entries := make([]provider.FeedEntry, 6)
	for i := range entries {
		entries[i] = provider.FeedEntry{Title: "Entry", Link: "https://a.example/x", PublishedAt: at(i + 1)}
	}
	fetcher := stubFetcher{feeds: map[string][]provider.FeedEntry{"https://a.example/rss": entries}}
	p := newTestPipeline(fetcher, WithMaxPerSource(2))

	got, err := p.Ingest(context.Background(), []Source{{Name: "A", URL: "https://a.example/rss"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
}

type stubOverlay struct {
	scores []BatchScore
	err    error
}

func (s stubOverlay) ScoreBatch(ctx context.Context, records []domain.NewsRecord) ([]BatchScore, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.scores, nil
}

func TestIngestOverlayOverrides(t *testing.T) {
	fetcher := stubFetcher{feeds: map[string][]provider.FeedEntry{
		"https://a.example/rss": {
			{Title: "Quiet market update", Link: "https://a.example/1", PublishedAt: at(9)},
		},
	}}
	p := newTestPipeline(fetcher, WithOverlay(stubOverlay{scores: []BatchScore{{Index: 0, Label: "bearish", Confidence: 0.9}}}))

	got, err := p.Ingest(context.Background(), []Source{{Name: "A", URL: "https://a.example/rss"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Sentiment != domain.SentimentBearish || got[0].Confidence != 0.9 {
		t.Fatalf("overlay not applied: %+v", got[0])
	}
}

func TestIngestOverlayFailureKeepsLexicon(t *testing.T) {
	fetcher := stubFetcher{feeds: map[string][]provider.FeedEntry{
		"https://a.example/rss": {
			{Title: "Bitcoin rally continues", Link: "https://a.example/1", PublishedAt: at(9)},
		},
	}}
	p := newTestPipeline(fetcher, WithOverlay(stubOverlay{err: errors.New("quota")}))

	got, err := p.Ingest(context.Background(), []Source{{Name: "A", URL: "https://a.example/rss"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Sentiment != domain.SentimentBullish {
		t.Fatalf("expected lexicon label preserved, got %s", got[0].Sentiment)
	}
}
