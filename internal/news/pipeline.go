package news

import (
	"context"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"terminalcoin/internal/domain"
	"terminalcoin/internal/metrics"
	"terminalcoin/internal/provider"
	"terminalcoin/pkg/logger"
)

// FeedFetcher pulls raw entries from one feed URL.
type FeedFetcher interface {
	FetchFeed(ctx context.Context, feedURL string) ([]provider.FeedEntry, error)
}

// Source names one feed to ingest.
type Source struct {
	Name string
	URL  string
}

const defaultMaxPerSource = 10

// Pipeline turns raw feed entries into sanitized, scored news records.
// A failing source degrades to zero records from that source; the other
// sources still contribute.
type Pipeline struct {
	fetcher      FeedFetcher
	extractor    *AssetExtractor
	scorer       Scorer
	overlay      BatchScorer
	maxPerSource int
	tracer       trace.Tracer
	log          *logger.Logger
	metrics      *metrics.Metrics
}

type PipelineOption func(*Pipeline)

func WithMaxPerSource(n int) PipelineOption {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxPerSource = n
		}
	}
}

// WithOverlay re-scores records with an LLM after lexicon scoring.
// Overlay failures are logged and ignored.
func WithOverlay(overlay BatchScorer) PipelineOption {
	return func(p *Pipeline) { p.overlay = overlay }
}

func WithPipelineMetrics(m *metrics.Metrics) PipelineOption {
	return func(p *Pipeline) { p.metrics = m }
}

func NewPipeline(fetcher FeedFetcher, extractor *AssetExtractor, scorer Scorer, tracer trace.Tracer, log *logger.Logger, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		fetcher:      fetcher,
		extractor:    extractor,
		scorer:       scorer,
		maxPerSource: defaultMaxPerSource,
		tracer:       tracer,
		log:          log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ingest fetches every source, sanitizes and scores what parses, and
// returns the merged records newest first. It only errors when the
// context is done; source failures are absorbed.
func (p *Pipeline) Ingest(ctx context.Context, sources []Source) ([]domain.NewsRecord, error) {
	ctx, span := p.tracer.Start(ctx, "news.ingest")
	defer span.End()

	records := make([]domain.NewsRecord, 0, len(sources)*p.maxPerSource)
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entries, err := p.fetcher.FetchFeed(ctx, src.URL)
		if err != nil {
			p.log.Warnw("feed source failed", "source", src.Name, "url", src.URL, "error", err)
			p.metrics.FeedFailure(src.Name)
			continue
		}
		records = append(records, p.convert(src.Name, entries)...)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].PublishedAt.After(records[j].PublishedAt)
	})

	p.applyOverlay(ctx, records)

	span.SetAttributes(attribute.Int("news.records", len(records)))
	return records, nil
}

func (p *Pipeline) convert(source string, entries []provider.FeedEntry) []domain.NewsRecord {
	out := make([]domain.NewsRecord, 0, len(entries))
	for _, entry := range entries {
		if len(out) >= p.maxPerSource {
			break
		}
		title := Sanitize(entry.Title)
		if title == "" {
			p.metrics.DropRecord("empty_title")
			continue
		}
		link := strings.TrimSpace(entry.Link)
		if !validLink(link) {
			p.log.Debugw("dropping entry with unsafe link", "source", source, "link", link)
			p.metrics.DropRecord("invalid_link")
			continue
		}
		summary := Truncate(Sanitize(entry.Summary), 280)
		sentiment, confidence := p.scorer.Score(title, summary)
		out = append(out, domain.NewsRecord{
			Source:      source,
			Title:       title,
			Link:        link,
			Summary:     summary,
			PublishedAt: entry.PublishedAt,
			Sentiment:   sentiment,
			Confidence:  confidence,
			Assets:      p.extractor.Extract(title + " " + summary),
		})
	}
	return out
}

func (p *Pipeline) applyOverlay(ctx context.Context, records []domain.NewsRecord) {
	if p.overlay == nil || len(records) == 0 {
		return
	}
	scored, err := p.overlay.ScoreBatch(ctx, records)
	if err != nil {
		p.log.Warnw("sentiment overlay failed, keeping lexicon labels", "error", err)
		return
	}
	for _, row := range scored {
		records[row.Index].Sentiment = NormalizeLabel(row.Label)
		records[row.Index].Confidence = row.Confidence
	}
}

// validLink accepts absolute http(s) URLs and fragment links, which
// some feeds emit for entries without a canonical page.
func validLink(link string) bool {
	return strings.HasPrefix(link, "http://") ||
		strings.HasPrefix(link, "https://") ||
		strings.HasPrefix(link, "#")
}
