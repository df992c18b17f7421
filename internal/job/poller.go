// Package job runs the background refresh loop feeding the dashboard.
package job

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"

	"terminalcoin/internal/domain"
	"terminalcoin/internal/news"
	"terminalcoin/pkg/logger"
)

// MarketLister provides the market table for one refresh cycle.
type MarketLister interface {
	Markets(ctx context.Context) ([]domain.CoinMarketRecord, error)
}

// NewsFetcher provides scored news records for one refresh cycle.
type NewsFetcher interface {
	Ingest(ctx context.Context, sources []news.Source) ([]domain.NewsRecord, error)
}

// Sink receives refresh results. Implementations must be safe to call
// from the poller goroutines.
type Sink interface {
	MarketUpdate(update MarketUpdate)
	NewsUpdate(update NewsUpdate)
}

// MarketUpdate is one cycle's market fetch outcome. Err is set when the
// fetch failed terminally; Records is then nil.
type MarketUpdate struct {
	Cycle   uint64
	Records []domain.CoinMarketRecord
	Err     error
	At      time.Time
}

// NewsUpdate is one cycle's news ingest outcome.
type NewsUpdate struct {
	Cycle   uint64
	Records []domain.NewsRecord
	Err     error
	At      time.Time
}

// Poller refreshes markets and news on a fixed interval, plus on demand
// via Refresh. Each cycle gets a monotonic number so slow results from
// an old cycle never overwrite a newer one.
type Poller struct {
	tracer   trace.Tracer
	markets  MarketLister
	news     NewsFetcher
	sources  []news.Source
	sink     Sink
	interval time.Duration
	log      *logger.Logger

	cycle uint64
	kick  chan struct{}
}

func NewPoller(tracer trace.Tracer, markets MarketLister, newsFetcher NewsFetcher, sources []news.Source, sink Sink, interval time.Duration, log *logger.Logger) *Poller {
	return &Poller{
		tracer:   tracer,
		markets:  markets,
		news:     newsFetcher,
		sources:  sources,
		sink:     sink,
		interval: interval,
		log:      log,
		kick:     make(chan struct{}, 1),
	}
}

// Refresh requests an immediate cycle. Coalesces when one is already
// pending.
func (p *Poller) Refresh() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Start blocks until ctx is cancelled. The first cycle runs
// immediately.
func (p *Poller) Start(ctx context.Context) {
	p.log.Infow("poller starting", "interval", p.interval)

	p.runCycle(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Infow("poller stopped")
			return
		case <-ticker.C:
			p.runCycle(ctx)
		case <-p.kick:
			p.runCycle(ctx)
			ticker.Reset(p.interval)
		}
	}
}

func (p *Poller) runCycle(ctx context.Context) {
	cycle := atomic.AddUint64(&p.cycle, 1)
	ctx, span := p.tracer.Start(ctx, "poller.cycle")

	var pending atomic.Int32
	pending.Store(2)
	finish := func() {
		if pending.Add(-1) == 0 {
			span.End()
		}
	}

	go func() {
		defer finish()
		records, err := p.markets.Markets(ctx)
		if err != nil {
			p.log.Warnw("market refresh failed", "cycle", cycle, "error", err)
		}
		p.deliverMarkets(MarketUpdate{Cycle: cycle, Records: records, Err: err, At: time.Now()})
	}()

	go func() {
		defer finish()
		records, err := p.news.Ingest(ctx, p.sources)
		if err != nil {
			p.log.Warnw("news refresh failed", "cycle", cycle, "error", err)
		}
		p.deliverNews(NewsUpdate{Cycle: cycle, Records: records, Err: err, At: time.Now()})
	}()
}

// deliverMarkets drops results from superseded cycles.
func (p *Poller) deliverMarkets(update MarketUpdate) {
	if latest := atomic.LoadUint64(&p.cycle); update.Cycle < latest {
		p.log.Debugw("discarding stale market update", "cycle", update.Cycle, "latest", latest)
		return
	}
	p.sink.MarketUpdate(update)
}

func (p *Poller) deliverNews(update NewsUpdate) {
	if latest := atomic.LoadUint64(&p.cycle); update.Cycle < latest {
		p.log.Debugw("discarding stale news update", "cycle", update.Cycle, "latest", latest)
		return
	}
	p.sink.NewsUpdate(update)
}
