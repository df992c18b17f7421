package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"terminalcoin/internal/cache"
	"terminalcoin/internal/domain"
	"terminalcoin/pkg/logger"
)

// MarketFetcher pulls live market data from the upstream API.
type MarketFetcher interface {
	ListMarkets(ctx context.Context, limit int, currency string) ([]domain.CoinMarketRecord, error)
	GetCoinDetail(ctx context.Context, id string) (*domain.CoinMarketRecord, error)
}

// MarketService fronts the fetcher with a TTL cache so dashboard
// refreshes do not burn API budget on unchanged data.
type MarketService struct {
	tracer   trace.Tracer
	fetcher  MarketFetcher
	store    cache.Store
	ttl      time.Duration
	limit    int
	currency string
	log      *logger.Logger
}

func NewMarketService(tracer trace.Tracer, fetcher MarketFetcher, store cache.Store, ttl time.Duration, limit int, currency string, log *logger.Logger) *MarketService {
	return &MarketService{
		tracer:   tracer,
		fetcher:  fetcher,
		store:    store,
		ttl:      ttl,
		limit:    limit,
		currency: currency,
		log:      log,
	}
}

func (s *MarketService) marketsKey() string {
	return fmt.Sprintf("markets:%s:%d", s.currency, s.limit)
}

// Markets returns the current market table, cached. Cache backend
// errors degrade to a live fetch.
func (s *MarketService) Markets(ctx context.Context) ([]domain.CoinMarketRecord, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.markets")
	defer span.End()

	key := s.marketsKey()
	if s.store != nil {
		raw, ok, err := s.store.Get(ctx, key)
		if err != nil {
			s.log.Warnw("cache read failed", "key", key, "error", err)
		}
		if ok {
			var records []domain.CoinMarketRecord
			if err := json.Unmarshal(raw, &records); err == nil {
				return records, nil
			}
			s.log.Warnw("cache entry corrupt, refetching", "key", key)
		}
	}

	records, err := s.fetcher.ListMarkets(ctx, s.limit, s.currency)
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if raw, err := json.Marshal(records); err == nil {
			if err := s.store.Set(ctx, key, raw, s.ttl); err != nil {
				s.log.Warnw("cache write failed", "key", key, "error", err)
			}
		}
	}
	return records, nil
}

// CoinDetail returns one coin by its upstream ID, cached.
func (s *MarketService) CoinDetail(ctx context.Context, id string) (*domain.CoinMarketRecord, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.coin-detail")
	defer span.End()

	key := "coin:" + id
	if s.store != nil {
		raw, ok, err := s.store.Get(ctx, key)
		if err != nil {
			s.log.Warnw("cache read failed", "key", key, "error", err)
		}
		if ok {
			var record domain.CoinMarketRecord
			if err := json.Unmarshal(raw, &record); err == nil {
				return &record, nil
			}
			s.log.Warnw("cache entry corrupt, refetching", "key", key)
		}
	}

	record, err := s.fetcher.GetCoinDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if raw, err := json.Marshal(record); err == nil {
			if err := s.store.Set(ctx, key, raw, s.ttl); err != nil {
				s.log.Warnw("cache write failed", "key", key, "error", err)
			}
		}
	}
	return record, nil
}
