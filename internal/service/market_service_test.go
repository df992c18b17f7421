package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"

	"terminalcoin/internal/cache"
	"terminalcoin/internal/domain"
	"terminalcoin/pkg/logger"
)

type stubFetcher struct {
	markets     []domain.CoinMarketRecord
	marketsErr  error
	detail      *domain.CoinMarketRecord
	detailErr   error
	marketCalls int
	detailCalls int
}

func (s *stubFetcher) ListMarkets(ctx context.Context, limit int, currency string) ([]domain.CoinMarketRecord, error) {
	s.marketCalls++
	return s.markets, s.marketsErr
}

func (s *stubFetcher) GetCoinDetail(ctx context.Context, id string) (*domain.CoinMarketRecord, error) {
	s.detailCalls++
	return s.detail, s.detailErr
}

func newTestService(fetcher *stubFetcher, store cache.Store) *MarketService {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	return NewMarketService(tracer, fetcher, store, time.Minute, 50, "usd", logger.Nop())
}

func TestMarketsCachesFetch(t *testing.T) {
	fetcher := &stubFetcher{markets: []domain.CoinMarketRecord{{ID: "bitcoin", Symbol: "BTC", PriceUSD: 65000}}}
	svc := newTestService(fetcher, cache.NewMemory())
	ctx := context.Background()

	first, err := svc.Markets(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Markets(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetcher.marketCalls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", fetcher.marketCalls)
	}
	if len(first) != 1 || len(second) != 1 || second[0].ID != "bitcoin" {
		t.Fatalf("wrong records: %+v / %+v", first, second)
	}
}

func TestMarketsWithoutCache(t *testing.T) {
	fetcher := &stubFetcher{markets: []domain.CoinMarketRecord{{ID: "ethereum"}}}
	svc := newTestService(fetcher, nil)
	ctx := context.Background()

	if _, err := svc.Markets(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Markets(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetcher.marketCalls != 2 {
		t.Fatalf("expected 2 upstream calls without cache, got %d", fetcher.marketCalls)
	}
}

func TestMarketsPropagatesFetchError(t *testing.T) {
	fetcher := &stubFetcher{marketsErr: errors.New("rate limited")}
	svc := newTestService(fetcher, cache.NewMemory())

	if _, err := svc.Markets(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

type failingStore struct{}

func (failingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, errors.New("backend down")
}

func (failingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.New("backend down")
}

func TestMarketsSurvivesCacheFailure(t *testing.T) {
	fetcher := &stubFetcher{markets: []domain.CoinMarketRecord{{ID: "solana"}}}
	svc := newTestService(fetcher, failingStore{})

	got, err := svc.Markets(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "solana" {
		t.Fatalf("got %+v", got)
	}
}

func TestCoinDetailCachesFetch(t *testing.T) {
	fetcher := &stubFetcher{detail: &domain.CoinMarketRecord{ID: "cardano", Symbol: "ADA", PriceUSD: 0.5}}
	svc := newTestService(fetcher, cache.NewMemory())
	ctx := context.Background()

	first, err := svc.CoinDetail(ctx, "cardano")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.CoinDetail(ctx, "cardano")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetcher.detailCalls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", fetcher.detailCalls)
	}
	if first.ID != "cardano" || second.ID != "cardano" {
		t.Fatalf("wrong records: %+v / %+v", first, second)
	}
}

func TestCoinDetailPropagatesError(t *testing.T) {
	fetcher := &stubFetcher{detailErr: errors.New("not found")}
	svc := newTestService(fetcher, cache.NewMemory())

	if _, err := svc.CoinDetail(context.Background(), "nope"); err == nil {
		t.Fatal("expected error")
	}
}
