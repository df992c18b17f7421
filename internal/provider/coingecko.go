package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"terminalcoin/internal/apierr"
	"terminalcoin/internal/domain"
	"terminalcoin/internal/metrics"
	"terminalcoin/pkg/logger"

	"go.opentelemetry.io/otel/trace"
)

const maxCoinsLimit = 250

var coinIDRx = regexp.MustCompile(`^[a-z0-9-]+$`)

// CoinGeckoClient fetches market listings and per-coin detail through a
// resilient HTTP client, coercing the untrusted upstream JSON into
// validated records.
//
// Coercion policy: current_price is reject-on-invalid (missing or <= 0
// drops the record); every other numeric field defaults to zero and a
// missing sparkline to an empty series.
type CoinGeckoClient struct {
	http    *HTTPClient
	tracer  trace.Tracer
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewCoinGeckoClient(httpClient *HTTPClient, tracer trace.Tracer, log *logger.Logger, m *metrics.Metrics) *CoinGeckoClient {
	if log == nil {
		log = logger.Nop()
	}
	return &CoinGeckoClient{http: httpClient, tracer: tracer, log: log, metrics: m}
}

type coinMarketRow struct {
	ID            string   `json:"id"`
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	CurrentPrice  *float64 `json:"current_price"`
	MarketCapRank *int     `json:"market_cap_rank"`
	MarketCap     *float64 `json:"market_cap"`
	High24h       *float64 `json:"high_24h"`
	Low24h        *float64 `json:"low_24h"`
	Change24hPct  *float64 `json:"price_change_percentage_24h"`
	Sparkline     *struct {
		Price []float64 `json:"price"`
	} `json:"sparkline_in_7d"`
}

func (r coinMarketRow) toRecord() (domain.CoinMarketRecord, error) {
	if strings.TrimSpace(r.ID) == "" {
		return domain.CoinMarketRecord{}, fmt.Errorf("missing id")
	}
	if r.CurrentPrice == nil {
		return domain.CoinMarketRecord{}, fmt.Errorf("coin %s: missing current_price", r.ID)
	}
	if *r.CurrentPrice <= 0 {
		return domain.CoinMarketRecord{}, fmt.Errorf("coin %s: non-positive price %f", r.ID, *r.CurrentPrice)
	}

	rec := domain.CoinMarketRecord{
		ID:       r.ID,
		Symbol:   strings.ToUpper(r.Symbol),
		Name:     r.Name,
		PriceUSD: *r.CurrentPrice,
	}
	if r.MarketCapRank != nil {
		rec.MarketCapRank = *r.MarketCapRank
	}
	if r.MarketCap != nil {
		rec.MarketCap = *r.MarketCap
	}
	if r.High24h != nil {
		rec.High24h = *r.High24h
	}
	if r.Low24h != nil {
		rec.Low24h = *r.Low24h
	}
	if r.Change24hPct != nil {
		rec.Change24hPct = *r.Change24hPct
	}
	rec.Sparkline7d = []float64{}
	if r.Sparkline != nil && len(r.Sparkline.Price) > 0 {
		rec.Sparkline7d = r.Sparkline.Price
	}
	return rec, nil
}

// ListMarkets fetches the top coins by market cap. Elements failing
// validation are dropped with a logged warning; the batch succeeds with
// whatever survived.
func (c *CoinGeckoClient) ListMarkets(ctx context.Context, limit int, currency string) ([]domain.CoinMarketRecord, error) {
	ctx, span := c.tracer.Start(ctx, "coingecko.list-markets")
	defer span.End()

	if limit < 1 {
		return nil, apierr.New(apierr.KindValidation, "coingecko.list-markets", "limit must be positive, got %d", limit)
	}
	if limit > maxCoinsLimit {
		c.log.Warnw("limit exceeds maximum, capping", "limit", limit, "max", maxCoinsLimit)
		limit = maxCoinsLimit
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = "usd"
	}

	params := url.Values{
		"vs_currency": {currency},
		"order":       {"market_cap_desc"},
		"per_page":    {strconv.Itoa(limit)},
		"page":        {"1"},
		"sparkline":   {"true"},
	}

	resp, err := c.http.Get(ctx, "coins/markets", params)
	if err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}

	var rows []coinMarketRow
	if err := json.Unmarshal(resp.Body, &rows); err != nil {
		return nil, apierr.Wrap(apierr.KindParsing, "coingecko.list-markets",
			fmt.Errorf("response is not a market array: %w", err))
	}

	records := make([]domain.CoinMarketRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			c.log.Warnw("dropping invalid market record", "error", err)
			c.metrics.DropRecord("invalid_market_record")
			continue
		}
		records = append(records, rec)
	}

	c.log.Infow("fetched market listings",
		"requested", limit, "valid", len(records), "dropped", len(rows)-len(records), "attempts", resp.Attempts)
	return records, nil
}

type coinDetailPayload struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	MarketCapRank *int   `json:"market_cap_rank"`
	MarketData    struct {
		CurrentPrice map[string]float64 `json:"current_price"`
		High24h      map[string]float64 `json:"high_24h"`
		Low24h       map[string]float64 `json:"low_24h"`
		MarketCap    map[string]float64 `json:"market_cap"`
		Change24hPct *float64           `json:"price_change_percentage_24h"`
		Sparkline7d  struct {
			Price []float64 `json:"price"`
		} `json:"sparkline_7d"`
	} `json:"market_data"`
}

// GetCoinDetail fetches one coin. Unlike ListMarkets there is no
// partial result: any failure is terminal for the call.
func (c *CoinGeckoClient) GetCoinDetail(ctx context.Context, id string) (*domain.CoinMarketRecord, error) {
	ctx, span := c.tracer.Start(ctx, "coingecko.coin-detail")
	defer span.End()

	id = strings.TrimSpace(id)
	if !coinIDRx.MatchString(id) {
		return nil, apierr.New(apierr.KindValidation, "coingecko.coin-detail", "invalid coin id %q", id)
	}

	params := url.Values{
		"localization":   {"false"},
		"tickers":        {"false"},
		"market_data":    {"true"},
		"community_data": {"false"},
		"developer_data": {"false"},
		"sparkline":      {"true"},
	}

	resp, err := c.http.Get(ctx, "coins/"+id, params)
	if err != nil {
		return nil, fmt.Errorf("coin detail %s: %w", id, err)
	}

	var payload coinDetailPayload
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, apierr.Wrap(apierr.KindParsing, "coingecko.coin-detail",
			fmt.Errorf("decode detail for %s: %w", id, err))
	}

	price := payload.MarketData.CurrentPrice["usd"]
	if price <= 0 {
		return nil, apierr.New(apierr.KindValidation, "coingecko.coin-detail",
			"coin %s: non-positive price %f", id, price)
	}

	rec := &domain.CoinMarketRecord{
		ID:          payload.ID,
		Symbol:      strings.ToUpper(payload.Symbol),
		Name:        payload.Name,
		PriceUSD:    price,
		MarketCap:   payload.MarketData.MarketCap["usd"],
		High24h:     payload.MarketData.High24h["usd"],
		Low24h:      payload.MarketData.Low24h["usd"],
		Sparkline7d: []float64{},
	}
	if payload.MarketCapRank != nil {
		rec.MarketCapRank = *payload.MarketCapRank
	}
	if payload.MarketData.Change24hPct != nil {
		rec.Change24hPct = *payload.MarketData.Change24hPct
	}
	if len(payload.MarketData.Sparkline7d.Price) > 0 {
		rec.Sparkline7d = payload.MarketData.Sparkline7d.Price
	}

	c.log.Infow("fetched coin detail", "coin", id, "attempts", resp.Attempts, "elapsed", resp.Elapsed)
	return rec, nil
}
