package domain

// CoinMarketRecord is one validated row of market data for a single
// asset. Records are value objects: rebuilt wholesale on every refresh
// cycle, never merged incrementally.
type CoinMarketRecord struct {
	ID            string    `json:"id"`
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	PriceUSD      float64   `json:"price_usd"`
	MarketCapRank int       `json:"market_cap_rank"`
	MarketCap     float64   `json:"market_cap"`
	High24h       float64   `json:"high_24h"`
	Low24h        float64   `json:"low_24h"`
	Change24hPct  float64   `json:"change_24h_pct"`
	Sparkline7d   []float64 `json:"sparkline_7d"`
}

// CoinGeckoID maps internal symbols to CoinGecko API identifiers.
var CoinGeckoID = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"SOL":  "solana",
	"BNB":  "binancecoin",
	"XRP":  "ripple",
	"ADA":  "cardano",
	"DOGE": "dogecoin",
	"SHIB": "shiba-inu",
	"DOT":  "polkadot",
	"AVAX": "avalanche-2",
}

// CoinGeckoIDToSymbol is the reverse mapping.
var CoinGeckoIDToSymbol map[string]string

func init() {
	CoinGeckoIDToSymbol = make(map[string]string, len(CoinGeckoID))
	for sym, id := range CoinGeckoID {
		CoinGeckoIDToSymbol[id] = sym
	}
}

// SupportedSymbols lists all tracked crypto symbols.
var SupportedSymbols = []string{
	"BTC", "ETH", "SOL", "BNB", "XRP",
	"ADA", "DOGE", "SHIB", "DOT", "AVAX",
}
