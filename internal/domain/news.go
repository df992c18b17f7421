package domain

import "time"

// Sentiment classifies the tone of a news item.
type Sentiment string

const (
	SentimentBullish Sentiment = "Bullish"
	SentimentBearish Sentiment = "Bearish"
	SentimentNeutral Sentiment = "Neutral"
)

// NewsRecord is one sanitized, scored feed entry. Text fields are
// control-character free by the time a record exists; Assets preserves
// first-mention order with duplicates collapsed.
type NewsRecord struct {
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Summary     string    `json:"summary"`
	PublishedAt time.Time `json:"published_at"`
	Sentiment   Sentiment `json:"sentiment"`
	Confidence  float64   `json:"confidence"`
	Assets      []string  `json:"assets"`
}

// KeywordSymbols is the default vocabulary for detecting asset mentions
// in news text. Keys are lower-case and may contain spaces.
var KeywordSymbols = map[string]string{
	"bitcoin": "BTC", "btc": "BTC",
	"ethereum": "ETH", "eth": "ETH",
	"solana": "SOL", "sol": "SOL",
	"bnb": "BNB", "binance coin": "BNB",
	"ripple": "XRP", "xrp": "XRP",
	"cardano": "ADA", "ada": "ADA",
	"dogecoin": "DOGE", "doge": "DOGE",
	"shiba inu": "SHIB", "shib": "SHIB",
	"polkadot": "DOT", "dot": "DOT",
	"avalanche": "AVAX", "avax": "AVAX",
}
