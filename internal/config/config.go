package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"terminalcoin/internal/news"
)

type Config struct {
	CoinGeckoBaseURL string
	RequestTimeout   time.Duration
	MaxRetries       int
	RetryDelay       time.Duration
	RateLimitCalls   int
	RateLimitPeriod  time.Duration
	UserAgent        string

	CoinsLimit int
	Currency   string

	FeedSources  []news.Source
	NewsPerFeed  int
	NewsDisplay  int
	RefreshSecs  int
	CacheTTLSecs int

	RedisURL string

	OpenAIAPIKey string
	OpenAIModel  string

	LogFile string
	Debug   bool
}

var defaultFeedSources = []news.Source{
	{Name: "CoinDesk", URL: "https://www.coindesk.com/arc/outboundfeeds/rss/"},
	{Name: "CoinTelegraph", URL: "https://cointelegraph.com/rss"},
}

func Load() *Config {
	cfg := &Config{
		CoinGeckoBaseURL: "https://api.coingecko.com/api/v3",
		RequestTimeout:   10 * time.Second,
		MaxRetries:       3,
		RetryDelay:       time.Second,
		RateLimitCalls:   50,
		RateLimitPeriod:  60 * time.Second,
		UserAgent:        "TerminalCoin/2.0",
		CoinsLimit:       50,
		Currency:         "usd",
		FeedSources:      defaultFeedSources,
		NewsPerFeed:      10,
		NewsDisplay:      5,
		RefreshSecs:      60,
		CacheTTLSecs:     300,
		OpenAIModel:      "gpt-4o-mini",
	}

	if v := strings.TrimSpace(os.Getenv("COINGECKO_BASE_URL")); v != "" {
		cfg.CoinGeckoBaseURL = v
	}
	cfg.RequestTimeout = secsEnv("REQUEST_TIMEOUT_SECS", cfg.RequestTimeout)
	cfg.MaxRetries = positiveIntEnv("MAX_RETRIES", cfg.MaxRetries)
	cfg.RetryDelay = secsEnv("RETRY_DELAY_SECS", cfg.RetryDelay)
	cfg.RateLimitCalls = positiveIntEnv("RATE_LIMIT_CALLS", cfg.RateLimitCalls)
	cfg.RateLimitPeriod = secsEnv("RATE_LIMIT_PERIOD_SECS", cfg.RateLimitPeriod)
	if v := strings.TrimSpace(os.Getenv("USER_AGENT")); v != "" {
		cfg.UserAgent = v
	}

	if v := strings.TrimSpace(os.Getenv("COINS_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 250 {
			cfg.CoinsLimit = n
		} else {
			log.Printf("Warning: invalid COINS_LIMIT=%q, keeping %d", v, cfg.CoinsLimit)
		}
	}
	if v := strings.ToLower(strings.TrimSpace(os.Getenv("CURRENCY"))); v != "" {
		cfg.Currency = v
	}

	if v := strings.TrimSpace(os.Getenv("FEED_SOURCES")); v != "" {
		if sources := parseFeedSources(v); len(sources) > 0 {
			cfg.FeedSources = sources
		} else {
			log.Printf("Warning: could not parse FEED_SOURCES=%q, keeping defaults", v)
		}
	}
	cfg.NewsPerFeed = positiveIntEnv("NEWS_PER_FEED", cfg.NewsPerFeed)
	cfg.NewsDisplay = positiveIntEnv("NEWS_DISPLAY", cfg.NewsDisplay)
	cfg.RefreshSecs = positiveIntEnv("REFRESH_SECS", cfg.RefreshSecs)
	cfg.CacheTTLSecs = positiveIntEnv("CACHE_TTL_SECS", cfg.CacheTTLSecs)

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if v := strings.TrimSpace(os.Getenv("OPENAI_MODEL")); v != "" {
		cfg.OpenAIModel = v
	}

	cfg.LogFile = strings.TrimSpace(os.Getenv("LOG_FILE"))
	cfg.Debug = strings.EqualFold(strings.TrimSpace(os.Getenv("DEBUG")), "true")

	return cfg
}

// positiveIntEnv reads a positive integer from the environment,
// warning and keeping def when the value does not parse.
func positiveIntEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s=%q, keeping %d", key, v, def)
		return def
	}
	return n
}

func secsEnv(key string, def time.Duration) time.Duration {
	return time.Duration(positiveIntEnv(key, int(def/time.Second))) * time.Second
}

// parseFeedSources reads "Name=URL,Name=URL" pairs. Entries without a
// name use the URL host as the display name.
func parseFeedSources(raw string) []news.Source {
	var sources []news.Source
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, url, found := strings.Cut(part, "=")
		if !found {
			url = name
			name = ""
		}
		url = strings.TrimSpace(url)
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			name = strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "http://")
			if i := strings.IndexByte(name, '/'); i > 0 {
				name = name[:i]
			}
		}
		sources = append(sources, news.Source{Name: name, URL: url})
	}
	return sources
}
