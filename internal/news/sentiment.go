package news

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"terminalcoin/internal/domain"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Scorer classifies one piece of news text.
type Scorer interface {
	Score(title, summary string) (domain.Sentiment, float64)
}

var (
	bullishTerms = []string{"bull", "breakout", "surge", "rally", "adoption", "growth", "buy", "uptrend", "recover", "soar", "gain", "record high", "approval", "partnership"}
	bearishTerms = []string{"bear", "dump", "sell", "crash", "hack", "lawsuit", "ban", "decline", "downtrend", "liquidation", "plunge", "fraud", "exploit", "outage"}
)

// LexiconScorer is a deterministic keyword-count scorer. The same input
// always yields the same label and confidence.
type LexiconScorer struct {
	bullish []string
	bearish []string
}

func NewLexiconScorer() *LexiconScorer {
	return &LexiconScorer{bullish: bullishTerms, bearish: bearishTerms}
}

func (s *LexiconScorer) Score(title, summary string) (domain.Sentiment, float64) {
	text := strings.ToLower(strings.TrimSpace(title + " " + summary))
	if text == "" {
		return domain.SentimentNeutral, 0.25
	}

	bull := countTerms(text, s.bullish)
	bear := countTerms(text, s.bearish)

	score := float64(bull-bear) / float64(bull+bear+1)
	confidence := clamp(0.35+0.1*float64(absInt(bull-bear)), 0.25, 0.70)

	switch {
	case score > 0.05:
		return domain.SentimentBullish, confidence
	case score < -0.05:
		return domain.SentimentBearish, confidence
	default:
		return domain.SentimentNeutral, confidence
	}
}

func countTerms(text string, terms []string) int {
	n := 0
	for _, term := range terms {
		if strings.Contains(text, term) {
			n++
		}
	}
	return n
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// BatchScorer re-scores already classified records in one shot. The
// overlay is best-effort; callers keep their existing labels when it
// fails.
type BatchScorer interface {
	ScoreBatch(ctx context.Context, records []domain.NewsRecord) ([]BatchScore, error)
}

// BatchScore addresses one record by its position in the batch.
type BatchScore struct {
	Index      int     `json:"index"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type openAIChatClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// OpenAIScorer overlays LLM sentiment on top of lexicon labels.
type OpenAIScorer struct {
	client openAIChatClient
	model  string
}

// NewOpenAIScorer returns nil when no API key is configured, which
// disables the overlay.
func NewOpenAIScorer(apiKey, model string) *OpenAIScorer {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil
	}
	if strings.TrimSpace(model) == "" {
		model = "gpt-4o-mini"
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIScorer{
		client: &openAIClient{client: client},
		model:  model,
	}
}

func (s *OpenAIScorer) ScoreBatch(ctx context.Context, records []domain.NewsRecord) ([]BatchScore, error) {
	if s == nil || s.client == nil || len(records) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	for i, rec := range records {
		sb.WriteString(fmt.Sprintf("index=%d\n", i))
		sb.WriteString(fmt.Sprintf("title=%s\n", strings.TrimSpace(rec.Title)))
		sb.WriteString(fmt.Sprintf("summary=%s\n\n", strings.TrimSpace(rec.Summary)))
	}

	systemPrompt := "You score crypto news sentiment. Return ONLY a JSON array. Each object requires: index (int), label (Bullish|Neutral|Bearish), confidence (0..1). No markdown."
	userPrompt := "Items:\n" + sb.String()

	completion, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		return nil, err
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("empty scorer completion")
	}

	raw := trimCodeFence(completion.Choices[0].Message.Content)

	var parsed []BatchScore
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parse scorer json: %w", err)
	}

	out := make([]BatchScore, 0, len(parsed))
	for _, row := range parsed {
		if row.Index < 0 || row.Index >= len(records) {
			continue
		}
		row.Confidence = clamp(row.Confidence, 0, 1)
		out = append(out, row)
	}
	return out, nil
}

// NormalizeLabel maps loose LLM labels onto the sentiment enum.
func NormalizeLabel(label string) domain.Sentiment {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "bull", "bullish", "positive":
		return domain.SentimentBullish
	case "bear", "bearish", "negative":
		return domain.SentimentBearish
	default:
		return domain.SentimentNeutral
	}
}

func trimCodeFence(v string) string {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "```") {
		v = strings.TrimPrefix(v, "```")
		v = strings.TrimSpace(v)
		if strings.HasPrefix(strings.ToLower(v), "json") {
			v = strings.TrimSpace(v[4:])
		}
		v = strings.TrimSuffix(v, "```")
		v = strings.TrimSpace(v)
	}
	return v
}

type openAIClient struct {
	client openai.Client
}

func (c *openAIClient) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
