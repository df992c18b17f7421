package news

import (
	"regexp"
	"sort"
	"strings"
)

type keywordPattern struct {
	symbol string
	rx     *regexp.Regexp
}

// AssetExtractor finds asset symbols mentioned in free text. Matching is
// case-insensitive and whole-token only, so "bit" never fires inside
// "orbital".
type AssetExtractor struct {
	patterns []keywordPattern
}

// NewAssetExtractor compiles an extractor from a keyword->symbol
// vocabulary. Keys may be multiword phrases ("shiba inu").
func NewAssetExtractor(vocab map[string]string) *AssetExtractor {
	keys := make([]string, 0, len(vocab))
	for k := range vocab {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	patterns := make([]keywordPattern, 0, len(keys))
	for _, k := range keys {
		rx := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(k) + `\b`)
		patterns = append(patterns, keywordPattern{symbol: vocab[k], rx: rx})
	}
	return &AssetExtractor{patterns: patterns}
}

// Extract returns the symbols mentioned in text, ordered by first
// occurrence, each symbol at most once. The result is never nil.
func (e *AssetExtractor) Extract(text string) []string {
	type hit struct {
		symbol string
		index  int
	}
	lower := strings.ToLower(text)
	earliest := make(map[string]int)
	for _, p := range e.patterns {
		loc := p.rx.FindStringIndex(lower)
		if loc == nil {
			continue
		}
		if at, ok := earliest[p.symbol]; !ok || loc[0] < at {
			earliest[p.symbol] = loc[0]
		}
	}
	hits := make([]hit, 0, len(earliest))
	for sym, at := range earliest {
		hits = append(hits, hit{symbol: sym, index: at})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].index != hits[j].index {
			return hits[i].index < hits[j].index
		}
		return hits[i].symbol < hits[j].symbol
	})
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.symbol)
	}
	return out
}
