package news

import (
	"reflect"
	"testing"

	"terminalcoin/internal/domain"
)

func TestExtractFirstSeenOrder(t *testing.T) {
	ex := NewAssetExtractor(domain.KeywordSymbols)
	got := ex.Extract("Ethereum slips while Bitcoin holds; ETH traders rotate into Solana")
	want := []string{"ETH", "BTC", "SOL"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExtractDedup(t *testing.T) {
	ex := NewAssetExtractor(domain.KeywordSymbols)
	got := ex.Extract("BTC, bitcoin and more BTC")
	if !reflect.DeepEqual(got, []string{"BTC"}) {
		t.Fatalf("got %v", got)
	}
}

func TestExtractWholeTokenOnly(t *testing.T) {
	ex := NewAssetExtractor(domain.KeywordSymbols)
	for _, text := range []string{
		"orbital mechanics",   // no "btc"/"bitcoin" token
		"methanol production", // "eth" inside a word
		"dotted lines",        // "dot" inside a word
	} {
		if got := ex.Extract(text); len(got) != 0 {
			t.Fatalf("Extract(%q) = %v, want none", text, got)
		}
	}
}

func TestExtractMultiwordKeyword(t *testing.T) {
	ex := NewAssetExtractor(domain.KeywordSymbols)
	got := ex.Extract("Shiba Inu and Binance Coin both gained")
	want := []string{"SHIB", "BNB"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExtractEmpty(t *testing.T) {
	ex := NewAssetExtractor(domain.KeywordSymbols)
	got := ex.Extract("")
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", got)
	}
}
