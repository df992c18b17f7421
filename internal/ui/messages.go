package ui

import "terminalcoin/internal/job"

// MarketsMsg carries one refresh cycle's market table.
type MarketsMsg struct {
	Update job.MarketUpdate
}

// NewsMsg carries one refresh cycle's news records.
type NewsMsg struct {
	Update job.NewsUpdate
}
