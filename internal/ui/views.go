package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"terminalcoin/internal/domain"
)

const tableSparkWidth = 20

func newMarketTable() table.Model {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Symbol", Width: 8},
		{Title: "Name", Width: 16},
		{Title: "Price", Width: 14},
		{Title: "24h %", Width: 10},
		{Title: "7d", Width: tableSparkWidth},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func updateMarketRows(t table.Model, records []domain.CoinMarketRecord) table.Model {
	rows := make([]table.Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", rec.MarketCapRank),
			strings.ToUpper(rec.Symbol),
			rec.Name,
			formatPrice(rec.PriceUSD),
			formatChange(rec.Change24hPct),
			Sparkline(rec.Sparkline7d, tableSparkWidth),
		})
	}
	t.SetRows(rows)
	return t
}

func renderNews(records []domain.NewsRecord, limit int, err error) string {
	var s strings.Builder
	if err != nil {
		s.WriteString(errorStyle.Render("news unavailable: " + err.Error()))
		s.WriteString("\n")
		return s.String()
	}
	if len(records) == 0 {
		s.WriteString(helpStyle.Render("No news yet."))
		s.WriteString("\n")
		return s.String()
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	for _, rec := range records {
		s.WriteString(fmt.Sprintf("%s %s\n", sentimentLabel(rec.Sentiment), rec.Title))
		meta := rec.Source
		if !rec.PublishedAt.IsZero() {
			meta += " · " + rec.PublishedAt.Format("Jan 2 15:04")
		}
		if len(rec.Assets) > 0 {
			meta += " · " + strings.Join(rec.Assets, " ")
		}
		s.WriteString("  " + sourceStyle.Render(meta) + "\n")
	}
	return s.String()
}
