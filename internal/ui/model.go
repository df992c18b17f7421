// Package ui renders the terminal dashboard.
package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"terminalcoin/internal/domain"
)

// Refresher triggers an out-of-band data refresh.
type Refresher interface {
	Refresh()
}

// Model is the Bubble Tea model for the dashboard: a market table on
// top, scored news below.
type Model struct {
	marketTable table.Model
	markets     []domain.CoinMarketRecord
	news        []domain.NewsRecord
	newsLimit   int

	refresher   Refresher
	lastMarkets time.Time
	lastNews    time.Time
	marketErr   error
	newsErr     error

	width  int
	height int
}

func NewModel(refresher Refresher, newsLimit int) Model {
	if newsLimit <= 0 {
		newsLimit = 5
	}
	return Model{
		marketTable: newMarketTable(),
		newsLimit:   newsLimit,
		refresher:   refresher,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			if m.refresher != nil {
				m.refresher.Refresh()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.marketTable.SetWidth(msg.Width)
		height := msg.Height - m.newsLimit*2 - 8
		if height < 5 {
			height = 5
		}
		m.marketTable.SetHeight(height)
		return m, nil

	case MarketsMsg:
		if msg.Update.Err != nil {
			// Keep showing the previous table alongside the error.
			m.marketErr = msg.Update.Err
			return m, nil
		}
		m.marketErr = nil
		m.markets = msg.Update.Records
		m.lastMarkets = msg.Update.At
		m.marketTable = updateMarketRows(m.marketTable, m.markets)
		return m, nil

	case NewsMsg:
		if msg.Update.Err != nil {
			m.newsErr = msg.Update.Err
			return m, nil
		}
		m.newsErr = nil
		m.news = msg.Update.Records
		m.lastNews = msg.Update.At
		return m, nil
	}

	var cmd tea.Cmd
	m.marketTable, cmd = m.marketTable.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("TerminalCoin"))
	if !m.lastMarkets.IsZero() {
		s.WriteString(staleStyle.Render("  updated " + m.lastMarkets.Format("15:04:05")))
	}
	s.WriteString("\n\n")

	if m.marketErr != nil {
		s.WriteString(errorStyle.Render("market data unavailable: " + m.marketErr.Error()))
		s.WriteString("\n")
	}
	if len(m.markets) == 0 && m.marketErr == nil {
		s.WriteString("Loading market data...\n")
	} else {
		s.WriteString(m.marketTable.View())
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(titleStyle.Render("News"))
	s.WriteString("\n")
	s.WriteString(renderNews(m.news, m.newsLimit, m.newsErr))

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("r: refresh | q: quit"))
	return s.String()
}
