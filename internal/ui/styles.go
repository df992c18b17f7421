package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"terminalcoin/internal/domain"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	helpStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	staleStyle = lipgloss.NewStyle().Faint(true).Italic(true)

	gainStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	lossStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	bullishStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	bearishStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	neutralStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	sourceStyle = lipgloss.NewStyle().Faint(true)
)

func formatChange(pct float64) string {
	s := fmt.Sprintf("%+.2f%%", pct)
	if pct > 0 {
		return gainStyle.Render(s)
	}
	if pct < 0 {
		return lossStyle.Render(s)
	}
	return s
}

func formatPrice(price float64) string {
	if price >= 1 {
		return fmt.Sprintf("$%.2f", price)
	}
	return fmt.Sprintf("$%.6f", price)
}

func sentimentLabel(s domain.Sentiment) string {
	switch s {
	case domain.SentimentBullish:
		return bullishStyle.Render(string(s))
	case domain.SentimentBearish:
		return bearishStyle.Render(string(s))
	default:
		return neutralStyle.Render(string(s))
	}
}
