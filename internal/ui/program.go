package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"terminalcoin/internal/job"
)

type programSender interface {
	Send(msg tea.Msg)
}

// ProgramSink forwards poller updates into a running Bubble Tea
// program. The program is attached after construction because the
// model needs the poller before the program exists.
type ProgramSink struct {
	mu      sync.RWMutex
	program programSender
}

func NewProgramSink() *ProgramSink {
	return &ProgramSink{}
}

func (s *ProgramSink) SetProgram(p programSender) {
	s.mu.Lock()
	s.program = p
	s.mu.Unlock()
}

func (s *ProgramSink) send(msg tea.Msg) {
	s.mu.RLock()
	p := s.program
	s.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

func (s *ProgramSink) MarketUpdate(update job.MarketUpdate) {
	s.send(MarketsMsg{Update: update})
}

func (s *ProgramSink) NewsUpdate(update job.NewsUpdate) {
	s.send(NewsMsg{Update: update})
}
