package logger

import (
	"path/filepath"
	"testing"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	log, err := New(path, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log.Infow("hello", "key", "value")
	if err := log.Sync(); err != nil {
		t.Fatalf("sync error: %v", err)
	}
}

func TestNewDefaultsToStderr(t *testing.T) {
	log, err := New("", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log.Debug("debug enabled")
}

func TestNopDoesNotPanic(t *testing.T) {
	log := Nop()
	log.Info("discarded")
	log.Warnw("discarded", "attempt", 1)
	if err := log.Sync(); err != nil {
		t.Fatalf("sync error: %v", err)
	}
}
