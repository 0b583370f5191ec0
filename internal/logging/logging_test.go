package logging

import (
	"testing"

	"go.uber.org/zap"
)

func TestLevels(t *testing.T) {
	log, err := New(false)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if log.Core().Enabled(zap.DebugLevel) {
		t.Fatalf("debug enabled without -debug")
	}

	log, err = New(true)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !log.Core().Enabled(zap.DebugLevel) {
		t.Fatalf("debug disabled with -debug")
	}
}
