package nowplaying

import (
	"testing"
	"time"
)

func TestSnapshot_Rate(t *testing.T) {
	if got := (Snapshot{Playing: true}).Rate(); got != 1.0 {
		t.Errorf("Rate() = %v, want 1.0", got)
	}
	if got := (Snapshot{Playing: false}).Rate(); got != 0.0 {
		t.Errorf("Rate() = %v, want 0.0", got)
	}
}

func TestSnapshot_CountdownText(t *testing.T) {
	tests := []struct {
		remaining time.Duration
		want      string
	}{
		{630 * time.Second, "🌙 10:30"},
		{time.Second, "🌙 00:01"},
		{0, ""},
		{-time.Minute, ""},
	}
	for _, tt := range tests {
		s := Snapshot{SleepRemaining: tt.remaining}
		if got := s.CountdownText(); got != tt.want {
			t.Errorf("CountdownText(%v) = %q, want %q", tt.remaining, got, tt.want)
		}
	}
}
