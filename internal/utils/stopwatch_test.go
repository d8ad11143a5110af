package utils

import (
	"testing"
	"time"
)

func TestStopwatchLapKeepsRunning(t *testing.T) {
	watch := StartStopwatch()
	time.Sleep(5 * time.Millisecond)

	first := watch.Lap()
	if first < 5*time.Millisecond {
		t.Fatalf("expected lap >= 5ms, got %v", first)
	}

	time.Sleep(5 * time.Millisecond)
	if second := watch.Lap(); second <= first {
		t.Errorf("expected lap to keep growing, got %v then %v", first, second)
	}
}

func TestStopwatchStopFreezes(t *testing.T) {
	watch := StartStopwatch()
	time.Sleep(2 * time.Millisecond)

	total := watch.Stop()
	if total <= 0 {
		t.Fatalf("expected positive total, got %v", total)
	}

	time.Sleep(2 * time.Millisecond)
	if again := watch.Stop(); again != total {
		t.Errorf("second Stop changed the total: %v -> %v", total, again)
	}
	if watch.Elapsed() != total || watch.Lap() != total {
		t.Errorf("expected frozen total %v, got elapsed %v lap %v", total, watch.Elapsed(), watch.Lap())
	}
}
