package queue_test

import (
	"testing"
	"time"

	"github.com/Favour-nine/Gradr/internal/queue"
)

func TestBackoffGrowsExponentiallyWithoutJitter(t *testing.T) {
	b := queue.Backoff{Base: 10 * time.Second, Factor: 2}

	wants := map[int]time.Duration{
		0: 10 * time.Second,
		1: 20 * time.Second,
		2: 40 * time.Second,
		3: 80 * time.Second,
	}
	for attempts, want := range wants {
		if got := b.Delay(attempts); got != want {
			t.Errorf("Delay(%d) = %s, want %s", attempts, got, want)
		}
	}
}

func TestBackoffNeverBelowOneSecond(t *testing.T) {
	cases := []queue.Backoff{
		{},
		{Base: 100 * time.Millisecond, Factor: 2},
		{Base: time.Second, Factor: 0.5},
		{Base: time.Second, Factor: 2, Jitter: 0.9},
	}
	for _, b := range cases {
		for attempts := -1; attempts <= 3; attempts++ {
			if got := b.Delay(attempts); got < time.Second {
				t.Fatalf("Delay(%d) with %+v = %s, below floor", attempts, b, got)
			}
		}
	}
}

func TestBackoffJitterStaysInBounds(t *testing.T) {
	b := queue.Backoff{Base: 100 * time.Second, Factor: 2, Jitter: 0.2}

	// attempts=1 nominal delay is 200s; jitter 0.2 keeps it in [160s, 240s].
	for i := 0; i < 200; i++ {
		got := b.Delay(1)
		if got < 160*time.Second || got > 240*time.Second {
			t.Fatalf("Delay(1) = %s, outside jitter bounds", got)
		}
	}
}

func TestBackoffDelaysAreWholeSeconds(t *testing.T) {
	b := queue.Backoff{Base: 7 * time.Second, Factor: 1.5, Jitter: 0.3}
	for i := 0; i < 50; i++ {
		got := b.Delay(2)
		if got%time.Second != 0 {
			t.Fatalf("Delay(2) = %s, not whole seconds", got)
		}
	}
}
