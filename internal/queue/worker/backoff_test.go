package worker

import (
	"testing"
	"time"
)

func TestExponentialBackoffGrows(t *testing.T) {
	prev := time.Duration(0)
	for attempt := 0; attempt < 5; attempt++ {
		d := ExponentialBackoff(attempt)
		if d <= prev {
			t.Fatalf("attempt %d: delay %v not greater than previous %v", attempt, d, prev)
		}
		prev = d
	}
}

func TestExponentialBackoffCapped(t *testing.T) {
	d := ExponentialBackoff(20)
	max := 5*time.Minute + 250*time.Millisecond
	if d > max {
		t.Fatalf("delay %v exceeds cap %v", d, max)
	}
}
