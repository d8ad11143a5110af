package utils

import "time"

// Stopwatch measures one provider call. Lap reads the running time without
// stopping it, which is how the time to first chunk is taken; Stop freezes
// the total.
type Stopwatch struct {
	start   time.Time
	stopped bool
	total   time.Duration
}

// StartStopwatch returns a running Stopwatch.
func StartStopwatch() *Stopwatch {
	return &Stopwatch{start: time.Now()}
}

// Lap returns the time since start. After Stop it returns the frozen total.
func (s *Stopwatch) Lap() time.Duration {
	if s.stopped {
		return s.total
	}
	return time.Since(s.start)
}

// Stop freezes the total and returns it. Only the first call counts.
func (s *Stopwatch) Stop() time.Duration {
	if !s.stopped {
		s.total = time.Since(s.start)
		s.stopped = true
	}
	return s.total
}

// Elapsed is Lap under a name that reads better once the call is over.
func (s *Stopwatch) Elapsed() time.Duration {
	return s.Lap()
}
