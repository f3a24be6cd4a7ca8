package reminder

import (
	"context"
	"sync"
	"time"
)

// TimerScheduler keeps jobs in process memory. Armed jobs are lost on restart.
type TimerScheduler struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	handler Handler
	now     func() time.Time
}

// NewTimerScheduler creates an in-process scheduler that runs handler when a job fires.
func NewTimerScheduler(handler Handler) *TimerScheduler {
	return &TimerScheduler{
		timers:  make(map[string]*time.Timer),
		handler: handler,
		now:     time.Now,
	}
}

// Arm schedules job at fireAt, replacing any timer already armed under key.
func (s *TimerScheduler) Arm(ctx context.Context, key string, fireAt time.Time, job Job) error {
	delay := fireAt.Sub(s.now())
	if delay <= 0 {
		return ErrInPast
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.timers[key]; ok {
		old.Stop()
	}

	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.timers[key] == t {
			delete(s.timers, key)
		}
		s.mu.Unlock()

		s.handler(context.Background(), job)
	})
	s.timers[key] = t

	return nil
}

// Cancel stops the timer armed under key, if any.
func (s *TimerScheduler) Cancel(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
	return nil
}

// Pending returns the number of armed timers.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every armed timer.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
}
