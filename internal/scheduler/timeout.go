package scheduler

import (
	"sync"
	"time"

	"github.com/wb-go/wbf/zlog"
)

// TimerFired identifies the notification whose lifetime ran out.
type TimerFired struct {
	ID   uint32
	UUID string
}

// TimeoutScheduler arms one timer per live notification. A timer fires
// exactly once unless cancelled. A global pause freezes every timer:
// elapsed time is recorded on the pause edge and the sleep is re-armed
// with the reduced remainder on resume, because a sleep cannot be
// resumed in place.
type TimeoutScheduler struct {
	mu     sync.Mutex
	timers map[uint32]*notificationTimer
	paused bool
	fired  chan TimerFired
}

type notificationTimer struct {
	uuid   string
	cancel chan struct{}
	pause  chan bool // capacity 1; senders drain before pushing
}

func NewTimeoutScheduler() *TimeoutScheduler {
	return &TimeoutScheduler{
		timers: make(map[uint32]*notificationTimer),
		fired:  make(chan TimerFired, 32),
	}
}

// Fired exposes the expiry events consumed by the close pipeline.
func (s *TimeoutScheduler) Fired() <-chan TimerFired {
	return s.fired
}

// Start arms a timer for (id, uuid), replacing any existing timer for
// the same id. A non-positive duration arms nothing.
func (s *TimeoutScheduler) Start(id uint32, uuid string, d time.Duration) {
	if d <= 0 {
		return
	}

	s.mu.Lock()
	if old, ok := s.timers[id]; ok {
		close(old.cancel)
	}
	t := &notificationTimer{
		uuid:   uuid,
		cancel: make(chan struct{}),
		pause:  make(chan bool, 1),
	}
	if s.paused {
		t.pause <- true
	}
	s.timers[id] = t
	s.mu.Unlock()

	go s.run(id, t, d)

	zlog.Logger.Debug().Uint32("id", id).Dur("duration", d).Msg("timer armed")
}

// Stop drops the timer for id without emitting.
func (s *TimeoutScheduler) Stop(id uint32) {
	s.mu.Lock()
	if t, ok := s.timers[id]; ok {
		close(t.cancel)
		delete(s.timers, id)
	}
	s.mu.Unlock()
}

// SetPaused flips the global pause flag for every armed timer.
func (s *TimeoutScheduler) SetPaused(paused bool) {
	s.mu.Lock()
	s.paused = paused
	for _, t := range s.timers {
		select {
		case <-t.pause:
		default:
		}
		t.pause <- paused
	}
	s.mu.Unlock()
}

func (s *TimeoutScheduler) run(id uint32, t *notificationTimer, remaining time.Duration) {
	for {
		// Consume a pending pause before sleeping so a timer armed
		// while paused does not start counting.
		select {
		case paused := <-t.pause:
			if paused {
				if !s.awaitResume(t) {
					return
				}
			}
		default:
		}

		started := time.Now()
		sleep := time.NewTimer(remaining)

		select {
		case <-sleep.C:
			s.remove(id, t)
			s.fired <- TimerFired{ID: id, UUID: t.uuid}
			return
		case <-t.cancel:
			sleep.Stop()
			return
		case paused := <-t.pause:
			sleep.Stop()
			if !paused {
				continue
			}
			remaining -= time.Since(started)
			if remaining < 0 {
				remaining = 0
			}
			if !s.awaitResume(t) {
				return
			}
		}
	}
}

func (s *TimeoutScheduler) awaitResume(t *notificationTimer) bool {
	for {
		select {
		case <-t.cancel:
			return false
		case paused := <-t.pause:
			if !paused {
				return true
			}
		}
	}
}

// remove deregisters a timer that is about to fire, unless it was
// already replaced or stopped.
func (s *TimeoutScheduler) remove(id uint32, t *notificationTimer) {
	s.mu.Lock()
	if current, ok := s.timers[id]; ok && current == t {
		delete(s.timers, id)
	}
	s.mu.Unlock()
}
