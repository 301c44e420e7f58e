package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeoutScheduler_FiresOnce(t *testing.T) {
	s := NewTimeoutScheduler()

	s.Start(1, "uuid-a", 20*time.Millisecond)

	select {
	case fired := <-s.Fired():
		assert.Equal(t, uint32(1), fired.ID)
		assert.Equal(t, "uuid-a", fired.UUID)
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}

	select {
	case fired := <-s.Fired():
		t.Fatalf("unexpected second event: %+v", fired)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestTimeoutScheduler_StopCancels(t *testing.T) {
	s := NewTimeoutScheduler()

	s.Start(1, "uuid-a", 50*time.Millisecond)
	s.Stop(1)

	select {
	case fired := <-s.Fired():
		t.Fatalf("cancelled timer fired: %+v", fired)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestTimeoutScheduler_RestartReplacesTimer(t *testing.T) {
	s := NewTimeoutScheduler()

	s.Start(1, "uuid-a", 30*time.Millisecond)
	s.Start(1, "uuid-b", 30*time.Millisecond)

	fired := <-s.Fired()
	assert.Equal(t, "uuid-b", fired.UUID)

	select {
	case extra := <-s.Fired():
		t.Fatalf("replaced timer fired: %+v", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestTimeoutScheduler_ZeroDurationNeverFires(t *testing.T) {
	s := NewTimeoutScheduler()

	s.Start(1, "uuid-a", 0)

	select {
	case fired := <-s.Fired():
		t.Fatalf("sticky notification fired: %+v", fired)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestTimeoutScheduler_PauseDefersExpiry(t *testing.T) {
	s := NewTimeoutScheduler()

	s.Start(1, "uuid-a", 100*time.Millisecond)
	s.SetPaused(true)

	select {
	case fired := <-s.Fired():
		t.Fatalf("paused timer fired: %+v", fired)
	case <-time.After(300 * time.Millisecond):
	}

	s.SetPaused(false)

	select {
	case fired := <-s.Fired():
		assert.Equal(t, uint32(1), fired.ID)
	case <-time.After(time.Second):
		t.Fatal("resumed timer did not fire")
	}
}

func TestTimeoutScheduler_TimerArmedWhilePausedWaits(t *testing.T) {
	s := NewTimeoutScheduler()

	s.SetPaused(true)
	s.Start(1, "uuid-a", 20*time.Millisecond)

	select {
	case fired := <-s.Fired():
		t.Fatalf("timer counted while paused: %+v", fired)
	case <-time.After(200 * time.Millisecond):
	}

	s.SetPaused(false)

	fired := <-s.Fired()
	require.Equal(t, uint32(1), fired.ID)
}
