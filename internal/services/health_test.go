package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHubKeepsBoundedHistory(t *testing.T) {
	hub := NewHealthHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	base := time.Now().UTC()
	for i := 0; i < healthHistorySize+10; i++ {
		sample := HealthSample{CapturedAt: base.Add(time.Duration(i) * time.Second)}
		require.Eventually(t, func() bool {
			select {
			case hub.ch <- sample:
				return true
			default:
				return false
			}
		}, time.Second, time.Millisecond)
	}

	require.Eventually(t, func() bool {
		history := hub.History()
		return len(history) == healthHistorySize &&
			history[len(history)-1].CapturedAt.Equal(base.Add(time.Duration(healthHistorySize+9)*time.Second))
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, hub.History()[0].CapturedAt.Equal(base.Add(10*time.Second)))
}

func TestCaptureHealthFillsTimestamp(t *testing.T) {
	sample := CaptureHealth(t.TempDir())
	assert.False(t, sample.CapturedAt.IsZero())
	assert.GreaterOrEqual(t, sample.SystemMemoryUsed, int64(0))
}

type stalledSubscriber struct {
	release  chan struct{}
	mu       sync.Mutex
	deadline time.Time
	writes   int
}

func (s *stalledSubscriber) SetWriteDeadline(t time.Time) error {
	s.mu.Lock()
	s.deadline = t
	s.mu.Unlock()
	return nil
}

func (s *stalledSubscriber) WriteJSON(v interface{}) error {
	<-s.release
	s.mu.Lock()
	s.writes++
	s.mu.Unlock()
	return nil
}

func (s *stalledSubscriber) Close() error { return nil }

type brokenSubscriber struct{ closed bool }

func (b *brokenSubscriber) SetWriteDeadline(time.Time) error { return nil }
func (b *brokenSubscriber) WriteJSON(interface{}) error      { return errors.New("broken pipe") }
func (b *brokenSubscriber) Close() error {
	b.closed = true
	return nil
}

func TestHealthHubStalledSubscriberDoesNotBlockHistory(t *testing.T) {
	hub := NewHealthHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	slow := &stalledSubscriber{release: make(chan struct{})}
	hub.Add(slow)
	hub.Broadcast(HealthSample{CapturedAt: time.Now().UTC()})

	require.Eventually(t, func() bool { return len(hub.History()) == 1 }, time.Second, 5*time.Millisecond)
	done := make(chan struct{})
	go func() {
		hub.Add(&brokenSubscriber{})
		_ = hub.History()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub lock held during subscriber write")
	}

	close(slow.release)
	require.Eventually(t, func() bool {
		slow.mu.Lock()
		defer slow.mu.Unlock()
		return slow.writes == 1
	}, time.Second, 5*time.Millisecond)
	slow.mu.Lock()
	assert.False(t, slow.deadline.IsZero())
	slow.mu.Unlock()
}

func TestHealthHubDropsFailedSubscriber(t *testing.T) {
	hub := NewHealthHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	broken := &brokenSubscriber{}
	hub.Add(broken)
	hub.Broadcast(HealthSample{CapturedAt: time.Now().UTC()})

	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 0
	}, time.Second, 5*time.Millisecond)
	assert.True(t, broken.closed)
}
