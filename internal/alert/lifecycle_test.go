package alert_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalguard/vitalguard/internal/alert"
	"github.com/vitalguard/vitalguard/internal/sample"
)

type recordingNotifier struct {
	mu        sync.Mutex
	confirmed []alert.Alert
}

func (n *recordingNotifier) AlertConfirmed(a alert.Alert) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, a)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.confirmed)
}

func distressAlert() alert.Alert {
	v := sample.VitalSample{HeartRate: 140, Timestamp: time.Now()}
	return alert.Alert{
		Kind:         alert.KindDistress,
		Severity:     alert.DistressSeverity(v.HeartRate, 120),
		TriggerVital: &v,
	}
}

func newLifecycle(countdown int, tick time.Duration) (*alert.Lifecycle, *recordingNotifier) {
	n := &recordingNotifier{}
	l := alert.NewLifecycle(alert.LifecycleConfig{
		CountdownSeconds: countdown,
		TickInterval:     tick,
	}, n)
	return l, n
}

func TestTriggerAssignsIdentity(t *testing.T) {
	l, _ := newLifecycle(30, time.Hour)

	a, ok := l.Trigger(distressAlert())
	require.True(t, ok)
	assert.NotEmpty(t, a.ID)
	assert.False(t, a.CreatedAt.IsZero())
	assert.False(t, a.Confirmed)
	assert.False(t, l.Idle())

	active := l.Active()
	require.NotNil(t, active)
	assert.Equal(t, a.ID, active.ID)
}

func TestTriggerWhileActiveIsRefused(t *testing.T) {
	l, _ := newLifecycle(30, time.Hour)

	first, ok := l.Trigger(distressAlert())
	require.True(t, ok)

	_, ok = l.Trigger(distressAlert())
	assert.False(t, ok)

	active := l.Active()
	require.NotNil(t, active)
	assert.Equal(t, first.ID, active.ID)
}

func TestCancelReturnsToIdle(t *testing.T) {
	l, n := newLifecycle(30, time.Hour)

	_, ok := l.Trigger(distressAlert())
	require.True(t, ok)

	assert.True(t, l.Cancel())
	assert.True(t, l.Idle())
	assert.Zero(t, l.Remaining())
	assert.Zero(t, n.count())

	// Cancelling again is a no-op.
	assert.False(t, l.Cancel())
}

func TestManualConfirmNotifies(t *testing.T) {
	l, n := newLifecycle(30, time.Hour)

	a, ok := l.Trigger(distressAlert())
	require.True(t, ok)

	resolved, ok := l.Confirm()
	require.True(t, ok)
	assert.Equal(t, a.ID, resolved.ID)
	assert.True(t, resolved.Confirmed)
	assert.True(t, l.Idle())
	assert.Equal(t, 1, n.count())

	// Confirming with no active alert is a no-op.
	_, ok = l.Confirm()
	assert.False(t, ok)
	assert.Equal(t, 1, n.count())
}

func TestCountdownAutoConfirms(t *testing.T) {
	l, n := newLifecycle(2, 10*time.Millisecond)

	a, ok := l.Trigger(distressAlert())
	require.True(t, ok)

	assert.Eventually(t, func() bool { return n.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, l.Idle())

	n.mu.Lock()
	resolved := n.confirmed[0]
	n.mu.Unlock()
	assert.Equal(t, a.ID, resolved.ID)
	assert.True(t, resolved.Confirmed)
}

func TestCancelStopsCountdown(t *testing.T) {
	l, n := newLifecycle(2, 10*time.Millisecond)

	_, ok := l.Trigger(distressAlert())
	require.True(t, ok)
	require.True(t, l.Cancel())

	// A late tick for the cancelled alert must not resurrect it.
	time.Sleep(60 * time.Millisecond)
	assert.True(t, l.Idle())
	assert.Zero(t, n.count())
}

func TestStaleTimerCannotTouchNextAlert(t *testing.T) {
	l, n := newLifecycle(5, 20*time.Millisecond)

	_, ok := l.Trigger(distressAlert())
	require.True(t, ok)
	require.True(t, l.Cancel())

	// Trigger a fresh alert immediately; any straggling tick from the first
	// countdown carries the old ID and must be ignored.
	second, ok := l.Trigger(distressAlert())
	require.True(t, ok)

	time.Sleep(50 * time.Millisecond)
	active := l.Active()
	require.NotNil(t, active)
	assert.Equal(t, second.ID, active.ID)
	assert.Zero(t, n.count())
}

func TestConcurrentTriggersYieldOneActiveAlert(t *testing.T) {
	l, _ := newLifecycle(30, time.Hour)

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := l.Trigger(distressAlert()); ok {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	assert.NotNil(t, l.Active())
}

func TestSeverityGrading(t *testing.T) {
	assert.Equal(t, alert.SeverityCritical, alert.DistressSeverity(155, 120))
	assert.Equal(t, alert.SeverityHigh, alert.DistressSeverity(145, 120))
	assert.Equal(t, alert.SeverityCritical, alert.FallSeverity(5.5))
	assert.Equal(t, alert.SeverityHigh, alert.FallSeverity(4.0))
}
