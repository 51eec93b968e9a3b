package monitor_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalguard/vitalguard/internal/alert"
	"github.com/vitalguard/vitalguard/internal/monitor"
	"github.com/vitalguard/vitalguard/internal/sample"
	"github.com/vitalguard/vitalguard/internal/source"
	"github.com/vitalguard/vitalguard/internal/stream"
)

type silentNotifier struct {
	mu        sync.Mutex
	confirmed []alert.Alert
}

func (n *silentNotifier) AlertConfirmed(a alert.Alert) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, a)
}

func testAdapter(t *testing.T) *source.Adapter {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"timestamp":"2025-03-01T10:00:00Z","hr":70,"rr_intervals":null,"battery":90}`))
	}))
	t.Cleanup(srv.Close)

	a := source.NewAdapter()
	a.Configure(source.Config{Endpoint: srv.URL, PollingInterval: time.Hour})
	return a
}

func newMonitor(t *testing.T, cfg monitor.Config) (*monitor.Monitor, *silentNotifier) {
	t.Helper()
	n := &silentNotifier{}
	m := monitor.New(cfg, testAdapter(t), n)
	return m, n
}

func feedHeartRates(m *monitor.Monitor, rates ...float64) {
	for _, hr := range rates {
		m.HandleVital(sample.VitalSample{HeartRate: hr, Timestamp: time.Now()})
	}
}

func feedMotion(m *monitor.Monitor, magnitudes ...float64) {
	for _, g := range magnitudes {
		m.HandleMotion(sample.MotionSample{TotalAcceleration: g, Timestamp: time.Now()})
	}
}

func TestDistressPipeline(t *testing.T) {
	m, _ := newMonitor(t, monitor.Config{
		DistressEnabled:    true,
		HeartRateThreshold: 120,
		CountdownSeconds:   30,
	})
	m.Start()
	defer m.Stop()

	feedHeartRates(m, 95, 96, 97, 98, 99)
	require.Nil(t, m.ActiveAlert())

	feedHeartRates(m, 125)

	active := m.ActiveAlert()
	require.NotNil(t, active)
	assert.Equal(t, alert.KindDistress, active.Kind)
	assert.Equal(t, alert.SeverityHigh, active.Severity)
	require.NotNil(t, active.TriggerVital)
	assert.InDelta(t, 125.0, active.TriggerVital.HeartRate, 1e-9)
}

func TestNoSecondAlertWhileActive(t *testing.T) {
	m, _ := newMonitor(t, monitor.Config{
		DistressEnabled:    true,
		HeartRateThreshold: 120,
		CountdownSeconds:   30,
	})
	m.Start()
	defer m.Stop()

	feedHeartRates(m, 95, 96, 97, 98, 99, 125)
	first := m.ActiveAlert()
	require.NotNil(t, first)

	// A sustained hazard keeps satisfying the detector but must not storm.
	feedHeartRates(m, 130, 135, 140)

	active := m.ActiveAlert()
	require.NotNil(t, active)
	assert.Equal(t, first.ID, active.ID)
}

func TestDisabledDetectorNeverFires(t *testing.T) {
	m, _ := newMonitor(t, monitor.Config{
		DistressEnabled:    false,
		HeartRateThreshold: 120,
		CountdownSeconds:   30,
	})
	m.Start()
	defer m.Stop()

	feedHeartRates(m, 95, 96, 97, 98, 99, 140)
	assert.Nil(t, m.ActiveAlert())
}

func TestFallPipelineThroughMotionFeed(t *testing.T) {
	m, _ := newMonitor(t, monitor.Config{
		FallEnabled:      true,
		CountdownSeconds: 30,
	})
	m.Start()
	defer m.Stop()

	feed := stream.NewRegistry[sample.MotionSample]()
	unsub := m.AttachMotionSource(feed)
	defer unsub()

	for _, g := range []float64{0.5, 0.5, 0.5, 0.5, 0.5} {
		feed.Dispatch(sample.MotionSample{TotalAcceleration: g, Timestamp: time.Now()})
	}
	require.Nil(t, m.ActiveAlert())

	feed.Dispatch(sample.MotionSample{TotalAcceleration: 6.0, Timestamp: time.Now()})

	active := m.ActiveAlert()
	require.NotNil(t, active)
	assert.Equal(t, alert.KindFall, active.Kind)
	assert.Equal(t, alert.SeverityCritical, active.Severity)
	require.NotNil(t, active.TriggerMotion)
}

func TestCancelAndConfirmPassThrough(t *testing.T) {
	m, n := newMonitor(t, monitor.Config{
		DistressEnabled:    true,
		HeartRateThreshold: 120,
		CountdownSeconds:   30,
	})
	m.Start()
	defer m.Stop()

	assert.False(t, m.CancelAlert()) // idle: no-op

	feedHeartRates(m, 95, 96, 97, 98, 99, 125)
	require.NotNil(t, m.ActiveAlert())
	assert.True(t, m.CancelAlert())
	assert.Nil(t, m.ActiveAlert())

	feedHeartRates(m, 95, 96, 97, 98, 99, 125)
	require.NotNil(t, m.ActiveAlert())
	resolved, ok := m.ConfirmAlert()
	require.True(t, ok)
	assert.True(t, resolved.Confirmed)

	n.mu.Lock()
	assert.Len(t, n.confirmed, 1)
	n.mu.Unlock()
}

func TestCountdownExpiryConfirms(t *testing.T) {
	m, n := newMonitor(t, monitor.Config{
		DistressEnabled:    true,
		HeartRateThreshold: 120,
		CountdownSeconds:   2,
		CountdownTick:      10 * time.Millisecond,
	})
	m.Start()
	defer m.Stop()

	feedHeartRates(m, 95, 96, 97, 98, 99, 125)
	require.NotNil(t, m.ActiveAlert())

	require.Eventually(t, func() bool {
		n.mu.Lock()
		defer n.mu.Unlock()
		return len(n.confirmed) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Nil(t, m.ActiveAlert())
}

func TestWindowsPersistAcrossStopStart(t *testing.T) {
	m, _ := newMonitor(t, monitor.Config{
		DistressEnabled:    true,
		HeartRateThreshold: 120,
		CountdownSeconds:   30,
	})
	m.Start()
	feedHeartRates(m, 95, 96, 97, 98, 99)
	m.Stop()

	// Samples arriving while stopped are ignored.
	feedHeartRates(m, 200)
	require.NotNil(t, m.LatestVital())
	assert.NotEqual(t, 200.0, m.LatestVital().HeartRate)

	m.Start()
	defer m.Stop()

	// The pre-stop window still feeds the rapid-rise clause.
	feedHeartRates(m, 125)
	active := m.ActiveAlert()
	require.NotNil(t, active)
	assert.Equal(t, alert.KindDistress, active.Kind)
}

func TestStartStopStateAndLatestSamples(t *testing.T) {
	m, _ := newMonitor(t, monitor.Config{CountdownSeconds: 30})

	assert.False(t, m.Monitoring())
	m.Start()
	m.Start() // idempotent
	assert.True(t, m.Monitoring())

	feedHeartRates(m, 72)
	feedMotion(m, 1.0)

	// The adapter's own poll may interleave with the fed sample, so only the
	// presence of a latest reading is deterministic here.
	require.NotNil(t, m.LatestVital())
	assert.Positive(t, m.LatestVital().HeartRate)
	require.NotNil(t, m.LatestMotion())
	assert.InDelta(t, 1.0, m.LatestMotion().TotalAcceleration, 1e-9)

	m.Stop()
	m.Stop()
	assert.False(t, m.Monitoring())
	assert.False(t, m.SourceStatus().Streaming)
}
