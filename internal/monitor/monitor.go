package monitor

import (
	"sync"
	"time"

	"github.com/vitalguard/vitalguard/internal/alert"
	"github.com/vitalguard/vitalguard/internal/detect"
	"github.com/vitalguard/vitalguard/internal/logger"
	"github.com/vitalguard/vitalguard/internal/sample"
	"github.com/vitalguard/vitalguard/internal/source"
	"github.com/vitalguard/vitalguard/internal/stream"
)

// Config is the per-session monitoring configuration. It is immutable for
// the lifetime of a session; changing it means stopping and rebuilding the
// monitor.
type Config struct {
	DistressEnabled    bool
	FallEnabled        bool
	HeartRateThreshold float64
	CountdownSeconds   int
	// CountdownTick shortens the countdown second for tests. Zero means a
	// real second.
	CountdownTick time.Duration
}

// Monitor wires the source adapter, the sliding windows, the hazard
// detectors and the alert lifecycle into one owned session.
type Monitor struct {
	cfg       Config
	src       *source.Adapter
	lifecycle *alert.Lifecycle

	vitalMu     sync.Mutex
	hrWindow    *detect.Window
	latestVital *sample.VitalSample

	motionMu     sync.Mutex
	motionWindow *detect.Window
	latestMotion *sample.MotionSample

	stateMu    sync.Mutex
	monitoring bool
	unsubVital func()
}

func New(cfg Config, src *source.Adapter, notifier alert.Notifier) *Monitor {
	if cfg.CountdownSeconds < 1 {
		cfg.CountdownSeconds = 1
	}

	return &Monitor{
		cfg: cfg,
		src: src,
		lifecycle: alert.NewLifecycle(alert.LifecycleConfig{
			CountdownSeconds: cfg.CountdownSeconds,
			TickInterval:     cfg.CountdownTick,
		}, notifier),
		hrWindow:     detect.NewWindow(detect.HeartRateWindowSize),
		motionWindow: detect.NewWindow(detect.MotionWindowSize),
	}
}

// Start subscribes the vital handler and begins streaming. Starting an
// already-running monitor is a no-op.
func (m *Monitor) Start() {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()

	if m.monitoring {
		return
	}

	m.unsubVital = m.src.Subscribe(m.HandleVital)
	m.monitoring = true
	m.src.Start()

	logger.Info().
		Bool("distress_enabled", m.cfg.DistressEnabled).
		Bool("fall_enabled", m.cfg.FallEnabled).
		Float64("heart_rate_threshold", m.cfg.HeartRateThreshold).
		Msg("Monitoring started")
}

// Stop unsubscribes and halts the adapter. Window contents survive a
// stop/start cycle within the same monitor instance; a fresh session means
// a fresh monitor.
func (m *Monitor) Stop() {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()

	if !m.monitoring {
		return
	}

	m.unsubVital()
	m.unsubVital = nil
	m.src.Stop()
	m.monitoring = false

	logger.Info().Msg("Monitoring stopped")
}

// Monitoring reports whether a session is running.
func (m *Monitor) Monitoring() bool {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()

	return m.monitoring
}

// AttachMotionSource subscribes the monitor to an external motion feed.
// Returns the unsubscribe function.
func (m *Monitor) AttachMotionSource(feed *stream.Registry[sample.MotionSample]) func() {
	return feed.Subscribe(m.HandleMotion)
}

// HandleVital ingests one physiological sample: window update first, then
// detection, as one atomic step with respect to other vital samples.
func (m *Monitor) HandleVital(v sample.VitalSample) {
	if !m.Monitoring() {
		return
	}

	m.vitalMu.Lock()
	defer m.vitalMu.Unlock()

	m.latestVital = &v
	m.hrWindow.Push(v.HeartRate)

	if !m.cfg.DistressEnabled || !m.lifecycle.Idle() {
		return
	}

	if detect.Distress(v, m.hrWindow, m.cfg.HeartRateThreshold) {
		m.lifecycle.Trigger(alert.Alert{
			Kind:         alert.KindDistress,
			Severity:     alert.DistressSeverity(v.HeartRate, m.cfg.HeartRateThreshold),
			TriggerVital: &v,
		})
	}
}

// HandleMotion ingests one motion sample from the external motion
// collaborator, mirroring HandleVital over the motion window.
func (m *Monitor) HandleMotion(ms sample.MotionSample) {
	if !m.Monitoring() {
		return
	}

	m.motionMu.Lock()
	defer m.motionMu.Unlock()

	m.latestMotion = &ms
	m.motionWindow.Push(ms.TotalAcceleration)

	if !m.cfg.FallEnabled || !m.lifecycle.Idle() {
		return
	}

	if detect.Fall(ms, m.motionWindow) {
		m.lifecycle.Trigger(alert.Alert{
			Kind:          alert.KindFall,
			Severity:      alert.FallSeverity(ms.TotalAcceleration),
			TriggerMotion: &ms,
		})
	}
}

// LatestVital returns a copy of the most recent physiological sample, or nil.
func (m *Monitor) LatestVital() *sample.VitalSample {
	m.vitalMu.Lock()
	defer m.vitalMu.Unlock()

	if m.latestVital == nil {
		return nil
	}

	cp := *m.latestVital
	return &cp
}

// LatestMotion returns a copy of the most recent motion sample, or nil.
func (m *Monitor) LatestMotion() *sample.MotionSample {
	m.motionMu.Lock()
	defer m.motionMu.Unlock()

	if m.latestMotion == nil {
		return nil
	}

	cp := *m.latestMotion
	return &cp
}

// ActiveAlert returns a copy of the active alert, or nil when idle.
func (m *Monitor) ActiveAlert() *alert.Alert {
	return m.lifecycle.Active()
}

// CancelAlert cancels the active alert, if any.
func (m *Monitor) CancelAlert() bool {
	return m.lifecycle.Cancel()
}

// ConfirmAlert confirms the active alert, if any.
func (m *Monitor) ConfirmAlert() (alert.Alert, bool) {
	return m.lifecycle.Confirm()
}

// SourceStatus exposes the adapter's diagnostic snapshot.
func (m *Monitor) SourceStatus() source.Status {
	return m.src.Status()
}
