package alert

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vitalguard/vitalguard/internal/logger"
)

// Notifier receives the resolved alert at the moment of confirmation.
// Dispatching the actual emergency contact channel is its concern, not ours.
type Notifier interface {
	AlertConfirmed(a Alert)
}

// NotifierFunc adapts a plain function to the Notifier interface.
type NotifierFunc func(a Alert)

func (f NotifierFunc) AlertConfirmed(a Alert) {
	f(a)
}

// LifecycleConfig controls the escalation countdown.
type LifecycleConfig struct {
	// CountdownSeconds is the grace period before automatic confirmation.
	CountdownSeconds int
	// TickInterval is how long one countdown second takes. Defaults to
	// time.Second; tests shorten it.
	TickInterval time.Duration
}

// Lifecycle owns the at-most-one active alert and arbitrates its creation,
// countdown, cancellation and confirmation. An expired countdown confirms
// the alert autonomously: silence escalates.
type Lifecycle struct {
	mu        sync.Mutex
	cfg       LifecycleConfig
	notifier  Notifier
	active    *Alert
	remaining int
	done      chan struct{}
}

func NewLifecycle(cfg LifecycleConfig, notifier Notifier) *Lifecycle {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}

	return &Lifecycle{
		cfg:      cfg,
		notifier: notifier,
	}
}

// Idle reports whether no alert is currently active.
func (l *Lifecycle) Idle() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.active == nil
}

// Active returns a copy of the active alert, or nil when idle.
func (l *Lifecycle) Active() *Alert {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active == nil {
		return nil
	}

	cp := *l.active
	return &cp
}

// Remaining returns the countdown seconds left for the active alert.
func (l *Lifecycle) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.remaining
}

// Trigger activates the given alert unless one is already active, assigning
// its identifier and creation time and starting the countdown. The check and
// the activation are a single atomic step.
func (l *Lifecycle) Trigger(a Alert) (Alert, bool) {
	l.mu.Lock()

	if l.active != nil {
		l.mu.Unlock()
		return Alert{}, false
	}

	a.ID = uuid.NewString()
	a.CreatedAt = time.Now()
	a.Confirmed = false

	l.active = &a
	l.remaining = l.cfg.CountdownSeconds
	done := make(chan struct{})
	l.done = done
	l.mu.Unlock()

	logger.Warn().
		Str("alert_id", a.ID).
		Str("kind", string(a.Kind)).
		Str("severity", a.Severity.String()).
		Int("countdown_seconds", l.cfg.CountdownSeconds).
		Msg("Alert raised, escalation countdown started")

	go l.countdown(a.ID, done)

	return a, true
}

// Cancel resolves the active alert without escalation and returns to idle.
// Calling it while idle is a no-op.
func (l *Lifecycle) Cancel() bool {
	l.mu.Lock()

	if l.active == nil {
		l.mu.Unlock()
		return false
	}

	id := l.active.ID
	l.active = nil
	l.remaining = 0
	close(l.done)
	l.mu.Unlock()

	logger.Info().Str("alert_id", id).Msg("Alert cancelled")

	return true
}

// Confirm resolves the active alert as confirmed and hands it to the
// notifier. Calling it while idle is a no-op.
func (l *Lifecycle) Confirm() (Alert, bool) {
	l.mu.Lock()

	if l.active == nil {
		l.mu.Unlock()
		return Alert{}, false
	}

	resolved := l.confirmLocked()
	l.mu.Unlock()

	l.notify(resolved)

	return resolved, true
}

// confirmLocked marks the active alert confirmed, clears the active slot and
// stops the countdown. Caller holds l.mu.
func (l *Lifecycle) confirmLocked() Alert {
	l.active.Confirmed = true
	resolved := *l.active
	l.active = nil
	l.remaining = 0
	close(l.done)

	return resolved
}

func (l *Lifecycle) notify(resolved Alert) {
	logger.Warn().
		Str("alert_id", resolved.ID).
		Str("kind", string(resolved.Kind)).
		Str("severity", resolved.Severity.String()).
		Msg("Alert confirmed, notifying emergency contact")

	if l.notifier != nil {
		l.notifier.AlertConfirmed(resolved)
	}
}

// countdown decrements once per tick until the alert resolves. Every tick
// revalidates the alert identity so a timer outliving its alert is inert.
func (l *Lifecycle) countdown(id string, done <-chan struct{}) {
	ticker := time.NewTicker(l.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if l.tick(id) {
				return
			}
		}
	}
}

// tick handles one countdown second for the alert with the given identity.
// Returns true once the timer should stop.
func (l *Lifecycle) tick(id string) bool {
	l.mu.Lock()

	// Stale timer: the alert it was started for is gone.
	if l.active == nil || l.active.ID != id {
		l.mu.Unlock()
		return true
	}

	l.remaining--
	if l.remaining > 0 {
		l.mu.Unlock()
		return false
	}

	resolved := l.confirmLocked()
	l.mu.Unlock()

	logger.Info().Str("alert_id", resolved.ID).Msg("Countdown expired, auto-confirming")
	l.notify(resolved)

	return true
}
