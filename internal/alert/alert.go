package alert

import (
	"time"

	"github.com/vitalguard/vitalguard/internal/sample"
)

// Kind identifies the hazard class that raised an alert.
type Kind string

const (
	KindDistress Kind = "distress"
	KindFall     Kind = "fall"
)

// Severity orders alerts by urgency.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Alert is one detected hazard moving through the escalation workflow.
// Exactly one of TriggerVital / TriggerMotion is set, matching the Kind.
type Alert struct {
	ID            string
	Kind          Kind
	Severity      Severity
	CreatedAt     time.Time
	TriggerVital  *sample.VitalSample
	TriggerMotion *sample.MotionSample
	Confirmed     bool
}

const (
	criticalImpact   = 5.0
	criticalHRMargin = 30.0
)

// DistressSeverity grades a distress alert: critical when the heart rate
// overshoots the threshold by more than 30 bpm, high otherwise.
func DistressSeverity(heartRate, threshold float64) Severity {
	if heartRate > threshold+criticalHRMargin {
		return SeverityCritical
	}

	return SeverityHigh
}

// FallSeverity grades a fall alert: critical above 5 g impact, high otherwise.
func FallSeverity(totalAcceleration float64) Severity {
	if totalAcceleration > criticalImpact {
		return SeverityCritical
	}

	return SeverityHigh
}
