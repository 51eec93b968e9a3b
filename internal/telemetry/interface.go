package telemetry

import (
	"context"
	"time"
)

// Collector defines the core domain interface
type Collector interface {
	Record(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

// Snapshot is one row of session telemetry: the vitals and motion state at
// a point in time plus the monitoring flags.
type Snapshot struct {
	Timestamp   time.Time
	Vitals      VitalMetrics
	Motion      MotionMetrics
	SystemState StateMetrics
}

type VitalMetrics struct {
	HeartRate float64
	HRV       float64
	Battery   float64
}

type MotionMetrics struct {
	TotalAcceleration float64
}

type StateMetrics struct {
	Monitoring  bool
	AlertActive bool
}
