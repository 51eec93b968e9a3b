package sample

import (
	"math"
	"time"
)

// VitalSample is one physiological reading from the wearable. HRV is derived
// from the raw RR intervals (see RMSSD), never reported by the device itself.
type VitalSample struct {
	HeartRate   float64
	HRV         float64
	Strain      float64
	Recovery    float64
	Battery     float64
	RRIntervals []float64 // milliseconds between successive beats
	Timestamp   time.Time
}

// Acceleration is a three-axis acceleration vector in g.
type Acceleration struct {
	X, Y, Z float64
}

// Magnitude returns the euclidean length of the vector.
func (a Acceleration) Magnitude() float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z)
}

// MotionSample is one accelerometer reading. TotalAcceleration is the vector
// magnitude of the per-axis values.
type MotionSample struct {
	Acceleration      Acceleration
	TotalAcceleration float64
	Timestamp         time.Time
}

// NewMotionSample builds a MotionSample with its magnitude precomputed.
func NewMotionSample(x, y, z float64, ts time.Time) MotionSample {
	accel := Acceleration{X: x, Y: y, Z: z}

	return MotionSample{
		Acceleration:      accel,
		TotalAcceleration: accel.Magnitude(),
		Timestamp:         ts,
	}
}

// RMSSD computes the root-mean-square of successive differences over a list
// of beat-to-beat intervals in milliseconds. It is the standard short-term
// heart-rate-variability statistic. Fewer than two intervals yield 0.
func RMSSD(intervals []float64) float64 {
	if len(intervals) < 2 {
		return 0
	}

	var sum float64
	for i := 1; i < len(intervals); i++ {
		diff := intervals[i] - intervals[i-1]
		sum += diff * diff
	}

	return math.Sqrt(sum / float64(len(intervals)-1))
}
