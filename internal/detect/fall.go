package detect

import "github.com/vitalguard/vitalguard/internal/sample"

const (
	// ImpactThreshold is the total acceleration above which a reading counts
	// as an impact.
	ImpactThreshold = 3.0
	// stillness readings after an impact stay below this magnitude
	stillnessCeiling = 1.5
	stillnessSpan    = 5
	minMotionSamples = 5
)

// Fall reports whether the current motion sample completes a fall signature:
// a high-g impact preceded by a quiet stretch. The motion window must already
// contain the current sample as its most recent entry.
//
// The stillness check runs over the 5 readings immediately preceding the
// impact sample, excluding the impact itself; including the just-appended
// high-g reading would make the signature unsatisfiable on the impact tick.
func Fall(current sample.MotionSample, window *Window) bool {
	if current.TotalAcceleration <= ImpactThreshold {
		return false
	}

	if window.Len() <= minMotionSamples {
		return false
	}

	// Skip the last entry (the impact sample) and inspect the span before it.
	for i := window.Len() - 1 - stillnessSpan; i < window.Len()-1; i++ {
		if window.At(i) >= stillnessCeiling {
			return false
		}
	}

	return true
}
