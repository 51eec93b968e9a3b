package detect

import "github.com/vitalguard/vitalguard/internal/sample"

const (
	rapidRiseDelta    = 20.0
	sustainedSpan     = 5
	sustainedMargin   = 10.0
	minSamplesForRise = 3
)

// Distress reports whether the current vital sample indicates acute
// physiological distress. The heart-rate window must already contain the
// current sample as its most recent entry.
//
// It fires when the current heart rate exceeds the threshold AND either the
// rate rose by more than 20 bpm over the immediately preceding reading
// (rapid rise, needs at least 3 windowed samples) or the most recent
// readings, up to 5, all sit above threshold-10 (sustained elevation).
func Distress(current sample.VitalSample, window *Window, threshold float64) bool {
	if current.HeartRate <= threshold {
		return false
	}

	return rapidRise(current, window) || sustainedElevation(window, threshold)
}

func rapidRise(current sample.VitalSample, window *Window) bool {
	if window.Len() < minSamplesForRise {
		return false
	}

	// The window's last entry is the current sample; the one before it is
	// the previous reading.
	previous := window.At(window.Len() - 2)

	return current.HeartRate > previous+rapidRiseDelta
}

func sustainedElevation(window *Window, threshold float64) bool {
	recent := window.Last(sustainedSpan)
	if len(recent) == 0 {
		return false
	}

	for _, hr := range recent {
		if hr <= threshold-sustainedMargin {
			return false
		}
	}

	return true
}
