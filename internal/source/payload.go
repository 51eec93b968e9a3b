package source

import (
	"time"

	"github.com/vitalguard/vitalguard/internal/sample"
)

// payload is the wire shape served by the wearable relay. hr, rr_intervals
// and battery are all nullable; absent fields degrade to zero values rather
// than failing the poll.
type payload struct {
	Timestamp   string    `json:"timestamp"`
	HR          *float64  `json:"hr"`
	RRIntervals []float64 `json:"rr_intervals"`
	Battery     *float64  `json:"battery"`
}

// secondsCutoff separates RR intervals reported in seconds from ones already
// in milliseconds. A beat-to-beat interval below 10 can only be seconds.
const secondsCutoff = 10.0

func (p payload) toSample() sample.VitalSample {
	s := sample.VitalSample{
		Timestamp: time.Now(),
	}

	if ts, err := time.Parse(time.RFC3339, p.Timestamp); err == nil {
		s.Timestamp = ts
	}

	if p.HR != nil {
		s.HeartRate = *p.HR
	}
	if p.Battery != nil {
		s.Battery = *p.Battery
	}

	if len(p.RRIntervals) >= 2 {
		s.RRIntervals = normalizeRR(p.RRIntervals)
		s.HRV = sample.RMSSD(s.RRIntervals)
	}

	return s
}

// normalizeRR scales second-valued intervals to milliseconds.
func normalizeRR(intervals []float64) []float64 {
	out := make([]float64, len(intervals))
	for i, rr := range intervals {
		if rr < secondsCutoff {
			rr *= 1000
		}
		out[i] = rr
	}

	return out
}
