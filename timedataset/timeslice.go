package timedataset

import (
	"slices"
	"time"
)

// TimeSlice is an ordered slice of timestamps
type TimeSlice []time.Time

// StartTime returns the first timestamp, or the zero time when empty
func (t TimeSlice) StartTime() time.Time {
	if len(t) == 0 {
		return time.Time{}
	}
	return t[0]
}

// EndTime returns the last timestamp, or the zero time when empty
func (t TimeSlice) EndTime() time.Time {
	if len(t) == 0 {
		return time.Time{}
	}
	return t[len(t)-1]
}

// Deltas returns the positive gaps between consecutive timestamps. Repeated and out of order
// timestamps contribute nothing.
func (t TimeSlice) Deltas() []time.Duration {
	deltas := make([]time.Duration, 0, max(len(t)-1, 0))
	for i := 1; i < len(t); i++ {
		if d := t[i].Sub(t[i-1]); d > 0 {
			deltas = append(deltas, d)
		}
	}
	return deltas
}

// EstimateFreq returns the most common positive gap between consecutive timestamps. The
// smallest gap wins ties.
func (t TimeSlice) EstimateFreq() (time.Duration, error) {
	deltas := t.Deltas()
	if len(deltas) == 0 {
		return 0, ErrCannotInferFreq
	}
	slices.Sort(deltas)

	// equal gaps are adjacent once sorted
	freq, freqCnt := deltas[0], 0
	for i := 0; i < len(deltas); {
		j := i
		for j < len(deltas) && deltas[j] == deltas[i] {
			j++
		}
		if j-i > freqCnt {
			freq, freqCnt = deltas[i], j-i
		}
		i = j
	}
	return freq, nil
}
