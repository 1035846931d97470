// Package track implements the Kalman multi-object tracker: one
// recursive constant-velocity estimator per tracked object, detection
// association via Mahalanobis gating and optimal assignment, spawn
// suppression, and idle pruning.
package track

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/bwierzbo/bumpsetcut-core/internal/geometry"
)

// Sample is one observed (position, timestamp) pair in a track's
// history. The history stores raw measurements, not filtered state, so
// downstream validation fits against what the detector actually saw.
type Sample struct {
	P geometry.Point `json:"p"`
	T float64        `json:"t"`
}

// Track is one persistent object hypothesis. Owned exclusively by the
// Tracker; accessors on the Tracker hand out deep copies, never the
// live record.
type Track struct {
	ID      string
	State   KalmanState
	History []Sample
	Age     int     // samples observed over the track's lifetime
	FirstT  float64 // timestamp of the spawning measurement
	LastT   float64 // timestamp of the last fused measurement

	stateT  float64 // time the state was last propagated to
	defunct bool    // non-finite state, removed at the next prune
}

func newTrackID() string {
	return fmt.Sprintf("tk_%s", uuid.NewString())
}

// Position returns the track's current estimated position.
func (tr *Track) Position() geometry.Point {
	return tr.State.Position()
}

// Duration returns the elapsed seconds between the first and last
// fused measurement.
func (tr *Track) Duration() float64 {
	return tr.LastT - tr.FirstT
}

// LastSample returns the most recent history entry and whether one
// exists.
func (tr *Track) LastSample() (Sample, bool) {
	if len(tr.History) == 0 {
		return Sample{}, false
	}
	return tr.History[len(tr.History)-1], true
}

// clone returns a deep copy safe to hand outside the tracker's lock.
func (tr *Track) clone() Track {
	out := *tr
	out.History = make([]Sample, len(tr.History))
	copy(out.History, tr.History)
	return out
}

// appendSample records a raw measurement, trimming the oldest entries
// once the sliding window is full.
func (tr *Track) appendSample(s Sample, cap int) {
	tr.History = append(tr.History, s)
	if len(tr.History) > cap {
		excess := len(tr.History) - cap
		tr.History = append(tr.History[:0], tr.History[excess:]...)
	}
	tr.Age++
	tr.LastT = s.T
}
