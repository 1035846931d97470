package track

import (
	"sort"
	"sync"

	"github.com/bwierzbo/bumpsetcut-core/internal/config"
	"github.com/bwierzbo/bumpsetcut-core/internal/detect"
)

// Tracker maintains the live track set for one processing session.
// Observe runs the full predict → associate → update → spawn → prune
// cycle for a frame; it must be called with non-decreasing timestamps
// by a single goroutine. Read accessors are safe to call concurrently
// with Observe and return deep copies.
type Tracker struct {
	cfg *config.Config

	mu       sync.RWMutex
	tracks   map[string]*Track
	finished []Track
	metrics  Metrics
}

// NewTracker builds a tracker using a validated configuration.
func NewTracker(cfg *config.Config) *Tracker {
	return &Tracker{
		cfg:    cfg,
		tracks: make(map[string]*Track),
	}
}

// Observe runs one frame through the tracker. dets are the
// post-processed detections for the frame; frameT is the frame
// timestamp in seconds.
func (t *Tracker) Observe(dets []detect.Detection, frameT float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.metrics.Frames++
	t.metrics.Detections += len(dets)

	// Deterministic track order for the cost matrix: spawn time, then
	// ID, so identical inputs always produce identical assignments.
	ids := make([]string, 0, len(t.tracks))
	for id := range t.tracks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := t.tracks[ids[i]], t.tracks[ids[j]]
		if a.FirstT != b.FirstT {
			return a.FirstT < b.FirstT
		}
		return a.ID < b.ID
	})

	for _, id := range ids {
		t.predict(t.tracks[id], frameT)
	}

	assign := t.associate(dets, ids)

	for di, ti := range assign {
		if ti < 0 {
			continue
		}
		tr := t.tracks[ids[ti]]
		z := dets[di].Center()
		if !t.fuse(tr, z) {
			// Degenerate innovation covariance: no update, and the
			// detection is treated as unassociated.
			t.metrics.SkippedUpdates++
			assign[di] = -1
			continue
		}
		tr.appendSample(Sample{P: z, T: dets[di].T}, t.cfg.HistoryCap)
		t.metrics.Associations++
	}

	for di, ti := range assign {
		if ti < 0 {
			t.spawn(dets[di], frameT)
		}
	}

	t.prune(frameT)
}

// associate builds the gated Mahalanobis cost matrix and solves the
// assignment optimally.
func (t *Tracker) associate(dets []detect.Detection, ids []string) []int {
	if len(dets) == 0 {
		return nil
	}
	gate2 := t.cfg.GateSigma * t.cfg.GateSigma

	cost := make([][]float64, len(dets))
	for di, d := range dets {
		row := make([]float64, len(ids))
		z := d.Center()
		for ti, id := range ids {
			d2 := t.gatingDistance2(t.tracks[id], z)
			if d2 > gate2 {
				d2 = forbiddenCost
			}
			row[ti] = d2
		}
		cost[di] = row
	}
	return hungarianAssign(cost)
}

// spawn starts a new track from an unassociated detection, unless an
// established track already sits within the spawn radius. That keeps
// one flickering object from fragmenting into many short tracks.
func (t *Tracker) spawn(d detect.Detection, frameT float64) {
	z := d.Center()
	for _, tr := range t.tracks {
		if tr.Age >= t.cfg.SpawnMinAge && tr.Position().DistanceTo(z) <= t.cfg.SpawnRadius {
			return
		}
	}

	tr := &Track{
		ID:     newTrackID(),
		State:  t.initialState(z),
		FirstT: d.T,
		stateT: frameT,
	}
	tr.appendSample(Sample{P: z, T: d.T}, t.cfg.HistoryCap)
	t.tracks[tr.ID] = tr
	t.metrics.Spawns++
}

// prune retires tracks idle past the timeout, and any track whose
// state went non-finite. Retired tracks move to the finished list so
// the replay tooling can persist and plot them after the session.
func (t *Tracker) prune(frameT float64) {
	for id, tr := range t.tracks {
		if !tr.defunct && frameT-tr.LastT <= t.cfg.IdleTimeoutSec {
			continue
		}
		t.finished = append(t.finished, tr.clone())
		delete(t.tracks, id)
		t.metrics.Prunes++
	}
}

// LiveTracks returns deep copies of every live track, ordered by
// spawn time then ID.
func (t *Tracker) LiveTracks() []Track {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Track, 0, len(t.tracks))
	for _, tr := range t.tracks {
		out = append(out, tr.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FirstT != out[j].FirstT {
			return out[i].FirstT < out[j].FirstT
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// TrackByID returns a deep copy of one live track.
func (t *Tracker) TrackByID(id string) (Track, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	tr, ok := t.tracks[id]
	if !ok {
		return Track{}, false
	}
	return tr.clone(), true
}

// DrainFinished returns the tracks pruned since the last call and
// clears the list.
func (t *Tracker) DrainFinished() []Track {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := t.finished
	t.finished = nil
	return out
}

// Count returns the number of live tracks.
func (t *Tracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.tracks)
}

// Metrics returns the session counters accumulated so far.
func (t *Tracker) Metrics() Metrics {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.metrics
}
