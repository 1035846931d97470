package detect

import (
	"github.com/bwierzbo/bumpsetcut-core/internal/config"
	"github.com/bwierzbo/bumpsetcut-core/internal/geometry"
)

// cellKey indexes one suppression-grid cell.
type cellKey struct {
	X int
	Y int
}

// cellState is the per-cell suppression record: where the cell's
// occupant was last seen, how many consecutive sightings stayed
// within epsilon, and until when the cell is suppressed.
type cellState struct {
	lastSeen      geometry.Point
	lastT         float64
	streak        int
	cooldownUntil float64 // zero when not suppressed
	hasBaseline   bool
}

// staticSuppressor drops detections that sit still in one grid cell
// long enough to be background, not ball. The cell map is explicit,
// owned state: nothing outside the post-processor reads or writes it.
type staticSuppressor struct {
	gridSize    int
	epsilon     float64
	streakMin   int
	cooldownSec float64
	ttlSec      float64
	cells       map[cellKey]*cellState
}

func newStaticSuppressor(cfg *config.Config) *staticSuppressor {
	return &staticSuppressor{
		gridSize:    cfg.StaticGridSize,
		epsilon:     cfg.StaticEpsilon,
		streakMin:   cfg.StaticStreakMin,
		cooldownSec: cfg.StaticCooldownSec,
		ttlSec:      cfg.StaticCellTTLSec,
		cells:       make(map[cellKey]*cellState),
	}
}

// admit decides whether one detection survives suppression and
// advances the cell state it lands in.
//
// Suppressed cells drop every detection, including the sighting that
// tripped the streak. When the cooldown lapses the cell readmits
// immediately, even if the occupant never moved; the streak recount
// starts from that sighting, not from the stale pre-cooldown
// baseline.
func (s *staticSuppressor) admit(d Detection, frameT float64) bool {
	center := d.Center()
	key := s.cellFor(center)
	cs, ok := s.cells[key]
	if !ok {
		cs = &cellState{}
		s.cells[key] = cs
	}
	cs.lastT = frameT

	if cs.cooldownUntil > 0 {
		if frameT < cs.cooldownUntil {
			return false
		}
		// Cooldown expired: readmit and restart the recount here.
		cs.cooldownUntil = 0
		cs.streak = 0
		cs.lastSeen = center
		cs.hasBaseline = true
		return true
	}

	if !cs.hasBaseline {
		cs.lastSeen = center
		cs.hasBaseline = true
		return true
	}

	if center.DistanceTo(cs.lastSeen) < s.epsilon {
		cs.streak++
		if cs.streak >= s.streakMin {
			cs.cooldownUntil = frameT + s.cooldownSec
			cs.streak = 0
			cs.hasBaseline = false
			return false
		}
	} else {
		cs.streak = 0
	}
	cs.lastSeen = center
	return true
}

// prune drops cells not seen for the TTL so the map stays bounded by
// recent activity, not by everything the video ever showed.
func (s *staticSuppressor) prune(frameT float64) {
	for key, cs := range s.cells {
		if frameT-cs.lastT > s.ttlSec {
			delete(s.cells, key)
		}
	}
}

func (s *staticSuppressor) cellFor(p geometry.Point) cellKey {
	clampIndex := func(v float64) int {
		i := int(v * float64(s.gridSize))
		if i < 0 {
			return 0
		}
		if i >= s.gridSize {
			return s.gridSize - 1
		}
		return i
	}
	return cellKey{X: clampIndex(p.X), Y: clampIndex(p.Y)}
}
