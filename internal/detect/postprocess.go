package detect

import (
	"sort"

	"github.com/bwierzbo/bumpsetcut-core/internal/config"
)

// Metrics accumulates post-processor counters across a session. Read
// by the replay tooling; not part of the frame contract.
type Metrics struct {
	Frames     int // frames processed
	In         int // detections received
	MergedOut  int // dropped by same-frame dedup
	Suppressed int // dropped by static suppression
	Kept       int // detections passed to the tracker
}

// PostProcessor filters one frame's detections before tracking. It
// owns the static-suppression cell map; a single instance serves one
// processing session and is not safe for concurrent use.
type PostProcessor struct {
	cfg     *config.Config
	static  *staticSuppressor
	metrics Metrics
}

// NewPostProcessor builds a post-processor for one session using a
// validated configuration.
func NewPostProcessor(cfg *config.Config) *PostProcessor {
	return &PostProcessor{
		cfg:    cfg,
		static: newStaticSuppressor(cfg),
	}
}

// Process runs both passes on one frame's detections and returns the
// survivors ordered by descending confidence. frameT is the frame
// timestamp in seconds and must match the detections' timestamps.
func (p *PostProcessor) Process(dets []Detection, frameT float64) []Detection {
	p.metrics.Frames++
	p.metrics.In += len(dets)

	merged := p.mergeDuplicates(dets)
	p.metrics.MergedOut += len(dets) - len(merged)

	kept := merged[:0:0]
	for _, d := range merged {
		if p.static.admit(d, frameT) {
			kept = append(kept, d)
		}
	}
	p.metrics.Suppressed += len(merged) - len(kept)
	p.metrics.Kept += len(kept)

	p.static.prune(frameT)
	return kept
}

// Metrics returns the session counters accumulated so far.
func (p *PostProcessor) Metrics() Metrics {
	return p.metrics
}

// mergeDuplicates collapses duplicate boxes on the same object: sort
// by descending confidence (ties broken by center x, then y, so the
// pass is deterministic regardless of input order), then greedily
// keep a detection only if its center is farther than the merge
// radius from every already-kept center.
func (p *PostProcessor) mergeDuplicates(dets []Detection) []Detection {
	if len(dets) <= 1 {
		return dets
	}

	sorted := make([]Detection, len(dets))
	copy(sorted, dets)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Confidence != sorted[j].Confidence {
			return sorted[i].Confidence > sorted[j].Confidence
		}
		ci, cj := sorted[i].Center(), sorted[j].Center()
		if ci.X != cj.X {
			return ci.X < cj.X
		}
		return ci.Y < cj.Y
	})

	kept := make([]Detection, 0, len(sorted))
	for _, d := range sorted {
		c := d.Center()
		dup := false
		for _, k := range kept {
			if c.DistanceTo(k.Center()) <= p.cfg.MergeRadius {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, d)
		}
	}
	return kept
}
