// Package pipeline wires the per-frame stages together for one
// processing session: detections flow through the post-processor into
// the tracker, and any track's history can be evaluated by the
// ballistics gate on demand.
package pipeline

import (
	"fmt"
	"sync"

	"github.com/bwierzbo/bumpsetcut-core/internal/ballistics"
	"github.com/bwierzbo/bumpsetcut-core/internal/config"
	"github.com/bwierzbo/bumpsetcut-core/internal/detect"
	"github.com/bwierzbo/bumpsetcut-core/internal/monitoring"
	"github.com/bwierzbo/bumpsetcut-core/internal/track"
)

// Pipeline owns the stages for one session. ProcessFrame must be
// called by a single goroutine with non-decreasing timestamps; the
// read side (LiveTracks, EvaluateTrack) is safe to call concurrently
// because the tracker hands out deep copies and the gate is pure.
type Pipeline struct {
	cfg     *config.Config
	post    *detect.PostProcessor
	tracker *track.Tracker
	gate    *ballistics.Gate

	mu     sync.Mutex
	lastT  float64
	frames int
}

// New builds a session pipeline. The configuration is validated here,
// once, so every stage downstream can assume sane thresholds.
func New(cfg *config.Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline config: %w", err)
	}
	return &Pipeline{
		cfg:     cfg,
		post:    detect.NewPostProcessor(cfg),
		tracker: track.NewTracker(cfg),
		gate:    ballistics.NewGate(cfg),
	}, nil
}

// ProcessFrame runs one frame of detections through post-processing
// and tracking. Frames must arrive in timestamp order; an older frame
// is an API contract violation and returns an error without touching
// any state.
func (p *Pipeline) ProcessFrame(dets []detect.Detection, frameT float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.frames > 0 && frameT < p.lastT {
		return fmt.Errorf("out-of-order frame: %g is before last processed %g", frameT, p.lastT)
	}
	p.lastT = frameT
	p.frames++

	kept := p.post.Process(dets, frameT)
	p.tracker.Observe(kept, frameT)

	monitoring.Debugf("frame %d t=%.3f: %d detections in, %d kept, %d live tracks",
		p.frames, frameT, len(dets), len(kept), p.tracker.Count())
	return nil
}

// LiveTracks returns deep-copied snapshots of the current track set.
func (p *Pipeline) LiveTracks() []track.Track {
	return p.tracker.LiveTracks()
}

// EvaluateTrack runs the ballistics gate over a live track's history.
// The second return is false when no such track is live.
func (p *Pipeline) EvaluateTrack(id string) (ballistics.GateDecision, bool) {
	tr, ok := p.tracker.TrackByID(id)
	if !ok {
		return ballistics.GateDecision{}, false
	}
	return p.gate.Evaluate(tr.History), true
}

// Evaluate runs the gate over an arbitrary sample history, for
// finished tracks and offline tooling.
func (p *Pipeline) Evaluate(samples []track.Sample) ballistics.GateDecision {
	return p.gate.Evaluate(samples)
}

// DrainFinished returns the tracks pruned since the last call.
func (p *Pipeline) DrainFinished() []track.Track {
	return p.tracker.DrainFinished()
}

// Metrics returns the per-stage session counters.
func (p *Pipeline) Metrics() (detect.Metrics, track.Metrics) {
	return p.post.Metrics(), p.tracker.Metrics()
}

// Config returns the session configuration.
func (p *Pipeline) Config() *config.Config {
	return p.cfg
}

// Frames returns the number of frames processed so far.
func (p *Pipeline) Frames() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames
}
