package track

// Metrics accumulates tracker counters across a session. Read by the
// replay and sweep tooling; not part of the frame contract.
type Metrics struct {
	Frames         int // observe calls
	Detections     int // detections offered for association
	Associations   int // detections fused into existing tracks
	Spawns         int // new tracks started
	Prunes         int // tracks removed on idle timeout
	SkippedUpdates int // fusions skipped on degenerate covariance
}
