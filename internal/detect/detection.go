// Package detect holds the per-frame detection record and the
// post-processing passes that run between the external detector and
// the tracker: same-frame deduplication and static-object
// suppression.
package detect

import "github.com/bwierzbo/bumpsetcut-core/internal/geometry"

// Detection is a single detector output: a normalized bounding box,
// the detector's confidence, and the frame timestamp in seconds.
// Detections are immutable; the post-processor filters but never
// rewrites them.
type Detection struct {
	Box        geometry.Rect `json:"box"`
	Confidence float64       `json:"confidence"`
	T          float64       `json:"t"`
}

// Center returns the detection's box center in normalized
// coordinates.
func (d Detection) Center() geometry.Point {
	return d.Box.Center()
}
