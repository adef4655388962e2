// Package report composes analysis output into the structured artifact
// consumed by downstream reporting and visualization tooling, plus a
// fixed-layout textual rendering of it.
package report

import (
	"time"

	"github.com/overcastsec/smishscan/pkg/analysis"
	"github.com/overcastsec/smishscan/pkg/timeline"
)

// Version is the engine version carried into report metadata.
const Version = "1.0.0"

// Meta describes one analysis run. GeneratedAt is supplied by the caller so
// assembly stays deterministic and replayable.
type Meta struct {
	Contact     string    `json:"contact_analyzed"`
	GeneratedAt time.Time `json:"analysis_timestamp"`
	ToolVersion string    `json:"tool_version"`
	Source      string    `json:"database_source"`
}

// Report is the assembled analysis artifact, immutable once built. The JSON
// field names are the compatibility surface downstream consumers parse.
type Report struct {
	Meta            Meta              `json:"analysis_metadata"`
	ThreatAnalysis  analysis.Result   `json:"threat_analysis"`
	Timeline        *timeline.Summary `json:"timeline_analysis"`
	Recommendations []string          `json:"recommendations"`
}

// Assemble composes the final report. Pure composition: no I/O, no clock
// reads; the timestamp arrives through meta. ToolVersion is forced to the
// engine Version regardless of what the caller set. A nil timeline (empty
// message sequence) is carried through and serializes as null.
func Assemble(meta Meta, res analysis.Result, tl *timeline.Summary) Report {
	meta.ToolVersion = Version
	return Report{
		Meta:            meta,
		ThreatAnalysis:  res,
		Timeline:        tl,
		Recommendations: analysis.Recommend(res.RiskScore, res.Indicators),
	}
}
