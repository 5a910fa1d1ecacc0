// Package output provides formatting and report generation for analysis
// results.
package output

import (
	"time"

	"tracestat/pkg/analyzer"
)

// Report is the complete analysis output.
type Report struct {
	// Summary provides the headline numbers.
	Summary Summary `json:"summary"`

	// Result is the full aggregate from the analyzer.
	Result *analyzer.Result `json:"result"`

	// Metadata provides context about the analysis run.
	Metadata Metadata `json:"metadata"`
}

// Summary provides the headline numbers.
type Summary struct {
	TotalCircuits       int `json:"total_circuits"`
	CompromisedCircuits int `json:"compromised_circuits"`
	TotalClients        int `json:"total_clients"`
	CompromisedClients  int `json:"compromised_clients"`
	Epochs              int `json:"epochs"`
	LinesProcessed      int `json:"lines_processed"`
}

// Metadata provides context about the analysis run.
type Metadata struct {
	// Sources lists the trace files that were analyzed.
	Sources []string `json:"sources,omitempty"`

	// AnalyzedAt is when the analysis completed.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// Duration is how long the analysis took.
	Duration time.Duration `json:"duration"`
}

// NewReport creates a Report from an analysis result.
func NewReport(result *analyzer.Result) *Report {
	return &Report{
		Summary: Summary{
			TotalCircuits:       result.TotalCircuits,
			CompromisedCircuits: result.CompromisedCircuits,
			TotalClients:        result.TotalClients,
			CompromisedClients:  result.CompromisedClients,
			Epochs:              len(result.Epochs),
			LinesProcessed:      result.Stats.LinesProcessed,
		},
		Result: result,
		Metadata: Metadata{
			Sources:    result.Stats.Sources,
			AnalyzedAt: result.Stats.EndTime,
			Duration:   result.Stats.EndTime.Sub(result.Stats.StartTime),
		},
	}
}

// HasCompromise returns true if any compromised circuit was observed.
func (r *Report) HasCompromise() bool {
	return r.Summary.CompromisedCircuits > 0
}
