package assembler

import "github.com/Ramsey-B/fern/pkg/models"

// AnomalyKind names a reference that did not resolve to exactly one row.
type AnomalyKind string

const (
	AnomalyDuplicateItem      AnomalyKind = "duplicate_item"
	AnomalyDanglingInputItem  AnomalyKind = "dangling_input_item"
	AnomalyDanglingOutputItem AnomalyKind = "dangling_output_item"
	AnomalyMissingSource      AnomalyKind = "missing_source"
	AnomalyAmbiguousSource    AnomalyKind = "ambiguous_source"
	AnomalyOrphanInput        AnomalyKind = "orphan_input"
	AnomalyOrphanOutput       AnomalyKind = "orphan_output"
	AnomalyOrphanSourceLink   AnomalyKind = "orphan_source_link"
)

// Anomaly is a diagnostic record. Count is the number of rows the reference
// matched and Rows holds either the conflicting targets or the offending link row.
type Anomaly struct {
	Kind     AnomalyKind  `json:"kind"`
	ActionID models.Key   `json:"action_id,omitempty"`
	Ref      models.Key   `json:"ref,omitempty"`
	Count    int          `json:"count"`
	Rows     []models.Row `json:"rows,omitempty"`
}

// CountByKind summarizes anomalies for logging and metrics.
func CountByKind(anomalies []Anomaly) map[AnomalyKind]int {
	counts := make(map[AnomalyKind]int)
	for _, a := range anomalies {
		counts[a.Kind]++
	}
	return counts
}
