package models

// MProcessingMetrics represents the counters of one aligner run.
type MProcessingMetrics struct {
	AggregationTimeSeconds float64 `json:"aggregation_time_seconds"`
	WindowsProcessed       int     `json:"windows_processed"`
	WindowsAdmitted        int     `json:"windows_admitted"`
	WindowsRejected        int     `json:"windows_rejected"`
	WindowsErrored         int     `json:"windows_errored"`
}
