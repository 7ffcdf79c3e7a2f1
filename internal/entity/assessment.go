package entity

import "github.com/intakehq/referral-ocr/constants"

// ConfidenceResult pairs the normalized score with its display bucket.
type ConfidenceResult struct {
	Bucket constants.ConfidenceBucket `json:"bucket"`
	Score  float64                    `json:"score"`
}

// Assessment is the routing verdict derived from one extracted document.
type Assessment struct {
	Confidence ConfidenceResult `json:"confidence"`
	Flags      []constants.Flag `json:"flags"`
	Actions    []string         `json:"actions"`
}

// ProcessResult is one entry in a batch outcome. Either Document/Assessment
// are populated, or Error carries the per-document failure; a failed document
// is distinguishable from a low-confidence successful one.
type ProcessResult struct {
	SourceName string      `json:"source_name,omitempty"`
	Document   *Document   `json:"document,omitempty"`
	Assessment *Assessment `json:"assessment,omitempty"`
	Error      string      `json:"error,omitempty"`
}
