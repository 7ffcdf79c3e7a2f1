package constants

// ConfidenceBucket is the coarse rating attached to an extraction result.
type ConfidenceBucket string

const (
	ConfidenceHigh         ConfidenceBucket = "High"
	ConfidenceMedium       ConfidenceBucket = "Medium"
	ConfidenceLow          ConfidenceBucket = "Low"
	ConfidenceManualReview ConfidenceBucket = "ManualReview"
)

// Bucketing thresholds. A score at or above HighThreshold rates High,
// at or above MediumThreshold rates Medium, anything below rates Low.
// A missing or non-numeric score never defaults upward; it forces
// ManualReview at the call site.
const (
	HighThreshold   = 0.8
	MediumThreshold = 0.6
)
