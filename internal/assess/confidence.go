package assess

import (
	"math"

	"github.com/intakehq/referral-ocr/constants"
	"github.com/intakehq/referral-ocr/internal/entity"
)

// ResolveConfidence picks the effective score and buckets it. A confidence
// computed on the document itself outranks the raw OCR engine score. When
// neither is a usable number the result is ManualReview, never a default
// bucket.
func ResolveConfidence(doc entity.Document, ocrConfidence *float64) entity.ConfidenceResult {
	score, ok := pickScore(doc.OverallConfidence, ocrConfidence)
	if !ok {
		return entity.ConfidenceResult{Bucket: constants.ConfidenceManualReview}
	}
	return entity.ConfidenceResult{Bucket: bucket(score), Score: score}
}

func pickScore(docScore, ocrScore *float64) (float64, bool) {
	for _, s := range []*float64{docScore, ocrScore} {
		if s == nil || math.IsNaN(*s) || math.IsInf(*s, 0) {
			continue
		}
		return normalize(*s), true
	}
	return 0, false
}

// normalize maps percentage-style scores into [0,1]; values already in range
// pass through.
func normalize(s float64) float64 {
	if s > 1 {
		s = s / 100
	}
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

func bucket(s float64) constants.ConfidenceBucket {
	switch {
	case s >= constants.HighThreshold:
		return constants.ConfidenceHigh
	case s >= constants.MediumThreshold:
		return constants.ConfidenceMedium
	default:
		return constants.ConfidenceLow
	}
}
