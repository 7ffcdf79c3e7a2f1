package constants

import "strings"

// ReviewStatus is the canonical status for checklist records.
type ReviewStatus string

// Stable values (store these exact strings in the DB).
const (
	StatusNew        ReviewStatus = "new"
	StatusInProgress ReviewStatus = "in_progress"
	StatusCompleted  ReviewStatus = "completed"
)

var allStatuses = []ReviewStatus{StatusNew, StatusInProgress, StatusCompleted}

// CanonicalizeStatus maps loose user input ("In Progress", "DONE") onto a
// stable status value. Any explicit status is accepted; the workflow models
// human triage, not a strict pipeline.
func CanonicalizeStatus(input string) (ReviewStatus, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	synonyms := map[string]ReviewStatus{
		"open":     StatusNew,
		"pending":  StatusNew,
		"working":  StatusInProgress,
		"active":   StatusInProgress,
		"done":     StatusCompleted,
		"complete": StatusCompleted,
		"closed":   StatusCompleted,
	}
	if s, ok := synonyms[normalized]; ok {
		return s, true
	}
	for _, s := range allStatuses {
		if normalized == string(s) {
			return s, true
		}
	}
	return StatusNew, false
}

// Color is the visual triage dimension; it carries no workflow semantics.
type Color string

const (
	ColorGray   Color = "gray"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorRed    Color = "red"
	ColorBlue   Color = "blue"
)

var allColors = []Color{ColorGray, ColorYellow, ColorGreen, ColorRed, ColorBlue}

func IsValidColor(input string) bool {
	c := Color(strings.ToLower(strings.TrimSpace(input)))
	for _, v := range allColors {
		if c == v {
			return true
		}
	}
	return false
}
