package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/intakehq/referral-ocr/constants"
)

// PatientRef is the denormalized patient identity carried on a checklist
// record, enough to find the chart without re-reading the document.
type PatientRef struct {
	LastName  string `json:"last"`
	FirstName string `json:"first"`
	DOB       string `json:"dob"`
}

type InsuranceRef struct {
	Carrier  string `json:"carrier"`
	MemberID string `json:"member_id"`
}

type ChecklistItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Done  bool   `json:"done"`
}

// ChecklistRecord is the persisted review-workflow entity derived from one
// extracted document. Records are never deleted, only archived.
type ChecklistRecord struct {
	ID        uuid.UUID              `json:"id"`
	Patient   PatientRef             `json:"patient"`
	Insurance InsuranceRef           `json:"insurance"`
	Actions   []string               `json:"actions"`
	Status    constants.ReviewStatus `json:"status"`
	Color     constants.Color        `json:"color"`
	Items     []ChecklistItem        `json:"checklist_items"`
	Notes     []string               `json:"notes"`
	Archived  bool                   `json:"archived"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}
