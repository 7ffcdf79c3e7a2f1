package assess

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/intakehq/referral-ocr/constants"
	"github.com/intakehq/referral-ocr/internal/entity"
)

func f64(v float64) *float64 { return &v }

func TestResolveConfidence_Buckets(t *testing.T) {
	tests := []struct {
		name  string
		score *float64
		want  constants.ConfidenceBucket
	}{
		{"high at boundary", f64(0.8), constants.ConfidenceHigh},
		{"high above", f64(0.81), constants.ConfidenceHigh},
		{"medium at boundary", f64(0.6), constants.ConfidenceMedium},
		{"low just under", f64(0.59), constants.ConfidenceLow},
		{"missing", nil, constants.ConfidenceManualReview},
		{"nan", f64(math.NaN()), constants.ConfidenceManualReview},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveConfidence(entity.Document{}, tt.score)
			assert.Equal(t, tt.want, got.Bucket)
		})
	}
}

func TestResolveConfidence_PercentageScale(t *testing.T) {
	got := ResolveConfidence(entity.Document{}, f64(85))
	assert.Equal(t, constants.ConfidenceHigh, got.Bucket)
	assert.InDelta(t, 0.85, got.Score, 1e-9)
}

func TestResolveConfidence_DocumentScoreWins(t *testing.T) {
	doc := entity.Document{OverallConfidence: f64(0.95)}
	got := ResolveConfidence(doc, f64(0.3))
	assert.Equal(t, constants.ConfidenceHigh, got.Bucket)
	assert.InDelta(t, 0.95, got.Score, 1e-9)
}

// referralDoc is a document complete enough to raise no completeness flags.
func referralDoc() entity.Document {
	return entity.Document{
		Patient: entity.Patient{LastName: "Doe", FirstName: "Jane", DOB: "01/15/1980"},
		Procedure: entity.Procedure{
			CPT:            []string{"95810"},
			StudyRequested: "In-lab polysomnogram",
		},
		Clinical: entity.Clinical{PrimaryDiagnosis: "G47.33 Obstructive sleep apnea"},
	}
}

const referralText = "Referral for sleep study. Diagnosis: obstructive sleep apnea."

func TestAssess_CleanReferralHasNoFlags(t *testing.T) {
	e := New(nil)

	got := e.Assess(referralDoc(), referralText, f64(0.9))
	assert.Empty(t, got.Flags)
	assert.Empty(t, got.Actions)
	assert.Equal(t, constants.ConfidenceHigh, got.Confidence.Bucket)
}

func TestAssess_LowConfidenceFlag(t *testing.T) {
	e := New(nil)

	got := e.Assess(referralDoc(), referralText, f64(0.7))
	assert.Contains(t, got.Flags, constants.FlagLowOCRConfidence)
	assert.Contains(t, got.Actions, constants.ActionFor(constants.FlagLowOCRConfidence))
}

func TestAssess_MissingPatientInfo(t *testing.T) {
	e := New(nil)
	doc := referralDoc()
	doc.Patient.DOB = ""

	got := e.Assess(doc, referralText, f64(0.9))
	assert.Contains(t, got.Flags, constants.FlagMissingPatientInfo)
}

func TestAssess_NoTestOrder(t *testing.T) {
	e := New(nil)
	doc := referralDoc()
	doc.Procedure.CPT = nil
	doc.Procedure.StudyRequested = ""

	got := e.Assess(doc, referralText, f64(0.9))
	assert.Contains(t, got.Flags, constants.FlagNoTestOrderFound)
}

func TestAssess_NotReferralDocument(t *testing.T) {
	e := New(nil)

	got := e.Assess(entity.Document{}, "quarterly parking invoice", f64(0.9))
	assert.Contains(t, got.Flags, constants.FlagNotReferralDocument)
}

func TestAssess_AuthorizationRequired(t *testing.T) {
	e := New(nil)
	doc := referralDoc()

	got := e.Assess(doc, referralText+" Prior auth required before scheduling.", f64(0.9))
	assert.Contains(t, got.Flags, constants.FlagAuthorizationRequired)
	assert.Contains(t, got.Actions, "Submit prior authorization request to carrier")

	// An authorization number on file satisfies the requirement.
	doc.Insurance.Primary.AuthorizationNumber = "A123456"
	got = e.Assess(doc, referralText+" Prior auth required before scheduling.", f64(0.9))
	assert.NotContains(t, got.Flags, constants.FlagAuthorizationRequired)
}

func TestAssess_DeniedCarrier(t *testing.T) {
	e := New(nil, WithDeniedCarriers([]string{"acme health"}))
	doc := referralDoc()
	doc.Insurance.Primary.Carrier = "ACME Health Plan of Arizona"

	got := e.Assess(doc, referralText, f64(0.9))
	assert.Contains(t, got.Flags, constants.FlagInsuranceNotAccepted)
}

func TestAssess_PediatricCPT(t *testing.T) {
	e := New(nil)
	doc := referralDoc()
	doc.Procedure.CPT = []string{"95782"}

	got := e.Assess(doc, referralText, f64(0.9))
	assert.Contains(t, got.Flags, constants.FlagPediatricHandling)
}

func TestAssess_WrongTestOrdered(t *testing.T) {
	e := New(nil)
	doc := referralDoc()

	got := e.Assess(doc, "Referral: home sleep test requested", f64(0.9))
	assert.Contains(t, got.Flags, constants.FlagWrongTestOrdered)
}

func TestAssess_FutureReferralDate(t *testing.T) {
	fixed := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	e := New(nil, WithClock(func() time.Time { return fixed }))

	doc := referralDoc()
	doc.DocumentDate = "04/20/2024"
	got := e.Assess(doc, referralText, f64(0.9))
	assert.Contains(t, got.Flags, constants.FlagFutureReferralDate)

	doc.DocumentDate = "03/20/2024"
	got = e.Assess(doc, referralText, f64(0.9))
	assert.NotContains(t, got.Flags, constants.FlagFutureReferralDate)
}

func TestAssess_ManualReviewOnTwoHighSeverity(t *testing.T) {
	e := New(nil)
	doc := referralDoc()
	doc.Patient.LastName = ""
	doc.Clinical.PrimaryDiagnosis = ""
	doc.Clinical.Symptoms = nil

	got := e.Assess(doc, referralText, f64(0.9))
	assert.Contains(t, got.Flags, constants.FlagMissingPatientInfo)
	assert.Contains(t, got.Flags, constants.FlagMissingChartNotes)
	assert.Contains(t, got.Flags, constants.FlagManualReviewRequired)
}

func TestAssess_ContradictorySleepiness(t *testing.T) {
	e := New(nil)
	doc := referralDoc()
	doc.Clinical.EpworthScore = "16"

	got := e.Assess(doc, referralText+" Patient denies daytime sleepiness.", f64(0.9))
	assert.Contains(t, got.Flags, constants.FlagContradictoryInfo)
}

func TestActionMappingIsTotal(t *testing.T) {
	for _, f := range constants.CatalogFlags() {
		assert.NotEmpty(t, constants.ActionFor(f), "flag %s", f)
	}
	// Unknown codes pass through verbatim.
	assert.Equal(t, "CUSTOM_SITE_FLAG", constants.ActionFor(constants.Flag("CUSTOM_SITE_FLAG")))
}
