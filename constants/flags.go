package constants

// Flag is a short machine code attached to a processed referral.
type Flag string

const (
	FlagNotReferralDocument     Flag = "NOT_REFERRAL_DOCUMENT"
	FlagNoTestOrderFound        Flag = "NO_TEST_ORDER_FOUND"
	FlagWrongTestOrdered        Flag = "WRONG_TEST_ORDERED"
	FlagTitrationClinicalReview Flag = "TITRATION_REQUIRES_CLINICAL_REVIEW"
	FlagMissingChartNotes       Flag = "MISSING_CHART_NOTES"
	FlagMissingPatientInfo      Flag = "MISSING_PATIENT_INFO"
	FlagInsuranceNotAccepted    Flag = "INSURANCE_NOT_ACCEPTED"
	FlagInsuranceExpired        Flag = "INSURANCE_EXPIRED"
	FlagAuthorizationRequired   Flag = "AUTHORIZATION_REQUIRED"
	FlagDMEMentioned            Flag = "DME_MENTIONED"
	FlagCPAPComplianceIssue     Flag = "CPAP_COMPLIANCE_ISSUE"
	FlagPediatricHandling       Flag = "PEDIATRIC_SPECIAL_HANDLING"
	FlagMobilityAlert           Flag = "MOBILITY_ALERT"
	FlagSafetyAlert             Flag = "SAFETY_ALERT"
	FlagLowOCRConfidence        Flag = "LOW_OCR_CONFIDENCE"
	FlagContradictoryInfo       Flag = "CONTRADICTORY_INFO"
	FlagFutureReferralDate      Flag = "FUTURE_REFERRAL_DATE"
	FlagPPERequired             Flag = "PPE_REQUIRED"
	FlagCommunicationNeeds      Flag = "COMMUNICATION_NEEDS"
	FlagSpecialAccommodations   Flag = "SPECIAL_ACCOMMODATIONS"
	FlagMedicationAlert         Flag = "MEDICATION_ALERT"
	FlagHistoryAlert            Flag = "HISTORY_ALERT"
	FlagManualReviewRequired    Flag = "MANUAL_REVIEW_REQUIRED"
)

// Severity groups flags for confidence bucketing and review escalation.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

var highSeverity = map[Flag]struct{}{
	FlagWrongTestOrdered:        {},
	FlagTitrationClinicalReview: {},
	FlagMissingChartNotes:       {},
	FlagMissingPatientInfo:      {},
	FlagNotReferralDocument:     {},
	FlagNoTestOrderFound:        {},
	FlagInsuranceNotAccepted:    {},
	FlagInsuranceExpired:        {},
	FlagAuthorizationRequired:   {},
}

var mediumSeverity = map[Flag]struct{}{
	FlagDMEMentioned:         {},
	FlagCPAPComplianceIssue:  {},
	FlagPediatricHandling:    {},
	FlagMobilityAlert:        {},
	FlagSafetyAlert:          {},
	FlagLowOCRConfidence:     {},
	FlagContradictoryInfo:    {},
	FlagManualReviewRequired: {},
	FlagFutureReferralDate:   {},
}

func SeverityOf(f Flag) Severity {
	if _, ok := highSeverity[f]; ok {
		return SeverityHigh
	}
	if _, ok := mediumSeverity[f]; ok {
		return SeverityMedium
	}
	return SeverityLow
}

// DisplayBucket partitions flags for presentation. Membership is a static
// classification table, not inferred from the code text.
type DisplayBucket string

const (
	BucketInfo             DisplayBucket = "Info"
	BucketAction           DisplayBucket = "Action"
	BucketAdditionalReview DisplayBucket = "Additional Review"
)

var displayBuckets = map[Flag]DisplayBucket{
	FlagPPERequired:           BucketInfo,
	FlagCommunicationNeeds:    BucketInfo,
	FlagSpecialAccommodations: BucketInfo,
	FlagHistoryAlert:          BucketInfo,
	FlagMedicationAlert:       BucketInfo,
	FlagDMEMentioned:          BucketInfo,
	FlagFutureReferralDate:    BucketInfo,

	FlagAuthorizationRequired: BucketAction,
	FlagInsuranceNotAccepted:  BucketAction,
	FlagInsuranceExpired:      BucketAction,
	FlagMissingChartNotes:     BucketAction,
	FlagMissingPatientInfo:    BucketAction,
	FlagNoTestOrderFound:      BucketAction,

	FlagNotReferralDocument:     BucketAdditionalReview,
	FlagWrongTestOrdered:        BucketAdditionalReview,
	FlagTitrationClinicalReview: BucketAdditionalReview,
	FlagCPAPComplianceIssue:     BucketAdditionalReview,
	FlagPediatricHandling:       BucketAdditionalReview,
	FlagMobilityAlert:           BucketAdditionalReview,
	FlagSafetyAlert:             BucketAdditionalReview,
	FlagLowOCRConfidence:        BucketAdditionalReview,
	FlagContradictoryInfo:       BucketAdditionalReview,
	FlagManualReviewRequired:    BucketAdditionalReview,
}

// DisplayBucketOf returns the presentation bucket for a flag. Unknown codes
// land in Additional Review so user-defined flags are never hidden.
func DisplayBucketOf(f Flag) DisplayBucket {
	if b, ok := displayBuckets[f]; ok {
		return b
	}
	return BucketAdditionalReview
}

// actionTable is the exhaustive flag -> routing action mapping. Every catalog
// flag has exactly one canonical phrase; codes outside the catalog pass
// through verbatim rather than being dropped.
var actionTable = map[Flag]string{
	FlagNotReferralDocument:     "Route document to clinical review",
	FlagNoTestOrderFound:        "Contact referring provider to confirm test order",
	FlagWrongTestOrdered:        "Escalate order to clinical review",
	FlagTitrationClinicalReview: "Hold titration order for clinical review",
	FlagMissingChartNotes:       "Request chart notes from referring provider",
	FlagMissingPatientInfo:      "Contact referring provider for missing patient demographics",
	FlagInsuranceNotAccepted:    "Refer patient to an in-network provider",
	FlagInsuranceExpired:        "Request updated insurance information from patient",
	FlagAuthorizationRequired:   "Submit prior authorization request to carrier",
	FlagDMEMentioned:            "Notify DME coordinator",
	FlagCPAPComplianceIssue:     "Schedule CPAP compliance outreach",
	FlagPediatricHandling:       "Apply pediatric scheduling protocol",
	FlagMobilityAlert:           "Arrange mobility accommodations for visit",
	FlagSafetyAlert:             "Review safety precautions before scheduling",
	FlagLowOCRConfidence:        "Verify extracted fields against source document",
	FlagContradictoryInfo:       "Reconcile contradictory clinical statements",
	FlagFutureReferralDate:      "Confirm referral date with sender",
	FlagPPERequired:             "Prepare PPE per infection control policy",
	FlagCommunicationNeeds:      "Arrange interpreter or communication support",
	FlagSpecialAccommodations:   "Arrange special accommodations",
	FlagMedicationAlert:         "Review medication list with clinical staff",
	FlagHistoryAlert:            "Pull prior study records",
	FlagManualReviewRequired:    "Queue for manual review",
}

// ActionFor maps a flag code to its canonical routing action. The mapping is
// pure and total: unmapped codes come back unchanged.
func ActionFor(f Flag) string {
	if a, ok := actionTable[f]; ok {
		return a
	}
	return string(f)
}

// CatalogFlags returns every flag in the fixed catalog, in stable order.
func CatalogFlags() []Flag {
	return []Flag{
		FlagNotReferralDocument,
		FlagNoTestOrderFound,
		FlagWrongTestOrdered,
		FlagTitrationClinicalReview,
		FlagMissingChartNotes,
		FlagMissingPatientInfo,
		FlagInsuranceNotAccepted,
		FlagInsuranceExpired,
		FlagAuthorizationRequired,
		FlagDMEMentioned,
		FlagCPAPComplianceIssue,
		FlagPediatricHandling,
		FlagMobilityAlert,
		FlagSafetyAlert,
		FlagLowOCRConfidence,
		FlagContradictoryInfo,
		FlagFutureReferralDate,
		FlagPPERequired,
		FlagCommunicationNeeds,
		FlagSpecialAccommodations,
		FlagMedicationAlert,
		FlagHistoryAlert,
		FlagManualReviewRequired,
	}
}
