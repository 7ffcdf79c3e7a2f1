package assess

import (
	"strconv"
	"strings"
	"time"

	"github.com/intakehq/referral-ocr/constants"
	"github.com/intakehq/referral-ocr/internal/entity"
)

// flagCheck inspects the document and the normalized text it came from.
// Checks are deterministic keyword and field tests; the same inputs always
// raise the same flags.
type flagCheck struct {
	flag constants.Flag
	test func(e *Engine, doc entity.Document, lower string) bool
}

var referralMarkers = []string{"referral", "sleep study", "polysomnogram", "order", "requested"}

var dmeMarkers = []string{"e0601", "e0470", "e0471", "e0561", "dme", "cpap supplies", "durable medical equipment"}

var safetyMarkers = []string{"fall risk", "oxygen dependent", "seizure", "suicidal", "violent"}

var medicationMarkers = []string{"warfarin", "coumadin", "insulin", "blood thinner", "opioid", "narcotic"}

var ppeMarkers = []string{"isolation", "mrsa", "c. diff", "covid", "droplet precautions", "contact precautions"}

var communicationMarkers = []string{"interpreter", "hearing impaired", "deaf", "non-english", "translator"}

var accommodationMarkers = []string{"accommodation", "bariatric", "service animal", "caregiver must"}

var mobilityMarkers = []string{"wheelchair", "walker", "bed bound", "cane", "mobility"}

var historyMarkers = []string{"prior sleep study", "previous sleep study", "history of osa", "prior psg"}

var complianceMarkers = []string{"non-compliant", "noncompliant", "not compliant", "compliance issue", "stopped using cpap"}

var expiredMarkers = []string{"insurance expired", "coverage terminated", "policy expired", "coverage lapsed"}

var authMarkers = []string{"authorization required", "auth required", "prior auth", "pre-authorization", "precert"}

var pediatricCPT = map[string]struct{}{"95782": {}, "95783": {}}

var inLabCPT = map[string]struct{}{"95810": {}, "95811": {}}

var flagChecks = []flagCheck{
	{constants.FlagNotReferralDocument, func(_ *Engine, _ entity.Document, lower string) bool {
		return !containsAny(lower, referralMarkers)
	}},
	{constants.FlagNoTestOrderFound, func(_ *Engine, doc entity.Document, _ string) bool {
		return len(doc.Procedure.CPT) == 0 && doc.Procedure.StudyRequested == ""
	}},
	{constants.FlagWrongTestOrdered, func(_ *Engine, doc entity.Document, lower string) bool {
		if !strings.Contains(lower, "home sleep") {
			return false
		}
		for _, c := range doc.Procedure.CPT {
			if _, ok := inLabCPT[c]; ok {
				return true
			}
		}
		return false
	}},
	{constants.FlagTitrationClinicalReview, func(_ *Engine, doc entity.Document, lower string) bool {
		if strings.Contains(lower, "titration") {
			return true
		}
		for _, c := range doc.Procedure.CPT {
			if c == "95811" {
				return true
			}
		}
		return false
	}},
	{constants.FlagMissingChartNotes, func(_ *Engine, doc entity.Document, _ string) bool {
		return doc.Clinical.PrimaryDiagnosis == "" && len(doc.Clinical.Symptoms) == 0
	}},
	{constants.FlagMissingPatientInfo, func(_ *Engine, doc entity.Document, _ string) bool {
		return doc.Patient.LastName == "" || doc.Patient.DOB == ""
	}},
	{constants.FlagInsuranceNotAccepted, func(e *Engine, doc entity.Document, _ string) bool {
		carrier := strings.ToLower(doc.Insurance.Primary.Carrier)
		if carrier == "" {
			return false
		}
		for _, denied := range e.deniedCarriers {
			if strings.Contains(carrier, denied) {
				return true
			}
		}
		return false
	}},
	{constants.FlagInsuranceExpired, func(_ *Engine, _ entity.Document, lower string) bool {
		return containsAny(lower, expiredMarkers)
	}},
	{constants.FlagAuthorizationRequired, func(_ *Engine, doc entity.Document, lower string) bool {
		if doc.Insurance.Primary.AuthorizationNumber != "" {
			return false
		}
		return containsAny(lower, authMarkers)
	}},
	{constants.FlagDMEMentioned, func(_ *Engine, _ entity.Document, lower string) bool {
		return containsAny(lower, dmeMarkers)
	}},
	{constants.FlagCPAPComplianceIssue, func(_ *Engine, _ entity.Document, lower string) bool {
		return containsAny(lower, complianceMarkers)
	}},
	{constants.FlagPediatricHandling, func(_ *Engine, doc entity.Document, lower string) bool {
		for _, c := range doc.Procedure.CPT {
			if _, ok := pediatricCPT[c]; ok {
				return true
			}
		}
		return strings.Contains(lower, "pediatric")
	}},
	{constants.FlagMobilityAlert, func(_ *Engine, _ entity.Document, lower string) bool {
		return containsAny(lower, mobilityMarkers)
	}},
	{constants.FlagSafetyAlert, func(_ *Engine, _ entity.Document, lower string) bool {
		return containsAny(lower, safetyMarkers)
	}},
	{constants.FlagContradictoryInfo, func(_ *Engine, doc entity.Document, lower string) bool {
		return contradictorySleepiness(doc, lower)
	}},
	{constants.FlagFutureReferralDate, func(e *Engine, doc entity.Document, _ string) bool {
		return isFutureDate(doc.DocumentDate, e.now())
	}},
	{constants.FlagPPERequired, func(_ *Engine, _ entity.Document, lower string) bool {
		return containsAny(lower, ppeMarkers)
	}},
	{constants.FlagCommunicationNeeds, func(_ *Engine, _ entity.Document, lower string) bool {
		return containsAny(lower, communicationMarkers)
	}},
	{constants.FlagSpecialAccommodations, func(_ *Engine, _ entity.Document, lower string) bool {
		return containsAny(lower, accommodationMarkers)
	}},
	{constants.FlagMedicationAlert, func(_ *Engine, _ entity.Document, lower string) bool {
		return containsAny(lower, medicationMarkers)
	}},
	{constants.FlagHistoryAlert, func(_ *Engine, _ entity.Document, lower string) bool {
		return containsAny(lower, historyMarkers)
	}},
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// contradictorySleepiness fires when the form both reports a high Epworth
// score and states the patient denies daytime sleepiness.
func contradictorySleepiness(doc entity.Document, lower string) bool {
	score, err := strconv.Atoi(doc.Clinical.EpworthScore)
	if err != nil || score < 10 {
		return false
	}
	return strings.Contains(lower, "no daytime sleepiness") ||
		strings.Contains(lower, "denies sleepiness") ||
		strings.Contains(lower, "denies daytime sleepiness")
}

// isFutureDate accepts M/D/YYYY and M/D/YY forms; unparsable dates never
// raise the flag.
func isFutureDate(s string, now time.Time) bool {
	if s == "" {
		return false
	}
	for _, layout := range []string{"1/2/2006", "1/2/06"} {
		if d, err := time.Parse(layout, s); err == nil {
			return d.After(now.AddDate(0, 0, 1))
		}
	}
	return false
}
