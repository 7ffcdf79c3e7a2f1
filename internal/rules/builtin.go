package rules

// BuiltinSpecs returns the default extraction rules, tuned against scanned
// sleep-medicine referral forms. Overlay packs layer on top of these at
// higher priority when a site's forms deviate.
func BuiltinSpecs() []Spec {
	return []Spec{
		// Patient identity.
		{
			Name:        "patient-name-split",
			Field:       "patient.last_name",
			Pattern:     `Patient(?:\s*Name)?\s*:?\s*([A-Z][a-zA-Z'-]+)\s*,\s*[A-Z][a-zA-Z'-]+`,
			Postprocess: []string{"trim"},
			Priority:    60,
		},
		{
			Name:        "patient-first-name-split",
			Field:       "patient.first_name",
			Pattern:     `Patient(?:\s*Name)?\s*:?\s*[A-Z][a-zA-Z'-]+\s*,\s*([A-Z][a-zA-Z'-]+)`,
			Postprocess: []string{"trim"},
			Priority:    60,
		},
		{
			Name:        "patient-first-name",
			Field:       "patient.first_name",
			Pattern:     `Patient(?:\s*Name)?\s*:?\s*([A-Z][a-zA-Z'-]+)\s+[A-Z][a-zA-Z'-]+`,
			Postprocess: []string{"trim"},
			Priority:    50,
		},
		{
			Name:        "patient-last-name",
			Field:       "patient.last_name",
			Pattern:     `Patient(?:\s*Name)?\s*:?\s*[A-Z][a-zA-Z'-]+\s+([A-Z][a-zA-Z'-]+)`,
			Postprocess: []string{"trim"},
			Priority:    50,
		},
		{
			Name:        "patient-dob",
			Field:       "patient.dob",
			Pattern:     `(?:DOB|Date\s*of\s*Birth)\s*:?\s*(\d{1,2}/\d{1,2}/\d{2,4})`,
			Postprocess: []string{"trim"},
			Priority:    50,
		},
		{
			Name:        "patient-mrn",
			Field:       "patient.mrn",
			Pattern:     `MRN\s*:?\s*#?\s*([A-Z0-9-]{4,})`,
			Postprocess: []string{"trim", "upper"},
			Priority:    50,
		},
		{
			Name:        "patient-phone",
			Field:       "patient.phone_home",
			Pattern:     `(?:Home\s*)?Phone\s*(?:\(H\))?\s*:?\s*([\d\s()./-]{10,})`,
			Postprocess: []string{"nanp_phone"},
			Priority:    50,
		},

		// Vitals.
		{
			Name:        "patient-height",
			Field:       "patient.height",
			Pattern:     `Height\s*:?\s*(\d\s*'\s*\d{1,2}\s*"?)`,
			Postprocess: []string{"strip_spaces"},
			Priority:    50,
		},
		{
			Name:        "patient-weight",
			Field:       "patient.weight",
			Pattern:     `Weight\s*:?\s*(\d{2,3})\s*(?:lbs?|pounds)?`,
			Postprocess: []string{"trim"},
			Priority:    50,
		},
		{
			Name:        "patient-bmi",
			Field:       "patient.bmi",
			Pattern:     `BMI\s*:?\s*(\d{1,2}(?:\.\d{1,2})?)`,
			Postprocess: []string{"trim"},
			Priority:    50,
		},
		{
			Name:        "patient-blood-pressure",
			Field:       "patient.blood_pressure",
			Pattern:     `(?:BP|Blood\s*Pressure)\s*:?\s*(\d{2,3}/\d{2,3})`,
			Postprocess: []string{"trim"},
			Priority:    50,
		},

		// Insurance, scoped to the primary and secondary sections.
		{
			Name:        "primary-carrier",
			Field:       "insurance.primary.carrier",
			Pattern:     `(?:Carrier|Insurance|Plan)\s*:?\s*([A-Za-z][A-Za-z0-9 .&/-]{2,40})`,
			Section:     `Insurance\s*\(?Primary\)?|Primary\s*Insurance`,
			Postprocess: []string{"trim", "collapse_spaces"},
			Priority:    50,
		},
		{
			Name:        "primary-member-id",
			Field:       "insurance.primary.member_id",
			Pattern:     `(?:Member|Policy|ID)\s*(?:ID|#|No\.?)?\s*:?\s*([A-Z0-9-]{5,20})`,
			Section:     `Insurance\s*\(?Primary\)?|Primary\s*Insurance`,
			Postprocess: []string{"strip_spaces", "upper"},
			Priority:    50,
		},
		{
			Name:        "primary-group",
			Field:       "insurance.primary.group",
			Pattern:     `Group\s*(?:#|No\.?|Number)?\s*:?\s*([A-Z0-9-]{2,20})`,
			Section:     `Insurance\s*\(?Primary\)?|Primary\s*Insurance`,
			Postprocess: []string{"strip_spaces", "upper"},
			Priority:    50,
		},
		{
			Name:        "primary-authorization",
			Field:       "insurance.primary.authorization_number",
			Pattern:     `Auth(?:orization)?\s*(?:#|No\.?|Number)?\s*:?\s*([A-Z0-9-]{4,20})`,
			Postprocess: []string{"strip_spaces", "upper"},
			Priority:    50,
		},
		{
			Name:        "insurance-verified",
			Field:       "insurance.primary.insurance_verified",
			Pattern:     `Insurance\s*Verified\s*:?\s*(Yes|No|Y|N|Pending)`,
			Postprocess: []string{"trim"},
			Priority:    50,
		},
		{
			Name:        "secondary-carrier",
			Field:       "insurance.secondary.carrier",
			Pattern:     `(?:Carrier|Insurance|Plan)\s*:?\s*([A-Za-z][A-Za-z0-9 .&/-]{2,40})`,
			Section:     `Insurance\s*\(?Secondary\)?|Secondary\s*Insurance`,
			Postprocess: []string{"trim", "collapse_spaces"},
			Priority:    50,
		},
		{
			Name:        "secondary-member-id",
			Field:       "insurance.secondary.member_id",
			Pattern:     `(?:Member|Policy|ID)\s*(?:ID|#|No\.?)?\s*:?\s*([A-Z0-9-]{5,20})`,
			Section:     `Insurance\s*\(?Secondary\)?|Secondary\s*Insurance`,
			Postprocess: []string{"strip_spaces", "upper"},
			Priority:    50,
		},

		// Referring physician.
		{
			Name:        "physician-name",
			Field:       "physician.name",
			Pattern:     `(?:Referring\s*)?(?:Physician|Provider|Doctor)\s*:?\s*((?:Dr\.?\s*)?[A-Z][a-zA-Z'.-]+(?:\s+[A-Z][a-zA-Z'.-]+){0,2}(?:\s*,\s*(?:MD|DO|NP|PA(?:-C)?))?)`,
			Postprocess: []string{"trim", "collapse_spaces"},
			Priority:    50,
		},
		{
			Name:        "physician-npi",
			Field:       "physician.npi",
			Pattern:     `NPI\s*(?:#|No\.?)?\s*:?\s*(\d{10})\b`,
			Postprocess: []string{"trim"},
			Priority:    50,
		},
		{
			Name:        "physician-specialty",
			Field:       "physician.specialty",
			Pattern:     `Specialty\s*:?\s*([A-Za-z][A-Za-z /-]{2,40})`,
			Postprocess: []string{"trim", "collapse_spaces"},
			Priority:    50,
		},
		{
			Name:        "physician-practice",
			Field:       "physician.practice",
			Pattern:     `(?:Practice|Clinic|Facility)\s*(?:Name)?\s*:?\s*([A-Za-z][A-Za-z0-9 .&,'/-]{2,60})`,
			Postprocess: []string{"trim", "collapse_spaces"},
			Priority:    50,
		},
		{
			Name:        "clinic-phone",
			Field:       "physician.clinic_phone",
			Pattern:     `(?:Clinic|Office)\s*Phone\s*:?\s*([\d\s()./-]{10,})`,
			Postprocess: []string{"nanp_phone"},
			Priority:    50,
		},
		{
			Name:        "physician-fax",
			Field:       "physician.fax",
			Pattern:     `Fax\s*(?:#|No\.?)?\s*:?\s*([\d\s()./-]{10,})`,
			Postprocess: []string{"nanp_phone"},
			Priority:    50,
		},

		// Procedure.
		{
			Name:        "cpt-code",
			Field:       "procedure.cpt",
			Pattern:     `\b(9\d{4})\b`,
			Postprocess: []string{"trim"},
			Priority:    50,
		},
		{
			Name:        "study-requested",
			Field:       "procedure.study_requested",
			Pattern:     `(?:Study|Test|Procedure)\s*(?:Requested|Ordered)\s*:?\s*([A-Za-z0-9][A-Za-z0-9 /().-]{2,60})`,
			Postprocess: []string{"trim", "collapse_spaces"},
			Priority:    50,
		},
		{
			Name:        "priority",
			Field:       "procedure.priority",
			Pattern:     `(?:Priority|Urgency)\s*:?\s*(STAT|Urgent|Routine|Expedited)`,
			Postprocess: []string{"trim"},
			Priority:    50,
		},
		{
			Name:        "indication",
			Field:       "procedure.indication",
			Pattern:     `(?:Indication|Reason\s*for\s*(?:study|referral))\s*:?\s*([A-Za-z0-9][^\n]{2,120})`,
			Postprocess: []string{"trim", "collapse_spaces"},
			Priority:    50,
		},

		// Clinical.
		{
			Name:        "primary-diagnosis",
			Field:       "clinical.primary_diagnosis",
			Pattern:     `(?:Primary\s*)?Diagnosis\s*:?\s*([A-Za-z0-9][^\n]{2,120})`,
			Postprocess: []string{"trim", "collapse_spaces"},
			Priority:    50,
		},
		{
			Name:        "epworth-score",
			Field:       "clinical.epworth_score",
			Pattern:     `Epworth\s*(?:Sleepiness)?\s*(?:Scale|Score)?\s*:?\s*(\d{1,2})\s*(?:/\s*24)?`,
			Postprocess: []string{"trim"},
			Priority:    50,
		},
		{
			Name:        "neck-circumference",
			Field:       "clinical.neck_circumference",
			Pattern:     `Neck\s*(?:circumference)?\s*:?\s*(\d{1,2}(?:\.\d)?)\s*(?:in(?:ches)?|")?`,
			Postprocess: []string{"trim"},
			Priority:    50,
		},
		{
			Name:        "symptoms",
			Field:       "clinical.symptoms",
			Pattern:     `Symptoms?\s*:?\s*([^\n]{3,200})`,
			Postprocess: []string{"trim"},
			Priority:    50,
		},

		// Dates.
		{
			Name:        "document-date",
			Field:       "document_date",
			Pattern:     `(?:Referral\s*/?\s*order\s*date|Document\s*Date)\s*:?\s*(\d{1,2}/\d{1,2}/\d{2,4})`,
			Postprocess: []string{"trim"},
			Priority:    50,
		},
		{
			Name:        "intake-date",
			Field:       "intake_date",
			Pattern:     `Intake\s*(?:/\s*processing)?\s*(?:date)?\s*:?\s*(\d{1,2}/\d{1,2}/\d{2,4})`,
			Postprocess: []string{"trim"},
			Priority:    50,
		},
	}
}
