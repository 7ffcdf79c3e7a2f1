package entity

// Document is the structured record recovered from one referral form.
//
// Field presence: an empty string means the field was not found in the OCR
// text and is omitted from JSON output. The extractor never stores an empty
// post-processed value, so "" is unambiguous here; consumers render absent
// fields as "Not found".
type Document struct {
	Patient   Patient   `json:"patient"`
	Insurance Insurance `json:"insurance"`
	Physician Physician `json:"physician"`
	Procedure Procedure `json:"procedure"`
	Clinical  Clinical  `json:"clinical"`

	DocumentDate     string `json:"document_date,omitempty"`
	IntakeDate       string `json:"intake_date,omitempty"`
	ExtractionMethod string `json:"extraction_method,omitempty"`

	// OverallConfidence is set when the extractor computed its own
	// document-level confidence; it takes precedence over the raw OCR
	// engine score during assessment.
	OverallConfidence *float64 `json:"overall_confidence,omitempty"`
}

type Patient struct {
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	DOB           string `json:"dob,omitempty"`
	MRN           string `json:"mrn,omitempty"`
	PhoneHome     string `json:"phone_home,omitempty"`
	Height        string `json:"height,omitempty"`
	Weight        string `json:"weight,omitempty"`
	BMI           string `json:"bmi,omitempty"`
	BloodPressure string `json:"blood_pressure,omitempty"`
}

type Insurance struct {
	Primary   Plan `json:"primary"`
	Secondary Plan `json:"secondary"`
}

type Plan struct {
	Carrier             string `json:"carrier,omitempty"`
	MemberID            string `json:"member_id,omitempty"`
	Group               string `json:"group,omitempty"`
	AuthorizationNumber string `json:"authorization_number,omitempty"`
	Verified            string `json:"insurance_verified,omitempty"`
}

type Physician struct {
	Name        string `json:"name,omitempty"`
	Specialty   string `json:"specialty,omitempty"`
	NPI         string `json:"npi,omitempty"`
	Practice    string `json:"practice,omitempty"`
	ClinicPhone string `json:"clinic_phone,omitempty"`
	Fax         string `json:"fax,omitempty"`
}

type Procedure struct {
	// CPT accumulates every distinct code found, in discovery order.
	CPT            []string `json:"cpt,omitempty"`
	StudyRequested string   `json:"study_requested,omitempty"`
	Priority       string   `json:"priority,omitempty"`
	Indication     string   `json:"indication,omitempty"`
}

type Clinical struct {
	PrimaryDiagnosis  string   `json:"primary_diagnosis,omitempty"`
	EpworthScore      string   `json:"epworth_score,omitempty"`
	NeckCircumference string   `json:"neck_circumference,omitempty"`
	Symptoms          []string `json:"symptoms,omitempty"`
}
