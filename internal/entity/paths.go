package entity

// Field paths are the dot-delimited addresses extraction rules bind to.
// Scalar paths hold a single winning value; multi-value paths accumulate
// every distinct match in discovery order.

var scalarSetters = map[string]func(*Document, string){
	"patient.first_name":     func(d *Document, v string) { d.Patient.FirstName = v },
	"patient.last_name":      func(d *Document, v string) { d.Patient.LastName = v },
	"patient.dob":            func(d *Document, v string) { d.Patient.DOB = v },
	"patient.mrn":            func(d *Document, v string) { d.Patient.MRN = v },
	"patient.phone_home":     func(d *Document, v string) { d.Patient.PhoneHome = v },
	"patient.height":         func(d *Document, v string) { d.Patient.Height = v },
	"patient.weight":         func(d *Document, v string) { d.Patient.Weight = v },
	"patient.bmi":            func(d *Document, v string) { d.Patient.BMI = v },
	"patient.blood_pressure": func(d *Document, v string) { d.Patient.BloodPressure = v },

	"insurance.primary.carrier":              func(d *Document, v string) { d.Insurance.Primary.Carrier = v },
	"insurance.primary.member_id":            func(d *Document, v string) { d.Insurance.Primary.MemberID = v },
	"insurance.primary.group":                func(d *Document, v string) { d.Insurance.Primary.Group = v },
	"insurance.primary.authorization_number": func(d *Document, v string) { d.Insurance.Primary.AuthorizationNumber = v },
	"insurance.primary.insurance_verified":   func(d *Document, v string) { d.Insurance.Primary.Verified = v },

	"insurance.secondary.carrier":   func(d *Document, v string) { d.Insurance.Secondary.Carrier = v },
	"insurance.secondary.member_id": func(d *Document, v string) { d.Insurance.Secondary.MemberID = v },
	"insurance.secondary.group":     func(d *Document, v string) { d.Insurance.Secondary.Group = v },

	"physician.name":         func(d *Document, v string) { d.Physician.Name = v },
	"physician.specialty":    func(d *Document, v string) { d.Physician.Specialty = v },
	"physician.npi":          func(d *Document, v string) { d.Physician.NPI = v },
	"physician.practice":     func(d *Document, v string) { d.Physician.Practice = v },
	"physician.clinic_phone": func(d *Document, v string) { d.Physician.ClinicPhone = v },
	"physician.fax":          func(d *Document, v string) { d.Physician.Fax = v },

	"procedure.study_requested": func(d *Document, v string) { d.Procedure.StudyRequested = v },
	"procedure.priority":        func(d *Document, v string) { d.Procedure.Priority = v },
	"procedure.indication":      func(d *Document, v string) { d.Procedure.Indication = v },

	"clinical.primary_diagnosis":  func(d *Document, v string) { d.Clinical.PrimaryDiagnosis = v },
	"clinical.epworth_score":      func(d *Document, v string) { d.Clinical.EpworthScore = v },
	"clinical.neck_circumference": func(d *Document, v string) { d.Clinical.NeckCircumference = v },

	"document_date": func(d *Document, v string) { d.DocumentDate = v },
	"intake_date":   func(d *Document, v string) { d.IntakeDate = v },
}

var multiAppenders = map[string]func(*Document, string){
	"procedure.cpt":     func(d *Document, v string) { d.Procedure.CPT = append(d.Procedure.CPT, v) },
	"clinical.symptoms": func(d *Document, v string) { d.Clinical.Symptoms = append(d.Clinical.Symptoms, v) },
}

var multiGetters = map[string]func(*Document) []string{
	"procedure.cpt":     func(d *Document) []string { return d.Procedure.CPT },
	"clinical.symptoms": func(d *Document) []string { return d.Clinical.Symptoms },
}

// IsFieldPath reports whether path names a known document field.
func IsFieldPath(path string) bool {
	if _, ok := scalarSetters[path]; ok {
		return true
	}
	_, ok := multiAppenders[path]
	return ok
}

// IsMultiValue reports whether path accumulates matches instead of taking a
// single winner.
func IsMultiValue(path string) bool {
	_, ok := multiAppenders[path]
	return ok
}

// SetField assigns a scalar field by path. Returns false for unknown or
// multi-value paths.
func (d *Document) SetField(path, value string) bool {
	set, ok := scalarSetters[path]
	if !ok {
		return false
	}
	set(d, value)
	return true
}

// AppendField accumulates a value on a multi-value path, suppressing exact
// duplicates (case-sensitive equality after postprocessing).
func (d *Document) AppendField(path, value string) bool {
	app, ok := multiAppenders[path]
	if !ok {
		return false
	}
	for _, existing := range multiGetters[path](d) {
		if existing == value {
			return true
		}
	}
	app(d, value)
	return true
}
