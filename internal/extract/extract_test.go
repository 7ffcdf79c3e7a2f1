package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intakehq/referral-ocr/internal/rules"
)

func newStore(t *testing.T, specs ...rules.Spec) *rules.Store {
	t.Helper()
	s := rules.NewEmptyStore()
	require.NoError(t, s.Add(specs...))
	return s
}

func TestExtract_FirstNonEmptyWins(t *testing.T) {
	store := newStore(t,
		rules.Spec{
			Name: "dob-labeled", Field: "patient.dob",
			Pattern: `DOB\s*:?\s*(\d{1,2}/\d{1,2}/\d{4})`, Priority: 100,
		},
		rules.Spec{
			Name: "dob-bare", Field: "patient.dob",
			Pattern: `(\d{1,2}/\d{1,2}/\d{4})`, Priority: 50,
		},
	)
	e := New(store, nil)

	doc := e.Extract("Visit: 03/01/2024\nDOB: 01/15/1980")
	assert.Equal(t, "01/15/1980", doc.Patient.DOB)
	assert.Equal(t, ExtractionMethod, doc.ExtractionMethod)
}

func TestExtract_PriorityOverridesBuiltin(t *testing.T) {
	store := rules.NewStore()
	require.NoError(t, store.Add(rules.Spec{
		Name: "dob-site", Field: "patient.dob",
		Pattern: `Born\s*on\s*(\d{1,2}/\d{1,2}/\d{4})`, Priority: 100,
	}))
	e := New(store, nil)

	doc := e.Extract("DOB: 02/02/1990\nBorn on 01/15/1980")
	assert.Equal(t, "01/15/1980", doc.Patient.DOB)
}

func TestExtract_SectionScoping(t *testing.T) {
	store := rules.NewStore()
	e := New(store, nil)

	text := "Insurance (Primary)\nCarrier: Blue Cross\nMember ID: ABC123456\n\n" +
		"Insurance (Secondary)\nCarrier: Aetna\nMember ID: XYZ987654\n"
	doc := e.Extract(text)

	assert.Equal(t, "Blue Cross", doc.Insurance.Primary.Carrier)
	assert.Equal(t, "ABC123456", doc.Insurance.Primary.MemberID)
	assert.Equal(t, "Aetna", doc.Insurance.Secondary.Carrier)
	assert.Equal(t, "XYZ987654", doc.Insurance.Secondary.MemberID)
}

func TestExtract_SectionMissingSkipsRule(t *testing.T) {
	store := newStore(t, rules.Spec{
		Name: "carrier", Field: "insurance.primary.carrier",
		Pattern: `Carrier\s*:?\s*([A-Za-z ]+)`,
		Section: `Insurance\s*\(Primary\)`,
	})
	e := New(store, nil)

	doc := e.Extract("Carrier: Blue Cross")
	assert.Empty(t, doc.Insurance.Primary.Carrier)
	assert.Empty(t, doc.ExtractionMethod)
}

func TestExtract_CPTAccumulation(t *testing.T) {
	store := rules.NewStore()
	e := New(store, nil)

	doc := e.Extract("CPT 95810 ordered. Alternate: 95811. Repeat of 95810.")
	assert.Equal(t, []string{"95810", "95811"}, doc.Procedure.CPT)
}

func TestExtract_SymptomsSplit(t *testing.T) {
	store := rules.NewStore()
	e := New(store, nil)

	doc := e.Extract("Symptoms: snoring, daytime fatigue; witnessed apneas")
	assert.Equal(t, []string{"snoring", "daytime fatigue", "witnessed apneas"}, doc.Clinical.Symptoms)
}

func TestExtract_EmptyPostprocessedValueDoesNotWin(t *testing.T) {
	store := newStore(t,
		rules.Spec{
			Name: "phone-high", Field: "patient.phone_home",
			Pattern:     `Phone\s*:?\s*([\d-]+)`,
			Postprocess: []string{"nanp_phone"},
			Priority:    100,
		},
		rules.Spec{
			Name: "phone-low", Field: "patient.phone_home",
			Pattern:     `Contact\s*:?\s*([\d()\s-]+)`,
			Postprocess: []string{"nanp_phone"},
			Priority:    50,
		},
	)
	e := New(store, nil)

	// The high-priority rule matches but yields too few digits; the
	// low-priority rule supplies the value.
	doc := e.Extract("Phone: 555-0014\nContact: (602) 555-0014")
	assert.Equal(t, "(602) 555-0014", doc.Patient.PhoneHome)
}

func TestExtract_DuplicateFaxCollapsed(t *testing.T) {
	store := rules.NewStore()

	e := New(store, nil)
	doc := e.Extract("Clinic Phone: (602) 555-0100\nFax: 602-555-0100")
	assert.Equal(t, "(602) 555-0100", doc.Physician.ClinicPhone)
	assert.Empty(t, doc.Physician.Fax)

	e.SamePhoneFaxPolicy = false
	doc = e.Extract("Clinic Phone: (602) 555-0100\nFax: 602-555-0100")
	assert.Equal(t, "(602) 555-0100", doc.Physician.Fax)
}

func TestExtract_NoMatchesYieldsEmptyDocument(t *testing.T) {
	store := rules.NewStore()
	e := New(store, nil)

	doc := e.Extract("completely unrelated text")
	assert.Empty(t, doc.ExtractionMethod)
	assert.Empty(t, doc.Patient.LastName)
	assert.Nil(t, doc.Procedure.CPT)
}
