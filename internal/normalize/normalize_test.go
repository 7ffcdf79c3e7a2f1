package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefault(t *testing.T) *Normalizer {
	t.Helper()
	n, err := New(DefaultConfig())
	require.NoError(t, err)
	return n
}

func TestNormalize_Whitespace(t *testing.T) {
	n := newDefault(t)

	got := n.Normalize("Patient:  John   Doe \r\nDOB: 01/15/1980  \n")
	assert.Equal(t, "Patient: John Doe\nDOB: 01/15/1980\n", got)
}

func TestNormalize_CurlyQuotes(t *testing.T) {
	n := newDefault(t)

	assert.Equal(t, `Patient's "study"`, n.Normalize("Patient’s “study”"))
}

func TestNormalize_Misspellings(t *testing.T) {
	n := newDefault(t)

	got := n.Normalize("Weight: 210 Ibs, Olstructive sleep apnea, neck circumferance 17")
	assert.Contains(t, got, "210 lbs")
	assert.Contains(t, got, "Obstructive sleep apnea")
	assert.Contains(t, got, "circumference")
}

func TestNormalize_CrossLineNumbers(t *testing.T) {
	n := newDefault(t)

	got := n.Normalize("Member ID: 12345\n6789")
	assert.Contains(t, got, "123456789")
}

func TestNormalize_SpacedLetters(t *testing.T) {
	n := newDefault(t)

	assert.Contains(t, n.Normalize("B l o o d Pressure: 120/80"), "Blood Pressure")
	// Two-word sequences must survive.
	assert.Equal(t, "a b", n.Normalize("a b"))
}

func TestNormalize_Unglue(t *testing.T) {
	n := newDefault(t)

	got := n.Normalize("Requested: cpapbipap titration")
	assert.Contains(t, got, "CPAP/BiPAP")
}

func TestNormalize_GluedDateRepair(t *testing.T) {
	n := newDefault(t)

	got := n.Normalize("Referral/order date: 00402/002024")
	assert.Contains(t, got, "04/02/2024")
}

func TestNormalize_LeadingZeroYear(t *testing.T) {
	n := newDefault(t)

	assert.Contains(t, n.Normalize("DOB: 01/15/001980"), "01/15/1980")
}

func TestNormalize_CenturyPivot(t *testing.T) {
	n := newDefault(t)

	// <= pivot expands to 20YY, above it to 19YY.
	assert.Contains(t, n.Normalize("Date: 04/02/024"), "04/02/2024")
	assert.Contains(t, n.Normalize("DOB: 01/15/085"), "01/15/1985")

	custom := DefaultConfig()
	custom.CenturyPivot = 50
	nc, err := New(custom)
	require.NoError(t, err)
	assert.Contains(t, nc.Normalize("Date: 04/02/045"), "04/02/2045")
}

func TestNormalize_BloodPressureSpacing(t *testing.T) {
	n := newDefault(t)

	assert.Contains(t, n.Normalize("BP: 124 / 80"), "124/80")
}

func TestNormalize_HeightArtifact(t *testing.T) {
	n := newDefault(t)

	assert.Contains(t, n.Normalize(`Height: 5'5'0"`), `5'0"`)
	// Distinct digits are not a duplication artifact.
	assert.Contains(t, n.Normalize(`Height: 5'6'0"`), `5'6'0"`)
}

func TestNormalize_CPTCorrections(t *testing.T) {
	n := newDefault(t)

	assert.Contains(t, n.Normalize("CPT: 958100"), "95810")
}

func TestNormalize_Idempotent(t *testing.T) {
	n := newDefault(t)

	samples := []string{
		"Referral/order date: 00402/002024\nB l o o d Pressure: 124 / 80",
		"Patient:  Jane   Roe\r\nDOB: 01/15/085  \nWeight: 180 Ibs",
		"Member ID: 12345\n6789 cpapbipap",
		"",
		"already clean text with nothing to fix",
	}
	for _, s := range samples {
		once := n.Normalize(s)
		assert.Equal(t, once, n.Normalize(once), "normalize must be idempotent for %q", s)
	}
}

func TestNormalize_MalformedInputNoPanic(t *testing.T) {
	n := newDefault(t)

	assert.NotPanics(t, func() {
		n.Normalize("\x00\xff garbled \n\n\n 0000/0000/0000")
	})
}

func TestNew_RejectsBadUngluePattern(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UngluePhrases = append(cfg.UngluePhrases, UngluePair{Pattern: "([", Replacement: "x"})

	_, err := New(cfg)
	require.Error(t, err)
}
