package rules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intakehq/referral-ocr/internal/common"
)

func TestCompile_Defaults(t *testing.T) {
	r, err := Compile(Spec{
		Name:    "dob",
		Field:   "patient.dob",
		Pattern: `DOB\s*:?\s*(\d{1,2}/\d{1,2}/\d{4})`,
		Section: `Patient`,
	})
	require.NoError(t, err)

	assert.Equal(t, "i", r.Spec().Flags)
	assert.Equal(t, DefaultWindow, r.Window())
	assert.True(t, r.Scoped())
}

func TestCompile_RejectsZeroCaptureGroups(t *testing.T) {
	_, err := Compile(Spec{
		Name:    "no-group",
		Field:   "patient.dob",
		Pattern: `DOB\s*:?\s*\d{1,2}/\d{1,2}/\d{4}`,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrValidation))
}

func TestCompile_RejectsUnknownField(t *testing.T) {
	_, err := Compile(Spec{Name: "x", Field: "patient.shoe_size", Pattern: `(\d+)`})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrValidation))
}

func TestCompile_RejectsBadPattern(t *testing.T) {
	_, err := Compile(Spec{Name: "x", Field: "patient.dob", Pattern: `([`})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrValidation))
}

func TestCompile_RejectsUnknownTransform(t *testing.T) {
	_, err := Compile(Spec{
		Name: "x", Field: "patient.dob", Pattern: `(\d+)`,
		Postprocess: []string{"sparkle"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrValidation))
}

func TestStore_PriorityOrder(t *testing.T) {
	s := NewEmptyStore()
	require.NoError(t, s.Add(
		Spec{Name: "low", Field: "patient.dob", Pattern: `(\d+)`, Priority: 50},
		Spec{Name: "high", Field: "patient.dob", Pattern: `(\d+)`, Priority: 100},
		Spec{Name: "low-2", Field: "patient.dob", Pattern: `(\d+)`, Priority: 50},
	))

	snap := s.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "high", snap[0].Name())
	// Equal priorities keep insertion order.
	assert.Equal(t, "low", snap[1].Name())
	assert.Equal(t, "low-2", snap[2].Name())
}

func TestStore_AddIsAtomic(t *testing.T) {
	s := NewEmptyStore()
	err := s.Add(
		Spec{Name: "ok", Field: "patient.dob", Pattern: `(\d+)`},
		Spec{Name: "bad", Field: "patient.dob", Pattern: `no groups`},
	)
	require.Error(t, err)
	assert.Zero(t, s.Len())
}

func TestBuiltinSpecs_AllCompile(t *testing.T) {
	s := NewStore()
	assert.Equal(t, len(BuiltinSpecs()), s.Len())
}

func TestNANPPhone(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"(602) 555-0014", "(602) 555-0014"},
		// Trailing OCR noise digit: the leading ten win.
		{"(602) 555-00147", "(602) 555-0014"},
		// Country code prefix.
		{"1-602-555-0014", "(602) 555-0014"},
		// Leading noise, first valid window wins.
		{"0602 555 0014", "(602) 555-0014"},
		{"555-0014", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NANPPhone(tt.in), "input %q", tt.in)
	}
}

func TestCollapseDuplicateTokens(t *testing.T) {
	assert.Equal(t, "Dr. Jane Smith", collapseDuplicateTokens("Dr. Jane Smith Dr. Jane Smith"))
	assert.Equal(t, "Dr. Jane Smith", collapseDuplicateTokens("Dr. Jane Smith"))
	assert.Equal(t, "a b a c", collapseDuplicateTokens("a b a c"))
}

func TestParsePack(t *testing.T) {
	raw := []byte(`{
		"name": "site-overrides",
		"rules": [
			{"name": "dob-alt", "field": "patient.dob", "pattern": "Born\\s*(\\d{1,2}/\\d{1,2}/\\d{4})", "priority": 100}
		]
	}`)
	p, err := ParsePack(raw)
	require.NoError(t, err)
	assert.Equal(t, "site-overrides", p.Name)
	require.Len(t, p.Rules, 1)

	s := NewEmptyStore()
	require.NoError(t, s.Install(p))
	assert.Equal(t, 1, s.Len())
}

func TestParsePack_RejectsBadShape(t *testing.T) {
	for name, raw := range map[string]string{
		"not json":      `{`,
		"missing rules": `{"name": "x"}`,
		"empty rules":   `{"name": "x", "rules": []}`,
		"unknown key":   `{"name": "x", "rules": [{"name": "r", "field": "patient.dob", "pattern": "(a)", "bogus": 1}]}`,
	} {
		_, err := ParsePack([]byte(raw))
		assert.Error(t, err, name)
		if err != nil {
			assert.True(t, errors.Is(err, common.ErrValidation), name)
		}
	}
}
