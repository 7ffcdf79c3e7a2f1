package normalize

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// UngluePair splits words the OCR engine fused together. Pattern is a
// regular expression; Replacement may use capture-group references.
type UngluePair struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// Config enumerates the data-driven parts of the normalizer. The pass order
// itself is fixed; only the substitution tables vary per deployment.
type Config struct {
	// DateLabels are the field labels eligible for glued-date repair,
	// e.g. "Referral/order date".
	DateLabels []string `yaml:"date_labels"`

	// Misspellings maps OCR misreads to corrections, applied whole-word
	// and case-insensitively.
	Misspellings map[string]string `yaml:"misspellings"`

	UngluePhrases []UngluePair `yaml:"unglue_phrases"`

	// CPTCorrections repairs known OCR slips in procedure codes, e.g. a
	// six-digit misread of a valid five-digit code.
	CPTCorrections map[string]string `yaml:"cpt_corrections"`

	// CenturyPivot controls 2-digit year expansion: a year at or below the
	// pivot maps to 20YY, above it to 19YY. The threshold is a heuristic
	// pending product confirmation, so it stays configurable.
	CenturyPivot int `yaml:"century_pivot"`
}

// DefaultConfig returns the substitution tables observed on production
// referral scans.
func DefaultConfig() Config {
	return Config{
		DateLabels: []string{
			`Referral\s*/?\s*order\s*date`,
			`Document\s*Date`,
			`Intake\s*/?\s*processing`,
			`Intake\s*Date`,
			`DOB`,
			`Date\s*of\s*Birth`,
		},
		Misspellings: map[string]string{
			"Ibs":           "lbs",
			"Puimonary":     "Pulmonary",
			"Speciallst":    "Specialist",
			"Deseription":   "Description",
			"Olstructive":   "Obstructive",
			"circumferance": "circumference",
			"noring":        "snoring",
			"patieni":       "patient",
			"patlent":       "patient",
			"dlagnosis":     "diagnosis",
			"lnsurance":     "insurance",
			"epwarth":       "epworth",
			"malampeti":     "mallampati",
		},
		UngluePhrases: []UngluePair{
			{Pattern: `(?i)\bcpapbipap\b`, Replacement: "CPAP/BiPAP"},
			{Pattern: `(?i)\bsleepstudy\b`, Replacement: "sleep study"},
			{Pattern: `(?i)\bhomesleep\b`, Replacement: "home sleep"},
			{Pattern: `(?i)\bmemberid\b`, Replacement: "member id"},
		},
		CPTCorrections: map[string]string{
			"958100": "95810",
			"958110": "95811",
			"95810O": "95810",
			"9581l":  "95811",
		},
		CenturyPivot: 30,
	}
}

// LoadConfig reads a YAML config file and fills unset tables from defaults.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read normalize config: %w", err)
	}
	cfg := Config{}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse normalize config: %w", err)
	}
	def := DefaultConfig()
	if len(cfg.DateLabels) == 0 {
		cfg.DateLabels = def.DateLabels
	}
	if cfg.Misspellings == nil {
		cfg.Misspellings = def.Misspellings
	}
	if cfg.UngluePhrases == nil {
		cfg.UngluePhrases = def.UngluePhrases
	}
	if cfg.CPTCorrections == nil {
		cfg.CPTCorrections = def.CPTCorrections
	}
	if cfg.CenturyPivot == 0 {
		cfg.CenturyPivot = def.CenturyPivot
	}
	return cfg, nil
}
