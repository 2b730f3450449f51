package models

import (
	"log/slog"
	"strings"

	"github.com/myrjola/cropdoc/internal/errors"
)

// Severity grades how badly the detected condition affects the crop.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityModerate Severity = "Moderate"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// Valid reports whether s is one of the four known severity grades.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityModerate, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Condition tags the overall health verdict so that consumers don't have to
// compare the disease name against the "Healthy" sentinel themselves.
type Condition string

const (
	ConditionHealthy  Condition = "healthy"
	ConditionDiseased Condition = "diseased"
)

var ErrInvalidDiagnosis = errors.NewSentinel("diagnosis failed validation")

// Diagnosis is the structured verdict for a single analyzed image.
//
// The JSON tags mirror the wire schema of the analysis capability. All fields are
// required on the wire; Validate enforces the value constraints after decoding.
type Diagnosis struct {
	Crop            string   `json:"crop"`
	Disease         string   `json:"disease"`
	Confidence      float64  `json:"confidence"`
	IsPlant         bool     `json:"isPlant"`
	Description     string   `json:"description"`
	Symptoms        []string `json:"symptoms"`
	Recommendations []string `json:"recommendations"`
	Severity        Severity `json:"severity"`

	// Condition is derived from Disease during Validate and not part of the wire schema.
	Condition Condition `json:"-"`
}

// Validate checks the value constraints of a freshly decoded diagnosis and derives
// the health condition tag. The disease name "Healthy" is a sentinel in the wire
// format; it is resolved here exactly once so later branching never string-matches.
func (d *Diagnosis) Validate() error {
	if !d.Severity.Valid() {
		return errors.Wrap(ErrInvalidDiagnosis, "unknown severity", slog.String("severity", string(d.Severity)))
	}
	if d.Confidence < 0 || d.Confidence > 1 {
		return errors.Wrap(ErrInvalidDiagnosis, "confidence out of range", slog.Float64("confidence", d.Confidence))
	}
	if d.Symptoms == nil {
		return errors.Wrap(ErrInvalidDiagnosis, "symptoms missing")
	}
	if d.Recommendations == nil {
		return errors.Wrap(ErrInvalidDiagnosis, "recommendations missing")
	}

	d.Condition = ConditionDiseased
	if strings.EqualFold(d.Disease, "healthy") {
		d.Condition = ConditionHealthy
	}
	return nil
}
