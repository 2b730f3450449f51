package models_test

import (
	"testing"

	"github.com/myrjola/cropdoc/internal/models"
	"github.com/stretchr/testify/require"
)

func validDiagnosis() models.Diagnosis {
	return models.Diagnosis{
		Crop:            "Tomato",
		Disease:         "Late Blight",
		Confidence:      0.98,
		IsPlant:         true,
		Description:     "Devastating oomycete infection.",
		Symptoms:        []string{"Dark water-soaked spots"},
		Recommendations: []string{"Apply copper-based fungicide"},
		Severity:        models.SeverityHigh,
	}
}

func TestDiagnosis_Validate(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*models.Diagnosis)
		wantErr       bool
		wantCondition models.Condition
	}{
		{
			name:          "valid diseased diagnosis",
			mutate:        func(_ *models.Diagnosis) {},
			wantCondition: models.ConditionDiseased,
		},
		{
			name:          "healthy sentinel is case-insensitive",
			mutate:        func(d *models.Diagnosis) { d.Disease = "HEALTHY" },
			wantCondition: models.ConditionHealthy,
		},
		{
			name:    "unknown severity",
			mutate:  func(d *models.Diagnosis) { d.Severity = "Catastrophic" },
			wantErr: true,
		},
		{
			name:    "confidence above one",
			mutate:  func(d *models.Diagnosis) { d.Confidence = 1.5 },
			wantErr: true,
		},
		{
			name:    "negative confidence",
			mutate:  func(d *models.Diagnosis) { d.Confidence = -0.1 },
			wantErr: true,
		},
		{
			name:    "nil symptoms",
			mutate:  func(d *models.Diagnosis) { d.Symptoms = nil },
			wantErr: true,
		},
		{
			name:    "nil recommendations",
			mutate:  func(d *models.Diagnosis) { d.Recommendations = nil },
			wantErr: true,
		},
		{
			name:          "empty lists are well-formed",
			mutate:        func(d *models.Diagnosis) { d.Symptoms = []string{}; d.Recommendations = []string{} },
			wantCondition: models.ConditionDiseased,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDiagnosis()
			tt.mutate(&d)

			err := d.Validate()

			if tt.wantErr {
				require.ErrorIs(t, err, models.ErrInvalidDiagnosis)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantCondition, d.Condition)
		})
	}
}
