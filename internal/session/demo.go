package session

import (
	"github.com/myrjola/cropdoc/internal/errors"
	"github.com/myrjola/cropdoc/internal/models"
)

// demoResult is the canned report served by the offline demo path.
var demoResult = models.Diagnosis{
	Crop:       "Tomato",
	Disease:    "Late Blight (Phytophthora infestans)",
	Confidence: 0.984,
	IsPlant:    true,
	Severity:   models.SeverityHigh,
	Description: "Late blight is a potentially devastating disease of tomato caused by the oomycete " +
		"Phytophthora infestans. It thrives in cool, wet weather and can rapidly destroy foliage and fruit.",
	Symptoms: []string{
		"Dark, water-soaked spots on leaves",
		"White fungal growth on leaf undersides",
		"Large brown lesions on stems",
		"Firm, dark brown decay on tomato fruit",
	},
	Recommendations: []string{
		"Apply copper-based fungicides immediately",
		"Remove and destroy all infected plant material",
		"Improve air circulation between plants",
		"Use drip irrigation to avoid leaf moisture",
		"Monitor nearby potato crops for similar symptoms",
	},
	Condition: models.ConditionDiseased,
}

// RunDemo injects a canned report straight into success for offline
// demonstration. It is only available from idle, never invokes the diagnostic
// client, and writes nothing to history.
func (o *Orchestrator) RunDemo() (State, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status != StatusIdle {
		return o.snapshot(), errors.Wrap(ErrNotReady, "demo is only available from idle")
	}
	result := demoResult
	o.generation++
	o.status = StatusSuccess
	o.image = nil
	o.result = &result
	o.errState = nil
	o.clearDeepDiveLocked()
	return o.snapshot(), nil
}
