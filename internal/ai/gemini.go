package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/myrjola/cropdoc/internal/errors"
	"github.com/myrjola/cropdoc/internal/models"
	"google.golang.org/genai"
)

var (
	// ErrAnalysis marks transport, parse, and schema failures during image analysis.
	ErrAnalysis = errors.NewSentinel("image analysis failed")
	// ErrDeepDive marks transport and parse failures during the grounded treatment lookup.
	ErrDeepDive = errors.NewSentinel("deep-dive lookup failed")
)

const (
	analysisModel = "gemini-3-pro-preview"
	deepDiveModel = "gemini-3-flash-preview"

	// sourceFallbackLabel stands in for grounding sources that arrive without a title.
	sourceFallbackLabel = "Source Link"
)

const analysisPrompt = `Act as an expert Plant Pathologist and Agronomist.
Analyze the provided image of a crop.
1. Determine if the image contains a plant.
2. Identify the crop species.
3. Detect any diseases, pests, or nutrient deficiencies.
4. Provide detailed symptoms and organic/chemical treatment recommendations.
5. Be precise and scientific. If the plant is healthy, state it clearly.
6. If the image is not a plant, set isPlant to false.`

// analysisSchema constrains the model response to the exact diagnosis shape. A
// response that does not deserialize into it is an analysis failure, never a
// partial result.
var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"crop":            {Type: genai.TypeString, Description: "Name of the crop identified"},
		"disease":         {Type: genai.TypeString, Description: "Name of the disease detected, or 'Healthy' if none"},
		"confidence":      {Type: genai.TypeNumber, Description: "Confidence score between 0 and 1"},
		"isPlant":         {Type: genai.TypeBoolean, Description: "Whether the image contains a plant"},
		"description":     {Type: genai.TypeString, Description: "A brief summary of the condition"},
		"symptoms":        {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "List of visual symptoms"},
		"recommendations": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "Step-by-step treatment or prevention actions"},
		"severity":        {Type: genai.TypeString, Description: "Severity level: Low, Moderate, High, Critical"},
	},
	Required: []string{"crop", "disease", "confidence", "isPlant", "description", "symptoms", "recommendations", "severity"},
}

// GeminiClient wraps the vision analysis and search-grounded lookup capabilities.
// It is stateless; every call is a single request with no internal retry.
type GeminiClient struct {
	client *genai.Client
}

func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create genai client")
	}
	return &GeminiClient{client: client}, nil
}

// Analyze classifies a single image into a diagnosis. The response is
// schema-validated at this boundary; any violation surfaces as ErrAnalysis.
func (c *GeminiClient) Analyze(ctx context.Context, image models.Image) (models.Diagnosis, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(analysisPrompt),
			genai.NewPartFromBytes(image.Data, image.MIMEType),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   analysisSchema,
	}

	response, err := c.client.Models.GenerateContent(ctx, analysisModel, contents, config)
	if err != nil {
		return models.Diagnosis{}, errors.Wrap(errors.Join(ErrAnalysis, err), "generate analysis")
	}

	text := response.Text()
	if text == "" {
		return models.Diagnosis{}, errors.Wrap(ErrAnalysis, "empty response from analysis model")
	}

	diagnosis, err := parseDiagnosis([]byte(text))
	if err != nil {
		return models.Diagnosis{}, err
	}
	return diagnosis, nil
}

// DeepDive runs a search-grounded lookup for one recommendation. The subject is
// the composed disease and recommendation text; crop names the affected species.
func (c *GeminiClient) DeepDive(ctx context.Context, crop, subject string) (models.DeepDive, error) {
	prompt := fmt.Sprintf(`Provide a comprehensive treatment protocol for %s affecting %s.
Include:
1. Specific organic treatments (e.g., Neem oil, specific bacteria).
2. Recommended chemical fungicides/pesticides if applicable.
3. Cultural practices to prevent recurrence.
4. Citing reliable agricultural extension sources.`, subject, crop)

	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}
	response, err := c.client.Models.GenerateContent(ctx, deepDiveModel, genai.Text(prompt), config)
	if err != nil {
		return models.DeepDive{}, errors.Wrap(errors.Join(ErrDeepDive, err), "generate deep dive")
	}

	text := response.Text()
	if text == "" {
		return models.DeepDive{}, errors.Wrap(ErrDeepDive, "empty response from deep-dive model")
	}

	return models.DeepDive{
		Text:    text,
		Sources: groundingSources(response),
	}, nil
}

// parseDiagnosis decodes and validates a wire-format diagnosis. Every schema
// field must be present; a missing key is a hard failure, not a partial parse.
func parseDiagnosis(raw []byte) (models.Diagnosis, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return models.Diagnosis{}, errors.Wrap(errors.Join(ErrAnalysis, err), "unmarshal analysis response")
	}
	for _, required := range analysisSchema.Required {
		if _, ok := keys[required]; !ok {
			return models.Diagnosis{}, errors.Wrap(ErrAnalysis, "analysis response missing required field",
				slog.String("field", required))
		}
	}

	var diagnosis models.Diagnosis
	if err := json.Unmarshal(raw, &diagnosis); err != nil {
		return models.Diagnosis{}, errors.Wrap(errors.Join(ErrAnalysis, err), "unmarshal analysis response")
	}
	if err := diagnosis.Validate(); err != nil {
		return models.Diagnosis{}, errors.Wrap(errors.Join(ErrAnalysis, err), "validate analysis response")
	}
	return diagnosis, nil
}

// groundingSources flattens the grounding metadata into citations. Chunks
// without a web reference are skipped; a missing title falls back to a generic
// label.
func groundingSources(response *genai.GenerateContentResponse) []models.Source {
	sources := []models.Source{}
	if len(response.Candidates) == 0 || response.Candidates[0].GroundingMetadata == nil {
		return sources
	}
	for _, chunk := range response.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.Web == nil {
			continue
		}
		title := chunk.Web.Title
		if title == "" {
			title = sourceFallbackLabel
		}
		sources = append(sources, models.Source{Title: title, URI: chunk.Web.URI})
	}
	return sources
}
