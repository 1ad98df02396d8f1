package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vitalens/vitalens/internal/errors"
	"github.com/vitalens/vitalens/internal/metrics"
)

// DentalXrayInput is the input of the dental X-ray flow.
type DentalXrayInput struct {
	PhotoDataURI   string `json:"photoDataUri"`
	PatientDetails string `json:"patientDetails"`
}

// ConfidenceScore is the analysis confidence level.
type ConfidenceScore string

const (
	ConfidenceHigh   ConfidenceScore = "High"
	ConfidenceMedium ConfidenceScore = "Medium"
	ConfidenceLow    ConfidenceScore = "Low"
)

// DentalFinding is one specific finding on the X-ray.
type DentalFinding struct {
	Description string `json:"description"`
}

// DentalXrayOutput merges the text analysis with the highlighted image.
type DentalXrayOutput struct {
	HighlightedImageDataURI string          `json:"highlightedImageDataUri"`
	Summary                 string          `json:"summary"`
	ConfidenceScore         ConfidenceScore `json:"confidenceScore"`
	Findings                []DentalFinding `json:"findings"`
}

// dentalTextResult is the structured half of the output, produced by the text
// analysis leg.
type dentalTextResult struct {
	Summary         string          `json:"summary"`
	ConfidenceScore ConfidenceScore `json:"confidenceScore"`
	Findings        []DentalFinding `json:"findings"`
}

var dentalSchema = &Schema{
	Type: "object",
	Properties: map[string]*Schema{
		"summary": {Type: "string", Description: "A summary of the findings."},
		"confidenceScore": {
			Type:        "string",
			Enum:        []string{"High", "Medium", "Low"},
			Description: "The confidence level of the analysis (High, Medium, or Low).",
		},
		"findings": {
			Type:        "array",
			Description: "An array of specific dental findings.",
			Items: &Schema{
				Type: "object",
				Properties: map[string]*Schema{
					"description": {Type: "string", Description: "A detailed description of the finding for this area."},
				},
				Required: []string{"description"},
			},
		},
	},
	Required: []string{"summary", "confidenceScore", "findings"},
}

const dentalHighlightPrompt = "You are an expert dental radiologist. Analyze the provided dental X-ray. " +
	"Identify only the abnormal parts, such as cavities, decay, impaction, or infections. " +
	"Highlight only these identified problematic areas on the image using thin, subtle, translucent red circles or outlines. " +
	"Do not highlight normal, healthy areas. The highlighting should be minimal and precise. Return the modified image."

func (in DentalXrayInput) validate() (ImageData, error) {
	if strings.TrimSpace(in.PatientDetails) == "" {
		return ImageData{}, errors.New("AI_004", "patientDetails is required")
	}
	if err := inputGuard.Validate(in.PatientDetails); err != nil {
		return ImageData{}, errors.Wrap(err, "AI_004", "patientDetails rejected")
	}
	image, err := ParseDataURI(in.PhotoDataURI)
	if err != nil {
		return ImageData{}, errors.Wrap(err, "AI_004", "photoDataUri is invalid")
	}
	return image, nil
}

// DentalXrayAnalysis runs the two legs of the dental flow concurrently: a
// structured text analysis and a highlighted-image generation. Both must
// succeed; there is no partial result.
func (c *Client) DentalXrayAnalysis(ctx context.Context, in DentalXrayInput) (out *DentalXrayOutput, err error) {
	start := time.Now()
	defer func() { metrics.RecordAIRequest("dental", err, time.Since(start)) }()

	image, err := in.validate()
	if err != nil {
		return nil, err
	}

	analysisPrompt := fmt.Sprintf(`You are an expert dental radiologist. Analyze the provided dental X-ray for a patient with the following details: %s.

Identify all potential issues, such as cavities, decay, impaction, infections, or other anomalies.

Provide a concise summary, a detailed list of findings, and a confidence score for your analysis.`,
		in.PatientDetails)

	var (
		wg       sync.WaitGroup
		text     dentalTextResult
		textErr  error
		imageURI string
		imageErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		textErr = c.generateStructured(ctx, analysisPrompt, &image, dentalSchema, &text)
	}()
	go func() {
		defer wg.Done()
		imageURI, imageErr = c.generateImage(ctx, dentalHighlightPrompt, image)
	}()
	wg.Wait()

	if textErr != nil {
		err = fmt.Errorf("text analysis leg: %w", textErr)
		return nil, err
	}
	if imageErr != nil {
		err = fmt.Errorf("image generation leg: %w", imageErr)
		return nil, err
	}

	switch text.ConfidenceScore {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
	default:
		err = errors.New("AI_002", fmt.Sprintf("text analysis model returned unknown confidence score %q", text.ConfidenceScore))
		return nil, err
	}

	return &DentalXrayOutput{
		HighlightedImageDataURI: imageURI,
		Summary:                 text.Summary,
		ConfidenceScore:         text.ConfidenceScore,
		Findings:                text.Findings,
	}, nil
}
