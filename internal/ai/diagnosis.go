package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vitalens/vitalens/internal/errors"
	"github.com/vitalens/vitalens/internal/metrics"
)

// DiagnosisSummaryInput is the input of the standard diagnosis flow.
type DiagnosisSummaryInput struct {
	MedicalImageDataURI string `json:"medicalImageDataUri"`
	PatientDetails      string `json:"patientDetails"`
	ImagingModality     string `json:"imagingModality"`
}

// DiagnosisSummaryOutput is the structured result of the standard flow.
type DiagnosisSummaryOutput struct {
	DiagnosisSummary    string `json:"diagnosisSummary"`
	PotentialConditions string `json:"potentialConditions"`
	RelevantFindings    string `json:"relevantFindings"`
}

var diagnosisSchema = &Schema{
	Type: "object",
	Properties: map[string]*Schema{
		"diagnosisSummary":    {Type: "string", Description: "A concise summary of the diagnosis."},
		"potentialConditions": {Type: "string", Description: "Potential conditions suggested by the image."},
		"relevantFindings":    {Type: "string", Description: "Specific findings relevant to the diagnosis."},
	},
	Required: []string{"diagnosisSummary", "potentialConditions", "relevantFindings"},
}

func (in DiagnosisSummaryInput) validate() (ImageData, error) {
	if strings.TrimSpace(in.PatientDetails) == "" {
		return ImageData{}, errors.New("AI_004", "patientDetails is required")
	}
	if strings.TrimSpace(in.ImagingModality) == "" {
		return ImageData{}, errors.New("AI_004", "imagingModality is required")
	}
	if err := inputGuard.Validate(in.PatientDetails); err != nil {
		return ImageData{}, errors.Wrap(err, "AI_004", "patientDetails rejected")
	}
	image, err := ParseDataURI(in.MedicalImageDataURI)
	if err != nil {
		return ImageData{}, errors.Wrap(err, "AI_004", "medicalImageDataUri is invalid")
	}
	return image, nil
}

// DiagnosisSummary analyzes a medical image with one structured model call
// and returns the diagnosis verbatim.
func (c *Client) DiagnosisSummary(ctx context.Context, in DiagnosisSummaryInput) (out *DiagnosisSummaryOutput, err error) {
	start := time.Now()
	defer func() { metrics.RecordAIRequest("diagnosis", err, time.Since(start)) }()

	image, err := in.validate()
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`You are an expert medical image analyst. Analyze the provided %s image for a patient with the following details: %s.

Provide a concise diagnosis summary, the potential conditions suggested by the image, and the relevant findings that support them.`,
		in.ImagingModality, in.PatientDetails)

	var result DiagnosisSummaryOutput
	if err = c.generateStructured(ctx, prompt, &image, diagnosisSchema, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
