package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalens/vitalens/internal/config"
	"github.com/vitalens/vitalens/internal/errors"
	"go.uber.org/zap"
)

const testImageURI = "data:image/png;base64,aGVsbG8="

// textResponse wraps a payload the way the model API returns text parts.
func textResponse(payload string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"parts": []map[string]any{{"text": payload}},
			},
		}},
	}
}

func imageResponse(mimeType, data string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"parts": []map[string]any{{
					"inlineData": map[string]any{"mimeType": mimeType, "data": data},
				}},
			},
		}},
	}
}

// setupTestClient points a client at a stub model server. The handler is
// keyed on the model name in the request path.
func setupTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.AIConfig{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		TextModel:  "text-model",
		ImageModel: "image-model",
		Timeout:    5,
	}, zap.NewNop())
}

// Data URI tests

func TestParseDataURI(t *testing.T) {
	image, err := ParseDataURI(testImageURI)
	require.NoError(t, err)
	assert.Equal(t, "image/png", image.MimeType)
	assert.Equal(t, "aGVsbG8=", image.Base64)
	assert.Equal(t, testImageURI, image.DataURI())
}

func TestParseDataURI_Rejects(t *testing.T) {
	cases := []string{
		"",
		"http://example.com/image.png",
		"data:image/png,notbase64encoded",
		"data:image/png;base64,!!!not-base64!!!",
	}
	for _, uri := range cases {
		_, err := ParseDataURI(uri)
		assert.Error(t, err, "uri %q", uri)
	}
}

// Dental flow tests

func TestDentalXrayAnalysis_MergesBothLegs(t *testing.T) {
	client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "text-model") {
			json.NewEncoder(w).Encode(textResponse(
				`{"summary":"Cavity in lower left molar.","confidenceScore":"High","findings":[{"description":"Distal caries on tooth 36."}]}`))
			return
		}
		json.NewEncoder(w).Encode(imageResponse("image/png", "aGlnaGxpZ2h0"))
	})

	out, err := client.DentalXrayAnalysis(context.Background(), DentalXrayInput{
		PhotoDataURI:   testImageURI,
		PatientDetails: "Male, 42, toothache lower left",
	})
	require.NoError(t, err)

	assert.Equal(t, "Cavity in lower left molar.", out.Summary)
	assert.Equal(t, ConfidenceHigh, out.ConfidenceScore)
	require.Len(t, out.Findings, 1)
	assert.Equal(t, "Distal caries on tooth 36.", out.Findings[0].Description)
	assert.Equal(t, "data:image/png;base64,aGlnaGxpZ2h0", out.HighlightedImageDataURI)
}

func TestDentalXrayAnalysis_ImageLegFailureNamesTheLeg(t *testing.T) {
	client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "text-model") {
			json.NewEncoder(w).Encode(textResponse(
				`{"summary":"ok","confidenceScore":"Low","findings":[]}`))
			return
		}
		// No image part in the response
		json.NewEncoder(w).Encode(textResponse("cannot generate"))
	})

	_, err := client.DentalXrayAnalysis(context.Background(), DentalXrayInput{
		PhotoDataURI:   testImageURI,
		PatientDetails: "Female, 30",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image generation leg")
	assert.ErrorIs(t, err, errors.ErrImageModelEmpty)
}

func TestDentalXrayAnalysis_TextLegFailureNamesTheLeg(t *testing.T) {
	client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "text-model") {
			json.NewEncoder(w).Encode(textResponse(""))
			return
		}
		json.NewEncoder(w).Encode(imageResponse("image/png", "aGlnaGxpZ2h0"))
	})

	_, err := client.DentalXrayAnalysis(context.Background(), DentalXrayInput{
		PhotoDataURI:   testImageURI,
		PatientDetails: "Female, 30",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "text analysis leg")
}

func TestDentalXrayAnalysis_RejectsUnknownConfidence(t *testing.T) {
	client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "text-model") {
			json.NewEncoder(w).Encode(textResponse(
				`{"summary":"ok","confidenceScore":"Certain","findings":[]}`))
			return
		}
		json.NewEncoder(w).Encode(imageResponse("image/png", "aGlnaGxpZ2h0"))
	})

	_, err := client.DentalXrayAnalysis(context.Background(), DentalXrayInput{
		PhotoDataURI:   testImageURI,
		PatientDetails: "Male, 55",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "confidence score")
}

func TestDentalXrayAnalysis_ValidatesInput(t *testing.T) {
	client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no model call expected")
	})

	_, err := client.DentalXrayAnalysis(context.Background(), DentalXrayInput{
		PhotoDataURI:   testImageURI,
		PatientDetails: "   ",
	})
	assert.Error(t, err)

	_, err = client.DentalXrayAnalysis(context.Background(), DentalXrayInput{
		PhotoDataURI:   "not-a-data-uri",
		PatientDetails: "Male, 42",
	})
	assert.Error(t, err)

	// Oversized free text never reaches the model
	_, err = client.DentalXrayAnalysis(context.Background(), DentalXrayInput{
		PhotoDataURI:   testImageURI,
		PatientDetails: strings.Repeat("x", 64*1024),
	})
	assert.Error(t, err)
}

// Diagnosis flow tests

func TestDiagnosisSummary(t *testing.T) {
	client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(textResponse(
			`{"diagnosisSummary":"No acute findings.","potentialConditions":"Mild degenerative change","relevantFindings":"Joint space narrowing"}`))
	})

	out, err := client.DiagnosisSummary(context.Background(), DiagnosisSummaryInput{
		MedicalImageDataURI: testImageURI,
		PatientDetails:      "Female, 61, knee pain",
		ImagingModality:     "X-ray",
	})
	require.NoError(t, err)
	assert.Equal(t, "No acute findings.", out.DiagnosisSummary)
	assert.Equal(t, "Mild degenerative change", out.PotentialConditions)
	assert.Equal(t, "Joint space narrowing", out.RelevantFindings)
}

// Prompt enhancement tests

func TestEnhanceDetectionPrompt(t *testing.T) {
	client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(textResponse(
			`{"suggestedKeywords":["periapical radiolucency"],"suggestedPhrases":["focus on root apices"],"enhancedPrompt":"Examine the periapical regions for radiolucency."}`))
	})

	out, err := client.EnhanceDetectionPrompt(context.Background(), EnhancePromptInput{
		ImageType:           "Dental X-ray",
		AIModelCapabilities: "structured findings with confidence scores",
		UserPrompt:          "find infections",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.EnhancedPrompt)
	assert.Len(t, out.SuggestedKeywords, 1)
}

// Client tests

func TestClient_NoAPIKey(t *testing.T) {
	client := NewClient(config.AIConfig{TextModel: "text-model"}, zap.NewNop())

	_, err := client.DiagnosisSummary(context.Background(), DiagnosisSummaryInput{
		MedicalImageDataURI: testImageURI,
		PatientDetails:      "Male, 20",
		ImagingModality:     "MRI",
	})
	assert.ErrorIs(t, err, errors.ErrModelNotConfigured)
}

func TestClient_ServerError(t *testing.T) {
	client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := client.DiagnosisSummary(context.Background(), DiagnosisSummaryInput{
		MedicalImageDataURI: testImageURI,
		PatientDetails:      "Male, 20",
		ImagingModality:     "CT",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}
