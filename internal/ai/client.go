// Package ai implements the analysis orchestrator: schema-validated prompt
// construction against a generative model, structured-output decoding, and
// the image-highlighting fan-out flow.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vitalens/vitalens/internal/config"
	"github.com/vitalens/vitalens/internal/errors"
	"github.com/vitalens/vitalens/internal/security"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// inputGuard bounds the free-text fields the flows interpolate into prompts.
var inputGuard = security.NewInputValidator()

// Client talks to the generative model API. It issues independent requests
// with no retry or backoff; transport failures propagate to the caller.
type Client struct {
	cfg     config.AIConfig
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates a model client. A RequestsPerMinute of 0 disables the
// client-side limiter.
func NewClient(cfg config.AIConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60
	}

	c := &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: time.Duration(timeout) * time.Second},
		logger: logger,
	}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1)
	}
	return c
}

// Schema declares the shape a structured response must match.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type contentBlock struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature        float64  `json:"temperature,omitempty"`
	MaxOutputTokens    int      `json:"maxOutputTokens,omitempty"`
	ResponseMimeType   string   `json:"responseMimeType,omitempty"`
	ResponseSchema     *Schema  `json:"responseSchema,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type generateRequest struct {
	Contents         []contentBlock    `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *Client) generate(ctx context.Context, model string, req generateRequest) (*generateResponse, error) {
	if c.cfg.APIKey == "" {
		return nil, errors.ErrModelNotConfigured
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.cfg.BaseURL, model, c.cfg.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// generateStructured issues one text-model call constrained to schema and
// unmarshals the JSON payload into out. An image, when present, is attached
// as an inline part after the prompt.
func (c *Client) generateStructured(ctx context.Context, prompt string, image *ImageData, schema *Schema, out any) error {
	parts := []part{{Text: prompt}}
	if image != nil {
		parts = append(parts, part{InlineData: &inlineData{
			MimeType: image.MimeType,
			Data:     image.Base64,
		}})
	}

	resp, err := c.generate(ctx, c.cfg.TextModel, generateRequest{
		Contents: []contentBlock{{Parts: parts}},
		GenerationConfig: &generationConfig{
			Temperature:      0.2,
			MaxOutputTokens:  2048,
			ResponseMimeType: "application/json",
			ResponseSchema:   schema,
		},
	})
	if err != nil {
		return err
	}

	payload := firstText(resp)
	if payload == "" {
		return errors.ErrTextModelEmpty
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return errors.Wrap(err, "AI_002", "text analysis model returned malformed output")
	}
	return nil
}

// generateImage issues one image-model call and returns the produced image as
// a data URI.
func (c *Client) generateImage(ctx context.Context, prompt string, image ImageData) (string, error) {
	resp, err := c.generate(ctx, c.cfg.ImageModel, generateRequest{
		Contents: []contentBlock{{Parts: []part{
			{InlineData: &inlineData{MimeType: image.MimeType, Data: image.Base64}},
			{Text: prompt},
		}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	})
	if err != nil {
		return "", err
	}

	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil && p.InlineData.Data != "" {
				return ImageData{MimeType: p.InlineData.MimeType, Base64: p.InlineData.Data}.DataURI(), nil
			}
		}
	}
	return "", errors.ErrImageModelEmpty
}

func firstText(resp *generateResponse) string {
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}
