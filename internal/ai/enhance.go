package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vitalens/vitalens/internal/errors"
	"github.com/vitalens/vitalens/internal/metrics"
)

// EnhancePromptInput is the input of the prompt-enhancement flow.
type EnhancePromptInput struct {
	ImageType           string `json:"imageType"`
	AIModelCapabilities string `json:"aiModelCapabilities"`
	UserPrompt          string `json:"userPrompt"`
}

// EnhancePromptOutput suggests keywords and phrases for an image detection
// prompt, plus a rewritten prompt incorporating them.
type EnhancePromptOutput struct {
	SuggestedKeywords []string `json:"suggestedKeywords"`
	SuggestedPhrases  []string `json:"suggestedPhrases"`
	EnhancedPrompt    string   `json:"enhancedPrompt"`
}

var enhanceSchema = &Schema{
	Type: "object",
	Properties: map[string]*Schema{
		"suggestedKeywords": {
			Type:        "array",
			Description: "An array of suggested keywords for the prompt.",
			Items:       &Schema{Type: "string"},
		},
		"suggestedPhrases": {
			Type:        "array",
			Description: "An array of suggested phrases for the prompt.",
			Items:       &Schema{Type: "string"},
		},
		"enhancedPrompt": {
			Type:        "string",
			Description: "An enhanced prompt incorporating the suggested keywords and phrases.",
		},
	},
	Required: []string{"suggestedKeywords", "suggestedPhrases", "enhancedPrompt"},
}

func (in EnhancePromptInput) validate() error {
	if strings.TrimSpace(in.ImageType) == "" {
		return errors.New("AI_004", "imageType is required")
	}
	if strings.TrimSpace(in.AIModelCapabilities) == "" {
		return errors.New("AI_004", "aiModelCapabilities is required")
	}
	if strings.TrimSpace(in.UserPrompt) == "" {
		return errors.New("AI_004", "userPrompt is required")
	}
	if err := inputGuard.Validate(in.UserPrompt); err != nil {
		return errors.Wrap(err, "AI_004", "userPrompt rejected")
	}
	return nil
}

// EnhanceDetectionPrompt suggests keywords and phrases that improve a medical
// image detection prompt.
func (c *Client) EnhanceDetectionPrompt(ctx context.Context, in EnhancePromptInput) (out *EnhancePromptOutput, err error) {
	start := time.Now()
	defer func() { metrics.RecordAIRequest("enhance", err, time.Since(start)) }()

	if err = in.validate(); err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`You are an AI prompt enhancement tool for medical image detection.

You will receive the following information:
- Image Type: %s
- AI Model Capabilities: %s
- User Prompt: %s

Based on this information, suggest relevant keywords and phrases that can improve the image detection prompt.
Also, generate an enhanced prompt incorporating the suggested keywords and phrases.`,
		in.ImageType, in.AIModelCapabilities, in.UserPrompt)

	var result EnhancePromptOutput
	if err = c.generateStructured(ctx, prompt, nil, enhanceSchema, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
