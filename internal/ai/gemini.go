// gemini.go - Gemini model invocation for guarantee field extraction

package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/bosocmputer/guarantee_letter_gemini/internal/common"
	"github.com/bosocmputer/guarantee_letter_gemini/internal/processor"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ModelInvoker performs exactly one outbound model call: the instruction
// payload plus the ordered page images, against the named candidate model.
// It returns the raw response text; parsing is the orchestrator's concern.
type ModelInvoker interface {
	Invoke(ctx context.Context, modelName, prompt string, pages []processor.PageImage) (string, *common.TokenUsage, error)
}

// GeminiInvoker calls the Gemini API with multimodal content.
type GeminiInvoker struct {
	apiKey          string
	maxOutputTokens int32
}

// NewGeminiInvoker creates a Gemini-backed invoker.
func NewGeminiInvoker(apiKey string) *GeminiInvoker {
	return &GeminiInvoker{
		apiKey:          apiKey,
		maxOutputTokens: 8192, // Gemini's max output limit, prevents silent truncation
	}
}

// Invoke sends one extraction request. Images are attached as opaque binary
// parts after the prompt, preserving page order.
func (g *GeminiInvoker) Invoke(ctx context.Context, modelName, prompt string, pages []processor.PageImage) (string, *common.TokenUsage, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(modelName)
	model.GenerationConfig = genai.GenerationConfig{
		MaxOutputTokens: ptr(g.maxOutputTokens),
	}

	parts := make([]genai.Part, 0, len(pages)+1)
	parts = append(parts, genai.Text(prompt))
	for _, page := range pages {
		parts = append(parts, genai.Blob{
			MIMEType: page.MIMEType,
			Data:     page.Data,
		})
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", nil, err
	}

	var usage *common.TokenUsage
	if resp.UsageMetadata != nil {
		u := common.CalculateTokenCost(
			int(resp.UsageMetadata.PromptTokenCount),
			int(resp.UsageMetadata.CandidatesTokenCount),
		)
		usage = &u
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", usage, errors.New("no response from Gemini API")
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text = string(t)
			break
		}
	}
	if text == "" {
		return "", usage, errors.New("empty response from Gemini API")
	}

	return text, usage, nil
}

func ptr(i int32) *int32 {
	return &i
}
