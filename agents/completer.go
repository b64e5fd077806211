package agents

import (
	"context"
	"errors"
	"strings"

	gemini "github.com/google/generative-ai-go/genai"

	"github.com/bububa/multi-agents/components"
)

// Completer is a plain text completion capability. The reasoning loop treats
// the model as an opaque prompt-in/text-out collaborator.
type Completer interface {
	Complete(ctx context.Context, prompt string, apiResp *components.ApiResponse) (string, error)
}

// GeminiCompleter implements Completer on top of the Gemini API.
type GeminiCompleter struct {
	client      *gemini.Client
	model       string
	temperature float32
}

var _ Completer = (*GeminiCompleter)(nil)

// NewGeminiCompleter returns a Completer backed by the given Gemini client.
func NewGeminiCompleter(client *gemini.Client, model string, temperature float32) *GeminiCompleter {
	return &GeminiCompleter{
		client:      client,
		model:       model,
		temperature: temperature,
	}
}

// Complete sends the prompt as a single user turn and concatenates the text
// parts of the first candidate.
func (c *GeminiCompleter) Complete(ctx context.Context, prompt string, apiResp *components.ApiResponse) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(c.temperature)
	resp, err := model.GenerateContent(ctx, gemini.Text(prompt))
	if err != nil {
		return "", err
	}
	if apiResp != nil {
		apiResp.FromGemini(resp)
		apiResp.Model = c.model
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("empty completion from model")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(gemini.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String(), nil
}
