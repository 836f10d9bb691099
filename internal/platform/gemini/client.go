package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"chefgpt/internal/prompt"
	"chefgpt/internal/recipe"
)

const (
	// DefaultModel is used when no model name is configured.
	DefaultModel = "gemini-2.0-flash"

	// Bounds on a single generation request. Oversized input is rejected
	// before any network call.
	maxInstructionBytes = 16 << 10
	maxImageBytes       = 25 << 20

	baseTemperature      = 0.7
	variationTemperature = 0.9
)

// Client is a client for the Gemini API. It sends one generation request
// and returns the model's raw text; parsing is the caller's job. Failures
// are classified into the upstream error categories, never retried.
type Client struct {
	model     *genai.GenerativeModel
	variation *genai.GenerativeModel
}

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(baseTemperature)

	// Variation requests run hotter so regenerations actually differ.
	variation := client.GenerativeModel(modelName)
	variation.SetTemperature(variationTemperature)

	return &Client{model: model, variation: variation}, nil
}

// Generate sends the composed request to Gemini and returns the raw text of
// the first candidate.
func (c *Client) Generate(ctx context.Context, req prompt.Request) (string, error) {
	if req.Instruction == "" {
		return "", fmt.Errorf("%w: empty instruction", recipe.ErrInvalidInput)
	}
	if len(req.Instruction) > maxInstructionBytes {
		return "", fmt.Errorf("%w: instruction exceeds %d bytes", recipe.ErrInvalidInput, maxInstructionBytes)
	}
	if len(req.Image) > maxImageBytes {
		return "", fmt.Errorf("%w: image exceeds %d bytes", recipe.ErrInvalidInput, maxImageBytes)
	}

	var parts []genai.Part
	if len(req.Image) > 0 {
		parts = append(parts, genai.ImageData("jpeg", req.Image))
	}
	parts = append(parts, genai.Text(req.Instruction))

	model := c.model
	if req.Variation {
		model = c.variation
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", classify(err)
	}
	return firstText(resp)
}

// classify maps transport and API errors onto the upstream error categories.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", recipe.ErrUpstreamTimeout, err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", recipe.ErrUpstreamRateLimit, err)
		case apiErr.Code >= http.StatusInternalServerError:
			return fmt.Errorf("%w: %v", recipe.ErrUpstreamUnavailable, err)
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "quota") || strings.Contains(msg, "resource exhausted") || strings.Contains(msg, "429"):
		return fmt.Errorf("%w: %v", recipe.ErrUpstreamRateLimit, err)
	case strings.Contains(msg, "deadline") || strings.Contains(msg, "timeout"):
		return fmt.Errorf("%w: %v", recipe.ErrUpstreamTimeout, err)
	default:
		return fmt.Errorf("%w: %v", recipe.ErrUpstreamUnavailable, err)
	}
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response from Gemini", recipe.ErrUpstreamUnavailable)
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("%w: unexpected response part from Gemini", recipe.ErrMalformedResponse)
	}
	return string(text), nil
}
