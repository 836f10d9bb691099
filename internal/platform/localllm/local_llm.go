// Package localllm talks to an OpenAI-compatible chat-completions endpoint
// (LM Studio, Ollama and friends). It is an alternate provider for local
// development without a Gemini API key.
package localllm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"chefgpt/internal/prompt"
	"chefgpt/internal/recipe"
)

const (
	defaultURL   = "http://localhost:1234/v1/chat/completions"
	defaultModel = "gemma-3-12b-it"

	// Bounds on a single generation request, same as the Gemini client.
	// Oversized input is rejected before any network call.
	maxInstructionBytes = 16 << 10
	maxImageBytes       = 25 << 20

	baseTemperature      = 0.7
	variationTemperature = 0.9
)

// Client represents a client for the local LLM.
type Client struct {
	httpClient *http.Client
	apiURL     string
	model      string
}

// NewClient creates a new client for the local LLM. Empty arguments fall
// back to LM Studio defaults.
func NewClient(apiURL, model string) *Client {
	if apiURL == "" {
		apiURL = defaultURL
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{
		httpClient: &http.Client{},
		apiURL:     apiURL,
		model:      model,
	}
}

// request represents the chat-completions request body.
type request struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type message struct {
	Role    string    `json:"role"`
	Content []content `json:"content"`
}

type content struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type response struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate sends the composed request to the local LLM and returns the raw
// text of the first choice.
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

	parts := []content{{Type: "text", Text: req.Instruction}}
	if len(req.Image) > 0 {
		parts = append(parts, content{
			Type:     "image_url",
			ImageURL: &imageURL{URL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(req.Image)},
		})
	}

	temperature := baseTemperature
	if req.Variation {
		temperature = variationTemperature
	}

	reqBody := request{
		Model:       c.model,
		Messages:    []message{{Role: "user", Content: parts}},
		Temperature: temperature,
		MaxTokens:   2048,
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(reqBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", recipe.ErrUpstreamTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", recipe.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("%w: local llm returned 429", recipe.ErrUpstreamRateLimit)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%w: local llm returned status %d", recipe.ErrUpstreamUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", recipe.ErrUpstreamUnavailable, err)
	}

	var llmResp response
	if err := json.Unmarshal(body, &llmResp); err != nil {
		return "", fmt.Errorf("%w: %v", recipe.ErrUpstreamUnavailable, err)
	}
	if len(llmResp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in local llm response", recipe.ErrUpstreamUnavailable)
	}

	return llmResp.Choices[0].Message.Content, nil
}
