package localllm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chefgpt/internal/prompt"
	"chefgpt/internal/recipe"
)

func chatResponse(content string) string {
	return `{"choices":[{"message":{"role":"assistant","content":` + string(mustJSON(content)) + `}}]}`
}

func mustJSON(s string) []byte {
	b, _ := json.Marshal(s)
	return b
}

func TestGenerate(t *testing.T) {
	var got request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatResponse(`{"title":"Soup"}`)))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-model")
	out, err := c.Generate(context.Background(), prompt.Request{Instruction: "make soup"})
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Soup"}`, out)

	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 1)
	require.Len(t, got.Messages[0].Content, 1)
	assert.Equal(t, "make soup", got.Messages[0].Content[0].Text)
	assert.InDelta(t, 0.7, got.Temperature, 0.001)
}

func TestGenerate_ImageAndVariation(t *testing.T) {
	var got request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(chatResponse("ok")))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Generate(context.Background(), prompt.Request{
		Instruction: "what is this dish",
		Image:       []byte{0x01, 0x02},
		Variation:   true,
	})
	require.NoError(t, err)

	require.Len(t, got.Messages[0].Content, 2)
	assert.Equal(t, "image_url", got.Messages[0].Content[1].Type)
	assert.Contains(t, got.Messages[0].Content[1].ImageURL.URL, "data:image/jpeg;base64,")
	assert.InDelta(t, 0.9, got.Temperature, 0.001)
}

func TestGenerate_InputBounds(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.Write([]byte(chatResponse("ok")))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")

	_, err := c.Generate(context.Background(), prompt.Request{
		Instruction: strings.Repeat("x", maxInstructionBytes+1),
	})
	assert.ErrorIs(t, err, recipe.ErrInvalidInput)

	_, err = c.Generate(context.Background(), prompt.Request{
		Instruction: "ok",
		Image:       make([]byte, maxImageBytes+1),
	})
	assert.ErrorIs(t, err, recipe.ErrInvalidInput)

	assert.False(t, called, "oversized input must be rejected before reaching the upstream")
}

func TestGenerate_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Generate(context.Background(), prompt.Request{Instruction: "x"})
	assert.ErrorIs(t, err, recipe.ErrUpstreamRateLimit)
}

func TestGenerate_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Generate(context.Background(), prompt.Request{Instruction: "x"})
	assert.ErrorIs(t, err, recipe.ErrUpstreamUnavailable)
}

func TestGenerate_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Generate(context.Background(), prompt.Request{Instruction: "x"})
	assert.ErrorIs(t, err, recipe.ErrUpstreamUnavailable)
}

func TestGenerate_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Generate(context.Background(), prompt.Request{Instruction: "x"})
	assert.ErrorIs(t, err, recipe.ErrUpstreamUnavailable)
}
