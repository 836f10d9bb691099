package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"chefgpt/internal/prompt"
	"chefgpt/internal/recipe"
)

// ModelClient defines the interface for the external generative model.
// Implementations return the model's raw text output for one request.
type ModelClient interface {
	Generate(ctx context.Context, req prompt.Request) (string, error)
}

const (
	// modelCallTimeout bounds the single blocking model call per request.
	modelCallTimeout = 90 * time.Second

	// maxUploadBytes caps accepted image uploads.
	maxUploadBytes = 25 << 20
)

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
}

// Handler handles HTTP requests.
type Handler struct {
	Model ModelClient
}

// NewHandler creates a new Handler.
func NewHandler(model ModelClient) *Handler {
	return &Handler{Model: model}
}

// Health reports liveness only. No dependencies are verified.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type fromTextRequest struct {
	Ingredients []string           `json:"ingredients"`
	Preferences recipe.Preferences `json:"preferences"`
}

// FromText generates a recipe from an ingredient list.
func (h *Handler) FromText(c *gin.Context) {
	var payload fromTextRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, recipe.ErrInvalidInput, err.Error())
		return
	}

	req, err := prompt.ForIngredients(payload.Ingredients, payload.Preferences)
	if err != nil {
		writeError(c, err, "")
		return
	}

	h.generate(c, req)
}

type fromPromptRequest struct {
	Prompt      string             `json:"prompt"`
	Preferences recipe.Preferences `json:"preferences"`
}

// FromPrompt generates a recipe from a free-text dish description.
func (h *Handler) FromPrompt(c *gin.Context) {
	var payload fromPromptRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, recipe.ErrInvalidInput, err.Error())
		return
	}

	req, err := prompt.ForFreeform(payload.Prompt, payload.Preferences)
	if err != nil {
		writeError(c, err, "")
		return
	}

	h.generate(c, req)
}

// FromImage generates a recipe from an uploaded ingredient photo. The
// multipart form carries the image under "image" and, optionally, a
// "preferences_json" field with serialized preferences.
func (h *Handler) FromImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		writeError(c, recipe.ErrInvalidInput, "an image file is required")
		return
	}

	extension := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[extension] {
		writeError(c, recipe.ErrInvalidInput, "only JPEG, JPG and PNG images are allowed")
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse{
			Kind:    "invalid_input",
			Message: "image file too large (max 25MB)",
		})
		return
	}

	var prefs recipe.Preferences
	if raw := c.PostForm("preferences_json"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
			writeError(c, recipe.ErrInvalidInput, "preferences_json is not valid JSON")
			return
		}
	}

	src, err := file.Open()
	if err != nil {
		writeError(c, recipe.ErrInvalidInput, "could not open uploaded file")
		return
	}
	defer src.Close()

	imageData, err := io.ReadAll(io.LimitReader(src, maxUploadBytes+1))
	if err != nil {
		writeError(c, recipe.ErrInvalidInput, "could not read uploaded file")
		return
	}
	if len(imageData) > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse{
			Kind:    "invalid_input",
			Message: "image file too large (max 25MB)",
		})
		return
	}

	imageData, err = normalizeImage(imageData)
	if err != nil {
		writeError(c, err, "")
		return
	}

	req, err := prompt.ForImage(imageData, prefs)
	if err != nil {
		writeError(c, err, "")
		return
	}

	h.generate(c, req)
}

// generate runs the shared pipeline: model call under a bounded context,
// then parse and completeness validation. No retries at any stage.
func (h *Handler) generate(c *gin.Context, req prompt.Request) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), modelCallTimeout)
	defer cancel()

	raw, err := h.Model.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = recipe.ErrUpstreamTimeout
		}
		writeError(c, err, "")
		return
	}

	rec, err := recipe.Parse(raw)
	if err != nil {
		writeError(c, err, "")
		return
	}
	if err := rec.Validate(); err != nil {
		writeError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": rec})
}

// errorResponse is the error payload returned on every non-2xx outcome.
type errorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// writeError maps an internal failure to a caller-visible category. The
// message parameter overrides the default wording when non-empty.
func writeError(c *gin.Context, err error, message string) {
	status := http.StatusInternalServerError
	kind := "internal"

	switch {
	case errors.Is(err, recipe.ErrInvalidInput):
		status = http.StatusBadRequest
		kind = "invalid_input"
	case errors.Is(err, recipe.ErrUpstreamRateLimit):
		status = http.StatusTooManyRequests
		kind = "upstream_rate_limit"
		c.Header("Retry-After", "30")
		if message == "" {
			message = recipe.ErrUpstreamRateLimit.Error()
		}
	case errors.Is(err, recipe.ErrUpstreamTimeout):
		status = http.StatusGatewayTimeout
		kind = "upstream_timeout"
		if message == "" {
			message = recipe.ErrUpstreamTimeout.Error()
		}
	case errors.Is(err, recipe.ErrUpstreamUnavailable):
		status = http.StatusServiceUnavailable
		kind = "upstream_unavailable"
		if message == "" {
			message = recipe.ErrUpstreamUnavailable.Error()
		}
	case errors.Is(err, recipe.ErrMalformedResponse):
		status = http.StatusBadGateway
		kind = "malformed_response"
		if message == "" {
			message = "the model returned an unusable recipe, please try again"
		}
	}

	if message == "" {
		message = err.Error()
	}

	if status >= http.StatusInternalServerError || status == http.StatusTooManyRequests {
		log.Printf("request failed (%s): %v", kind, err)
	}

	c.JSON(status, errorResponse{Kind: kind, Message: message})
}
