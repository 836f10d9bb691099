package recipe

import "errors"

// Failure categories surfaced to API callers. Handlers map each one to an
// HTTP status and a machine-readable kind.
var (
	// ErrInvalidInput is returned when the caller supplied neither
	// ingredients nor an image, or the input is otherwise unusable.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstreamUnavailable is returned when the model service cannot be
	// reached or answers with a server error.
	ErrUpstreamUnavailable = errors.New("model service unavailable")

	// ErrUpstreamRateLimit is returned when the model quota is exhausted.
	ErrUpstreamRateLimit = errors.New("model quota exhausted")

	// ErrUpstreamTimeout is returned when the model does not answer within
	// the request deadline.
	ErrUpstreamTimeout = errors.New("model call timed out")

	// ErrMalformedResponse is returned when the model output cannot be
	// parsed into a complete recipe.
	ErrMalformedResponse = errors.New("model returned a malformed recipe")
)
