package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// ErrNoProvider is returned when translation is requested without a provider.
var ErrNoProvider = errors.New("no translation provider configured")

// APIError is a non-200 reply from a provider's HTTP API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// Retryable reports whether a failed request may succeed when repeated:
// rate limiting and server-side failures.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	status := 0
	var apiErr *APIError
	var openaiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.StatusCode
	case errors.As(err, &openaiErr):
		status = openaiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	default:
		return false
	}

	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}
