// errors.go - Error categorization for model call failures

package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
)

// ErrUnparseableResponse marks a call that returned text the recovery parser
// could not turn into a record. For attempt accounting it is treated
// identically to a transport failure.
var ErrUnparseableResponse = errors.New("model response did not contain a parseable record")

// ModelError is a categorized failure from a single model call. The category
// and retryable flag feed logging and the user-facing message; the attempt
// budget itself is fixed and does not depend on them.
type ModelError struct {
	Category   string
	StatusCode int
	Message    string
	Retryable  bool
	cause      error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("[%s] %s (status: %d, retryable: %v)", e.Category, e.Message, e.StatusCode, e.Retryable)
}

func (e *ModelError) Unwrap() error { return e.cause }

// CategorizeModelError analyzes a model call failure for observability.
func CategorizeModelError(err error) *ModelError {
	if err == nil {
		return nil
	}

	modelErr := &ModelError{
		Category:  "unknown",
		Message:   err.Error(),
		Retryable: false,
		cause:     err,
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		modelErr.StatusCode = apiErr.Code

		switch apiErr.Code {
		case 400:
			modelErr.Category = "bad_request"
			modelErr.Message = "Invalid request format or parameters"
		case 401:
			modelErr.Category = "unauthorized"
			modelErr.Message = "Invalid API key or authentication failed"
		case 403:
			modelErr.Category = "forbidden"
			modelErr.Message = "API key lacks required permissions"
		case 404:
			modelErr.Category = "not_found"
			modelErr.Message = "Model not found or invalid endpoint"
		case 413:
			modelErr.Category = "payload_too_large"
			modelErr.Message = "Request size exceeds limit (reduce page count or image size)"
		case 429:
			modelErr.Category = "rate_limit"
			modelErr.Message = "Rate limit exceeded - too many requests"
			modelErr.Retryable = true
		case 500, 502, 503, 504:
			modelErr.Category = "server_error"
			modelErr.Message = fmt.Sprintf("Gemini server error (%d)", apiErr.Code)
			modelErr.Retryable = true
		default:
			modelErr.Category = "unknown_api_error"
			modelErr.Message = fmt.Sprintf("API error: %s", apiErr.Message)
			modelErr.Retryable = apiErr.Code >= 500
		}

		return modelErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		modelErr.Category = "timeout"
		modelErr.Message = "Request timeout - model call took too long"
		modelErr.Retryable = true
		return modelErr
	}

	if errors.Is(err, context.Canceled) {
		modelErr.Category = "canceled"
		modelErr.Message = "Request was canceled"
		return modelErr
	}

	if errors.Is(err, ErrUnparseableResponse) {
		modelErr.Category = "unparseable_response"
		modelErr.Message = "Model returned text without a recoverable record"
		modelErr.Retryable = true
		return modelErr
	}

	// Fall back to message patterns the Gemini service is known to emit.
	errMsg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errMsg, "503"),
		strings.Contains(errMsg, "429"),
		strings.Contains(errMsg, "unavailable"),
		strings.Contains(errMsg, "resource_exhausted"),
		strings.Contains(errMsg, "overloaded"):
		modelErr.Category = "service_busy"
		modelErr.Message = "Gemini service busy or rate limited"
		modelErr.Retryable = true
	case strings.Contains(errMsg, "timeout"), strings.Contains(errMsg, "deadline"):
		modelErr.Category = "timeout"
		modelErr.Message = "Request timeout"
		modelErr.Retryable = true
	case strings.Contains(errMsg, "connection"), strings.Contains(errMsg, "network"):
		modelErr.Category = "network_error"
		modelErr.Message = "Network connection error"
		modelErr.Retryable = true
	case strings.Contains(errMsg, "quota"), strings.Contains(errMsg, "limit"):
		modelErr.Category = "quota_exceeded"
		modelErr.Message = "API quota exceeded - daily or monthly limit reached"
	}

	return modelErr
}

// ExtractionFailedError is the terminal failure surfaced to the caller after
// every candidate model exhausted its attempt budget. It carries the last
// observed error detail; no partial field set accompanies it.
type ExtractionFailedError struct {
	Candidates int
	TotalCalls int
	LastErr    error
}

func (e *ExtractionFailedError) Error() string {
	return fmt.Sprintf("extraction failed: all %d candidate models exhausted after %d calls, last error: %v",
		e.Candidates, e.TotalCalls, e.LastErr)
}

func (e *ExtractionFailedError) Unwrap() error { return e.LastErr }

// BuildUserFriendlyError converts the terminal failure into a response body
// with actionable guidance for the review UI.
func BuildUserFriendlyError(err *ExtractionFailedError) map[string]interface{} {
	modelErr := CategorizeModelError(err.LastErr)

	errorResponse := map[string]interface{}{
		"error":    "AI extraction failed",
		"category": modelErr.Category,
		"details":  modelErr.Message,
	}

	switch modelErr.Category {
	case "rate_limit", "service_busy":
		errorResponse["suggestion"] = "The AI service is busy. Please wait a moment and retry the extraction."
	case "quota_exceeded":
		errorResponse["suggestion"] = "Daily API quota exceeded. Please contact support or try again tomorrow."
	case "unauthorized", "forbidden":
		errorResponse["suggestion"] = "API authentication failed. Please contact the system administrator."
	case "payload_too_large":
		errorResponse["suggestion"] = "The document is too large. Please upload fewer pages or a smaller scan."
	case "timeout":
		errorResponse["suggestion"] = "The request took too long. Please retry, ideally with a clearer scan."
	case "server_error":
		errorResponse["suggestion"] = "The Gemini service is temporarily unavailable. Please try again in a few minutes."
	case "unparseable_response":
		errorResponse["suggestion"] = "The AI could not read this document. Please retry or enter the fields manually."
	default:
		errorResponse["suggestion"] = "An unexpected error occurred. Please retry or enter the fields manually."
	}

	return errorResponse
}
