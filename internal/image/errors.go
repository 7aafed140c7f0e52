package image

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoImageData is returned when the service answered 200 but the
	// response carried no entries in "data".
	ErrNoImageData = errors.New("no image data in response")

	// ErrMissingImage is returned when the first entry has neither b64_json nor url.
	ErrMissingImage = errors.New("no image data in response (neither b64_json nor url)")

	// ErrDecode wraps base64 decoding failures of the returned image.
	ErrDecode = errors.New("failed to decode image")
)

// APIError is a non-200 answer from the image service.
type APIError struct {
	StatusCode int
	Body       string // raw response body
	Message    string // error.message from the JSON body, if present
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// Hint returns advice for the user based on the status code.
func (e *APIError) Hint() string {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return "API key is invalid, check your key settings"
	case e.StatusCode == http.StatusForbidden:
		return "access denied, check your permissions or account balance"
	case e.StatusCode == http.StatusTooManyRequests:
		return "too many requests, try again later"
	case e.StatusCode == http.StatusInternalServerError:
		return "server error, try again later"
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return "request rejected, check the model, prompt and image settings"
	default:
		return "image request failed, try again"
	}
}

// IsNoImageData reports whether err is the empty-result condition.
func IsNoImageData(err error) bool {
	return errors.Is(err, ErrNoImageData)
}
