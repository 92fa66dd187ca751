package azure

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
)

// Error is a type that allows for error constants below.
type Error string

// Error returns a string representation of the error.
func (e Error) Error() string { return string(e) }

const (
	// ErrInvalidURL matches every *InvalidURLError.
	ErrInvalidURL = Error("invalid blob url")

	// ErrNoHost - the URL has no host to derive the account from.
	ErrNoHost = Error("no host")

	// ErrNoPathSegments - the URL cannot carry a path.
	ErrNoPathSegments = Error("no path segments")

	// ErrNoContainer - the URL path has no container segment.
	ErrNoContainer = Error("no container")
)

// InvalidURLError reports a URL that does not address a blob.
type InvalidURLError struct {
	URL string
	Err error
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("azure, invalid blob url %q, %v", e.URL, e.Err)
}

func (e *InvalidURLError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrInvalidURL) hold for every InvalidURLError.
func (e *InvalidURLError) Is(target error) bool { return target == ErrInvalidURL }

func isNotFound(err error) bool {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode == http.StatusNotFound
	}

	return false
}
