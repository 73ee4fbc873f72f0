package fetcher

import "errors"

// Sentinel errors for article fetching. Callers fall back to the feed
// summary on any of them.
var (
	// ErrInvalidURL indicates the URL is malformed or not http(s).
	ErrInvalidURL = errors.New("invalid URL or unsupported scheme")

	// ErrPrivateIP indicates the URL resolves to a loopback, private or
	// link-local address.
	ErrPrivateIP = errors.New("private IP access denied (SSRF prevention)")

	// ErrTooManyRedirects indicates the redirect chain exceeded the limit.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates the response body exceeded the size limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("request timeout")

	// ErrReadabilityFailed indicates no readable article text was found.
	ErrReadabilityFailed = errors.New("content extraction failed")
)
