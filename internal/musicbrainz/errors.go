package musicbrainz

import "fmt"

// NetworkError reports a connection failure, a request timeout, or retry
// exhaustion. It is recoverable: the pipeline continues without this
// provider's contribution.
type NetworkError struct {
	Endpoint string
	Attempts int
	Err      error
}

func (e *NetworkError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("musicbrainz %s: %d attempts failed: %v", e.Endpoint, e.Attempts, e.Err)
	}
	return fmt.Sprintf("musicbrainz %s: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ResponseError reports a non-2xx status that is not worth retrying.
type ResponseError struct {
	Endpoint   string
	StatusCode int
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("musicbrainz %s: status %d", e.Endpoint, e.StatusCode)
}

// ParseError reports a malformed provider payload. The caller treats it
// the same as a failed lookup.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("decode musicbrainz payload: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
