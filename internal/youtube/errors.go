package youtube

import (
	"errors"
	"fmt"
)

// ErrorKind classifies remote platform failures so callers can pick a retry
// policy. The gateway itself never retries these; only a rejected bearer
// token (ErrTokenRejected) triggers its single internal retry.
type ErrorKind string

const (
	// KindNotFound - the video or comment does not exist (or is not visible)
	KindNotFound ErrorKind = "not_found"
	// KindRateLimited - quota exhausted or too many requests; retry later
	KindRateLimited ErrorKind = "rate_limited"
	// KindValidation - the platform rejected the request contents
	KindValidation ErrorKind = "validation"
	// KindTransient - network failure or 5xx; safe to retry
	KindTransient ErrorKind = "transient"
)

// ErrTokenRejected indicates the platform refused the access token even
// though it looked valid locally (revocation or clock skew).
var ErrTokenRejected = errors.New("access token rejected by platform")

// RemoteError is a classified failure from the video platform.
type RemoteError struct {
	Kind       ErrorKind
	Reason     string
	Message    string
	StatusCode int
}

func (e *RemoteError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s (%d %s): %s", e.Kind, e.StatusCode, e.Reason, e.Message)
	}
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.StatusCode, e.Message)
}

// Is matches two RemoteErrors by kind, so callers can write
// errors.Is(err, &RemoteError{Kind: KindNotFound}).
func (e *RemoteError) Is(target error) bool {
	t, ok := target.(*RemoteError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// IsKind reports whether err is a RemoteError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Kind == kind
}
