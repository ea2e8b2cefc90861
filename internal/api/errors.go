package api

import (
	"errors"
	"fmt"
	"net/http"

	"campusfeed/internal/httputil"
	"campusfeed/internal/model"
)

// Error is a non-2xx answer decoded from the error envelope.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
}

// codeErrors maps envelope codes to the model sentinels they stand for.
var codeErrors = map[string]error{
	httputil.ErrCodeBodyRequired:   model.ErrBodyRequired,
	httputil.ErrCodeBodyTooLong:    model.ErrBodyTooLong,
	httputil.ErrCodeCommentDeleted: model.ErrCommentDeleted,
	httputil.ErrCodePollClosed:     model.ErrPollClosed,
	httputil.ErrCodeAlreadyVoted:   model.ErrAlreadyVoted,
	httputil.ErrCodeInvalidOption:  model.ErrInvalidOption,
}

// Is lets callers test an Error against model sentinels with errors.Is.
func (e *Error) Is(target error) bool {
	if sentinel, ok := codeErrors[e.Code]; ok && errors.Is(sentinel, target) {
		return true
	}
	return false
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsRetryable reports whether err is a transport failure or a 5xx, as opposed
// to the server rejecting the request.
func IsRetryable(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status >= http.StatusInternalServerError
	}
	return err != nil
}
