package service

import "errors"

// ErrUnauthorizedAccess is returned when an operation references an
// idea or document owned by a different user. It is terminal and not
// retryable; handlers translate it into an HTTP 403.
var ErrUnauthorizedAccess = errors.New("unauthorized access")
