package apperror

import "net/http"

// ErrStoreUnavailable is returned when the record store cannot be reached,
// as opposed to a query that ran and failed.
var ErrStoreUnavailable = New(
	CodeServiceUnavailable,
	"The record store is unavailable",
	http.StatusServiceUnavailable,
)
