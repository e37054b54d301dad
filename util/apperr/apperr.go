// util/apperr/apperr.go
package apperr

import "errors"

// Kind classifies a failure for the HTTP boundary. The boundary maps
// kinds to status codes; services only pick the kind and the message.
type Kind string

const (
	NotFound Kind = "NOT_FOUND"
	Invalid  Kind = "INVALID"
	Conflict Kind = "CONFLICT"
)

type appError struct {
	kind Kind
	msg  string
}

func (e appError) Error() string { return e.msg }
func (e appError) Kind() Kind    { return e.kind }

func E(kind Kind, msg string) error { return appError{kind: kind, msg: msg} }

// KindOf extracts the kind, or "" for plain errors (treated as internal).
func KindOf(err error) Kind {
	var ke interface{ Kind() Kind }
	if errors.As(err, &ke) {
		return ke.Kind()
	}
	return ""
}
