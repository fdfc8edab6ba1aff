package sessions

import "fmt"

// Kind classifies a domain error so the transport layer can map it to a
// status code without matching on message text.
type Kind string

const (
	KindTransport    Kind = "transport"
	KindUnavailable  Kind = "unavailable"
	KindUnknownTheme Kind = "unknown_theme"
	KindNotFound     Kind = "not_found"
	KindValidation   Kind = "validation"
)

type Error struct {
	Kind    Kind
	Message string
	// Field names the offending field for validation errors.
	Field string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func domainError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}
