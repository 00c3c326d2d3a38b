package selection

import "fmt"

// ErrorKind categorizes selection expression failures
type ErrorKind int

const (
	// KindInvalidToken indicates a token that does not match the expression grammar
	KindInvalidToken ErrorKind = iota
	// KindOutOfRange indicates a page number outside [1, pageCount]
	KindOutOfRange
	// KindInvalidRange indicates a range token N-M with N > M
	KindInvalidRange
	// KindEmptyResult indicates an expression whose final resolved set is empty
	KindEmptyResult
)

// String returns a string representation of the ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidToken:
		return "INVALID_TOKEN"
	case KindOutOfRange:
		return "OUT_OF_RANGE"
	case KindInvalidRange:
		return "INVALID_RANGE"
	case KindEmptyResult:
		return "EMPTY_RESULT"
	default:
		return "UNKNOWN"
	}
}

// Error describes why a selection expression could not be resolved.
// It carries the offending token and the full expression so callers can
// surface an actionable message without reconstructing context.
type Error struct {
	Kind       ErrorKind
	Token      string
	Expression string
	PageCount  int
	Detail     string
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind.String(), e.Detail)
	if e.Token != "" {
		msg += fmt.Sprintf(" (token %q)", e.Token)
	}
	return msg + fmt.Sprintf(" in selection %q", e.Expression)
}

func newError(kind ErrorKind, token, expression string, pageCount int, format string, args ...any) *Error {
	return &Error{
		Kind:       kind,
		Token:      token,
		Expression: expression,
		PageCount:  pageCount,
		Detail:     fmt.Sprintf(format, args...),
	}
}
