package pkgerror

import "errors"

type Code int

const (
	CodeInternal Code = iota
	CodeInvalidInput
	CodeUnprocessable
	CodeUpstream
	CodeNotFound
)

func (c Code) String() string {
	switch c {
	case CodeInvalidInput:
		return "INVALID_INPUT"
	case CodeUnprocessable:
		return "UNPROCESSABLE"
	case CodeUpstream:
		return "UPSTREAM_FAILURE"
	case CodeNotFound:
		return "NOT_FOUND"
	default:
		return "INTERNAL"
	}
}

// Error is an error whose message is safe to show to API clients.
type Error struct {
	msg  string
	code Code
	err  error
}

func NewBusiness(msg string, code Code) *Error {
	return &Error{msg: msg, code: code}
}

// WrapBusiness attaches a client-facing message and code to err. The wrapped
// error stays reachable through errors.Is and errors.As.
func WrapBusiness(err error, msg string, code Code) *Error {
	return &Error{msg: msg, code: code, err: err}
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.err
}

func (e *Error) Message() string {
	return e.msg
}

func (e *Error) Code() Code {
	return e.code
}

// AsBusiness reports whether err carries a business error.
func AsBusiness(err error) (*Error, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}
