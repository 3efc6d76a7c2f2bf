// Package apperrors provides the error kit used across painelcore. Errors
// form sentinel trees: a package declares a root, derives children from it,
// and call sites attach context or underlying causes. The result stays fully
// compatible with errors.Is / errors.As through multi-error unwrapping.
package apperrors

// Error is the chainable application error. All derivation methods return a
// new Error; existing values are never mutated, so package-level sentinels
// are safe to share.
type Error interface {
	error
	Unwrap() []error // standard multi-error unwrapping for errors.Is / errors.As

	New(msg string) Error                   // derives a child sentinel with its own message
	Msg(msg string) Error                   // wraps with a contextual message
	MsgErr(msg string, errs ...error) Error // wraps with a message and attaches causes
	Err(errs ...error) Error                // attaches causes, keeping the current message
}

type appError struct {
	msg    string
	causes []error
}

var _ Error = (*appError)(nil)

// New creates a root error. Packages declare their sentinel trees from here.
func New(msg string) Error {
	return &appError{msg: msg}
}

func (e *appError) Error() string {
	return e.msg
}

// Unwrap exposes every attached cause. errors.Is walks the slice
// recursively, so a match anywhere in the tree holds.
func (e *appError) Unwrap() []error {
	return e.causes
}

// New derives a child sentinel: the child reports its own message and
// matches the parent under errors.Is.
func (e *appError) New(msg string) Error {
	return &appError{msg: msg, causes: []error{e}}
}

// Msg wraps e under a contextual message. The rendered message is
// "msg: <e>", mirroring fmt.Errorf("%s: %w", ...).
func (e *appError) Msg(msg string) Error {
	return &appError{msg: msg + ": " + e.msg, causes: []error{e}}
}

// MsgErr wraps e under a new message and attaches additional causes. The
// causes do not contribute to the message; they remain reachable for
// errors.Is and for log rendering.
func (e *appError) MsgErr(msg string, errs ...error) Error {
	return &appError{msg: msg, causes: append([]error{error(e)}, errs...)}
}

// Err attaches causes without changing the message.
func (e *appError) Err(errs ...error) Error {
	return &appError{msg: e.msg, causes: append([]error{error(e)}, errs...)}
}
