package errs

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// NotFound is returned when a resource cannot be found in the store.
	NotFound modelError = "models: resource not found"
	// PasswordIncorrect is returned when an invalid password
	// is used when attempting to authenticate a user.
	PasswordIncorrect modelError = "models: incorrect password provided"
	// UsernameRequired is returned when a create or rename is attempted
	// with an empty username.
	UsernameRequired modelError = "models: username is required"
	// UsernameTaken is returned when a create or rename is attempted
	// with a username that is already in use.
	UsernameTaken modelError = "models: username is already taken"
	// PasswordRequired is returned when a create is attempted
	// without a user password provided.
	PasswordRequired modelError = "models: password is required"
)

type modelError string

func (e modelError) Error() string {
	return string(e)
}

func (e modelError) Public() string {
	s := strings.Replace(string(e), "models: ", "", 1)
	split := strings.Split(s, " ")
	split[0] = strings.Title(split[0])
	return strings.Join(split, " ")
}

// Application error codes. They map onto HTTP status codes at the edge
// but carry no transport meaning of their own.
const (
	ECONFLICT     = "conflict"
	EINTERNAL     = "internal"
	EINVALID      = "invalid"
	ENOTFOUND     = "not_found"
	EUNAUTHORIZED = "unauthorized"
)

// Error is an application error with a machine-readable code and a
// human-readable message.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("fritter error: code=%s message=%s", e.Code, e.Message)
}

// Errorf builds an *Error from a code and a format string.
func Errorf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode extracts the code of any error. Plain errors report EINTERNAL,
// the model sentinels report the code matching their meaning.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	}
	if errors.As(err, &e) {
		return e.Code
	}
	switch {
	case errors.Is(err, NotFound):
		return ENOTFOUND
	case errors.Is(err, UsernameTaken):
		return ECONFLICT
	case errors.Is(err, PasswordIncorrect):
		return EUNAUTHORIZED
	case errors.Is(err, UsernameRequired), errors.Is(err, PasswordRequired):
		return EINVALID
	}
	return EINTERNAL
}

// ErrorMessage extracts the user-safe message of any error. Plain errors
// get a generic message so internals never leak to the client.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	}
	if errors.As(err, &e) {
		return e.Message
	}
	var m modelError
	if errors.As(err, &m) {
		return m.Public()
	}
	return "An internal error has occurred."
}
