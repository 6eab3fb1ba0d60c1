// Package validator checks credential input before it is submitted for sign-in
// or sign-up. All functions are pure and safe for concurrent use.
package validator

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MsgEmailEmpty           = "Email cannot be empty!"
	MsgEmailInvalid         = "Invalid email format"
	MsgPasswordEmpty        = "Password cannot be empty!"
	MsgPasswordWeak         = "Password must contain at least one uppercase letter, one digit, one special character, and be between 8 to 15 characters long."
	MsgConfirmPasswordEmpty = "Confirm password cannot be empty!"
	MsgPasswordsMismatch    = "Passwords do not match"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 15
)

var emailRegexp = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// Result is the outcome of a single field check. Message is empty iff Valid.
type Result struct {
	Valid   bool
	Message string
}

func ok() Result {
	return Result{Valid: true}
}

func fail(message string) Result {
	return Result{Message: message}
}

// ValidateEmail checks that email is non-empty and looks like local@domain.tld.
func ValidateEmail(email string) Result {
	if email == "" {
		return fail(MsgEmailEmpty)
	}
	if !emailRegexp.MatchString(email) {
		return fail(MsgEmailInvalid)
	}
	return ok()
}

// ValidatePassword checks the password complexity rule: 8 to 15 characters
// with at least one uppercase letter, one digit and one character that is
// neither a letter nor a digit.
func ValidatePassword(password string) Result {
	if password == "" {
		return fail(MsgPasswordEmpty)
	}

	n := utf8.RuneCountInString(password)
	if n < minPasswordLen || n > maxPasswordLen {
		return fail(MsgPasswordWeak)
	}

	var hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case isLineTerminator(r):
			return fail(MsgPasswordWeak)
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	if !hasUpper || !hasDigit || !hasSpecial {
		return fail(MsgPasswordWeak)
	}

	return ok()
}

func isLineTerminator(r rune) bool {
	switch r {
	case '\n', '\v', '\f', '\r', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// ValidateConfirmPassword checks that confirm is non-empty and equals password exactly.
// The password itself is not checked here.
func ValidateConfirmPassword(password, confirm string) Result {
	if confirm == "" {
		return fail(MsgConfirmPasswordEmpty)
	}
	if password != confirm {
		return fail(MsgPasswordsMismatch)
	}
	return ok()
}

// Field names reported in FieldError.
const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirm_password"
)

// Credentials is the content of a sign-in or sign-up form.
type Credentials struct {
	Email           string
	Password        string
	ConfirmPassword string
}

// FieldError is a failed check of a single form field.
type FieldError struct {
	Field   string
	Message string
}

// Errors is the list of failed field checks of a form, in field order.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// Message returns the message reported for field, or "" if the field passed.
func (e Errors) Message(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

func (e Errors) add(field string, r Result) Errors {
	if r.Valid {
		return e
	}
	return append(e, FieldError{Field: field, Message: r.Message})
}

func (e Errors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// ValidateSignIn checks a sign-in form. Existing accounts may predate the
// password complexity rule, so the password only has to be present.
func ValidateSignIn(c Credentials) error {
	var errs Errors
	errs = errs.add(FieldEmail, ValidateEmail(c.Email))
	if c.Password == "" {
		errs = errs.add(FieldPassword, fail(MsgPasswordEmpty))
	}
	return errs.orNil()
}

// ValidateSignUp checks a sign-up form with all field rules.
func ValidateSignUp(c Credentials) error {
	var errs Errors
	errs = errs.add(FieldEmail, ValidateEmail(c.Email))
	errs = errs.add(FieldPassword, ValidatePassword(c.Password))
	errs = errs.add(FieldConfirmPassword, ValidateConfirmPassword(c.Password, c.ConfirmPassword))
	return errs.orNil()
}

// Outline colors of a form field.
const (
	StrokeError   = "red"
	StrokeFocused = "blue"
	StrokeIdle    = "gray"
)

// StrokeColor picks the outline color of a form field from its focus and
// validation message.
func StrokeColor(focused bool, message string) string {
	switch {
	case message != "":
		return StrokeError
	case focused:
		return StrokeFocused
	default:
		return StrokeIdle
	}
}
