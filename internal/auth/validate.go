// ABOUTME: Client-side credential validation run before any remote call.
// ABOUTME: Produces field-level messages keyed by form field name.
package auth

import (
	"regexp"

	"github.com/harperreed/healthtrack/internal/apperr"
)

// MinPasswordLength is the shortest password accepted.
const MinPasswordLength = 6

// Form field names used as FieldErrors keys.
const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// ValidateLogin checks login credentials. It returns nil when valid.
func ValidateLogin(email, password string) error {
	fe := apperr.FieldErrors{}
	validateEmail(fe, email)
	validatePassword(fe, password)
	return fe.OrNil()
}

// ValidateRegistration checks registration input, including the password
// confirmation. It returns nil when valid.
func ValidateRegistration(email, password, confirm string) error {
	fe := apperr.FieldErrors{}
	validateEmail(fe, email)
	validatePassword(fe, password)
	if password != confirm {
		fe.Add(FieldConfirmPassword, "Passwords do not match")
	}
	return fe.OrNil()
}

func validateEmail(fe apperr.FieldErrors, email string) {
	switch {
	case email == "":
		fe.Add(FieldEmail, "Email is required")
	case !emailPattern.MatchString(email):
		fe.Add(FieldEmail, "Email address is invalid")
	}
}

func validatePassword(fe apperr.FieldErrors, password string) {
	switch {
	case password == "":
		fe.Add(FieldPassword, "Password is required")
	case len(password) < MinPasswordLength:
		fe.Add(FieldPassword, "Password must be at least 6 characters")
	}
}
