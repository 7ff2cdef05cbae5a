// Package validation provides input validation utilities
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 6
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Errors maps a form field to its message. An empty map means the input is valid.
type Errors map[string]string

// SignupForm is the registration input.
type SignupForm struct {
	Name            string
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// SigninForm is the login input.
type SigninForm struct {
	Username string
	Password string
}

// ValidateUsername checks the minimum username length in characters.
func ValidateUsername(username string) string {
	if utf8.RuneCountInString(strings.TrimSpace(username)) < MinUsernameLength {
		return "Username must be at least 3 characters"
	}
	return ""
}

// ValidatePassword checks the minimum password length in characters.
func ValidatePassword(password string) string {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return "Password must be at least 6 characters"
	}
	return ""
}

// ValidateEmail checks basic email shape.
func ValidateEmail(email string) string {
	if !emailRegex.MatchString(email) {
		return "Please enter a valid email address"
	}
	return ""
}

// Signup collects every failing field instead of stopping at the first.
func Signup(f SignupForm) Errors {
	errs := Errors{}
	if strings.TrimSpace(f.Name) == "" {
		errs["name"] = "Name is required"
	}
	if msg := ValidateUsername(f.Username); msg != "" {
		errs["username"] = msg
	}
	if msg := ValidateEmail(f.Email); msg != "" {
		errs["email"] = msg
	}
	if msg := ValidatePassword(f.Password); msg != "" {
		errs["password"] = msg
	}
	if f.Password != f.ConfirmPassword {
		errs["confirm_password"] = "Passwords do not match"
	}
	return errs
}

func Signin(f SigninForm) Errors {
	errs := Errors{}
	if msg := ValidateUsername(f.Username); msg != "" {
		errs["username"] = msg
	}
	if msg := ValidatePassword(f.Password); msg != "" {
		errs["password"] = msg
	}
	return errs
}
