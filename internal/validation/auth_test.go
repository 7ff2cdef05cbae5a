package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validSignup() SignupForm {
	return SignupForm{
		Name:            "AI Artist",
		Username:        "aiartist",
		Email:           "artist@domin8x.app",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}
}

func TestSignup(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SignupForm)
		fields []string
	}{
		{"valid", func(*SignupForm) {}, nil},
		{"short username", func(f *SignupForm) { f.Username = "ab" }, []string{"username"}},
		{"short password", func(f *SignupForm) { f.Password = "12345"; f.ConfirmPassword = "12345" }, []string{"password"}},
		{"two accented characters", func(f *SignupForm) { f.Username = "éé" }, []string{"username"}},
		{"accented username", func(f *SignupForm) { f.Username = "léa" }, nil},
		{"multibyte password too short", func(f *SignupForm) { f.Password = "ééééé"; f.ConfirmPassword = "ééééé" }, []string{"password"}},
		{"mismatch", func(f *SignupForm) { f.ConfirmPassword = "secret2" }, []string{"confirm_password"}},
		{"bad email", func(f *SignupForm) { f.Email = "artist@domin8x" }, []string{"email"}},
		{"email with space", func(f *SignupForm) { f.Email = "a b@c.de" }, []string{"email"}},
		{"missing name", func(f *SignupForm) { f.Name = "  " }, []string{"name"}},
		{"everything wrong", func(f *SignupForm) {
			*f = SignupForm{Password: "x", ConfirmPassword: "y"}
		}, []string{"name", "username", "email", "password", "confirm_password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validSignup()
			tt.mutate(&f)
			errs := Signup(f)
			assert.Len(t, errs, len(tt.fields))
			for _, field := range tt.fields {
				assert.Contains(t, errs, field)
			}
		})
	}
}

func TestSignin(t *testing.T) {
	assert.Empty(t, Signin(SigninForm{Username: "abc", Password: "123456"}))
	errs := Signin(SigninForm{Username: "ab", Password: "12345"})
	assert.Equal(t, "Username must be at least 3 characters", errs["username"])
	assert.Equal(t, "Password must be at least 6 characters", errs["password"])
}
