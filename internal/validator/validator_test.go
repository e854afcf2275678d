package validator

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateLogin(t *testing.T) {
	for _, login := range []string{"abc", "jane", strings.Repeat("x", 20)} {
		if err := ValidateLogin(login); err != nil {
			t.Fatalf("ValidateLogin(%q): unexpected error: %v", login, err)
		}
	}
	for _, login := range []string{"", "ab", strings.Repeat("x", 21)} {
		if err := ValidateLogin(login); !errors.Is(err, ErrInvalidLogin) {
			t.Fatalf("ValidateLogin(%q): expected ErrInvalidLogin, got %v", login, err)
		}
	}
}

func TestValidatePhone(t *testing.T) {
	for _, phone := range []string{"+123456789", "123456789", "+123456789012"} {
		if err := ValidatePhone(phone); err != nil {
			t.Fatalf("ValidatePhone(%q): unexpected error: %v", phone, err)
		}
	}
	for _, phone := range []string{"", "12345678", "+1234567890123", "phone", "12 34 56 78 9"} {
		if err := ValidatePhone(phone); !errors.Is(err, ErrInvalidPhone) {
			t.Fatalf("ValidatePhone(%q): expected ErrInvalidPhone, got %v", phone, err)
		}
	}
}
