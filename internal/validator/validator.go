package validator

import (
	"errors"
	"regexp"
	"unicode/utf8"
)

var (
	ErrInvalidLogin = errors.New("invalid login")
	ErrInvalidPhone = errors.New("invalid phone")
)

var phoneRegex = regexp.MustCompile(`^\+?[0-9]{9,12}$`)

func ValidateLogin(login string) error {
	length := utf8.RuneCountInString(login)
	if length < 3 || length > 20 {
		return ErrInvalidLogin
	}
	return nil
}

func ValidatePhone(phone string) error {
	if !phoneRegex.MatchString(phone) {
		return ErrInvalidPhone
	}
	return nil
}
