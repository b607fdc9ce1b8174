package auth

import (
	"errors"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Password policy mirrors the registration rules the identity store
// enforces: length plus character class requirements. Violations are
// reported one at a time, callers surface only the first.
var (
	PasswordMinLength = 8
	PasswordMaxLength = 100
)

func passwordRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("password is required"),
		validation.Length(PasswordMinLength, PasswordMaxLength).
			Error("password must be between 8 and 100 characters long"),
		validation.By(requireRune("password must contain at least one digit", unicode.IsDigit)),
		validation.By(requireRune("password must contain at least one uppercase letter", unicode.IsUpper)),
		validation.By(requireRune("password must contain at least one lowercase letter", unicode.IsLower)),
		validation.By(requireSymbol("password must contain at least one symbol")),
	}
}

// ValidatePassword checks the cleartext password against the policy and
// returns the FIRST violation only, as a human readable description.
func ValidatePassword(password string) error {
	for _, rule := range passwordRules() {
		if err := validation.Validate(password, rule); err != nil {
			return NewPolicyViolation(err.Error())
		}
	}
	return nil
}

func requireRune(msg string, match func(rune) bool) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		for _, r := range s {
			if match(r) {
				return nil
			}
		}
		return errors.New(msg)
	}
}

func requireSymbol(msg string) validation.RuleFunc {
	return requireRune(msg, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r)
	})
}
