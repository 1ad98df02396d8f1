// Package security validates free-text fields before they reach storage or a
// model prompt.
package security

import (
	"errors"
	"unicode"
)

var (
	ErrInputTooLarge       = errors.New("input exceeds maximum size")
	ErrNullByteDetected    = errors.New("null byte detected in input")
	ErrHighWhitespaceRatio = errors.New("suspicious whitespace ratio")
)

// InputValidator bounds the size and shape of caller-supplied text. The zero
// value is not usable; construct with NewInputValidator.
type InputValidator struct {
	MaxSize            int64
	MaxWhitespaceRatio float64
}

// NewInputValidator returns a validator sized for clinical free text such as
// patient details and detection prompts.
func NewInputValidator() *InputValidator {
	return &InputValidator{
		MaxSize:            16 * 1024,
		MaxWhitespaceRatio: 0.8,
	}
}

// Validate rejects text that is oversized, contains null bytes, or is almost
// entirely whitespace.
func (v *InputValidator) Validate(input string) error {
	if int64(len(input)) > v.MaxSize {
		return ErrInputTooLarge
	}

	for i := 0; i < len(input); i++ {
		if input[i] == 0 {
			return ErrNullByteDetected
		}
	}

	if v.MaxWhitespaceRatio > 0 && len(input) > 0 {
		whitespaceCount := 0
		for _, r := range input {
			if unicode.IsSpace(r) {
				whitespaceCount++
			}
		}
		if float64(whitespaceCount)/float64(len(input)) > v.MaxWhitespaceRatio {
			return ErrHighWhitespaceRatio
		}
	}

	return nil
}
