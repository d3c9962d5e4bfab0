// Package validation holds the input rules shared by several domain packages.
package validation

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var allowedName = regexp.MustCompile(`^[a-zA-Z0-9가-힣ㄱ-ㅎㅏ-ㅣ ()\[\]+\-&/_]*$`)

const kakaoWord = "카카오"

// Error is returned when user input breaks one or more rules. It maps to a
// 400 response.
type Error struct {
	Messages []string
}

// New builds an Error from one or more messages.
func New(messages ...string) *Error {
	return &Error{Messages: messages}
}

func (e *Error) Error() string {
	return strings.Join(e.Messages, ", ")
}

// IsError reports whether err wraps a validation Error.
func IsError(err error) bool {
	var verr *Error
	return errors.As(err, &verr)
}

// Name checks a display name and returns every broken rule. Blank names
// short-circuit with a single message.
func Name(name, label string, maxLength int, checkKakao bool) []string {
	var errs []string

	if strings.TrimSpace(name) == "" {
		return append(errs, label+" is required.")
	}

	if utf8.RuneCountInString(name) > maxLength {
		errs = append(errs, label+" must be at most "+strconv.Itoa(maxLength)+" characters.")
	}

	if !allowedName.MatchString(name) {
		errs = append(errs, label+" contains invalid special characters. Allowed: ( ) [ ] + - & / _")
	}

	if checkKakao && strings.Contains(name, kakaoWord) {
		errs = append(errs, label+` containing "카카오" requires approval from the MD team.`)
	}

	return errs
}

// CheckName wraps Name into an error, or nil when the name is acceptable.
func CheckName(name, label string, maxLength int, checkKakao bool) error {
	if errs := Name(name, label, maxLength, checkKakao); len(errs) > 0 {
		return New(errs...)
	}
	return nil
}
