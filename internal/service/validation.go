package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/joinportal/intake/internal/model"
)

// Field length bounds, counted in characters after trimming.
const (
	MinNameLength        = 3
	MaxNameLength        = 100
	MinGovernorateLength = 2
	MinEducationLength   = 2
	MinMotivationLength  = 20
	MaxMotivationLength  = 1000
)

// Submitted field names, as they appear in the request body.
const (
	FieldName        = "name"
	FieldEmail       = "email"
	FieldPhone       = "phone"
	FieldAge         = "age"
	FieldGovernorate = "governorate"
	FieldEducation   = "education"
	FieldMotivation  = "motivation"
)

var (
	// No part may contain '@' or any whitespace, including vertical tab,
	// Unicode space separators and the byte order mark.
	emailRegex = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)
	// Local mobile numbers: 11 digits with an 010/011/012/015 prefix.
	phoneRegex = regexp.MustCompile(`^01[0125][0-9]{8}$`)
)

// ValidationError reports the first submitted field that failed its rule.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s", e.Field)
}

// Message is the client-facing description of the failure.
func (e *ValidationError) Message() string {
	if e.Field == FieldPhone {
		return "Invalid phone number"
	}
	return "Invalid " + e.Field
}

// validate checks every field in submission order and returns the normalized
// application on success. The returned application has no ID yet.
func validate(input SubmitApplicationInput) (*model.Application, error) {
	name := trimBlank(input.Name)
	if !lengthBetween(name, MinNameLength, MaxNameLength) {
		return nil, &ValidationError{Field: FieldName}
	}

	email := trimBlank(input.Email)
	if !emailRegex.MatchString(email) {
		return nil, &ValidationError{Field: FieldEmail}
	}

	phone := trimBlank(input.Phone)
	if !phoneRegex.MatchString(phone) {
		return nil, &ValidationError{Field: FieldPhone}
	}

	age, ok := ParseAge(input.Age)
	if !ok || age < model.MinApplicantAge || age > model.MaxApplicantAge {
		return nil, &ValidationError{Field: FieldAge}
	}

	governorate := trimBlank(input.Governorate)
	if utf8.RuneCountInString(governorate) < MinGovernorateLength {
		return nil, &ValidationError{Field: FieldGovernorate}
	}

	education := trimBlank(input.Education)
	if utf8.RuneCountInString(education) < MinEducationLength {
		return nil, &ValidationError{Field: FieldEducation}
	}

	motivation := trimBlank(input.Motivation)
	if !lengthBetween(motivation, MinMotivationLength, MaxMotivationLength) {
		return nil, &ValidationError{Field: FieldMotivation}
	}

	return &model.Application{
		Name:        name,
		Email:       NormalizeEmail(email),
		Phone:       phone,
		Age:         age,
		Governorate: governorate,
		Education:   education,
		Experience:  normalizeOptional(input.Experience),
		Motivation:  motivation,
	}, nil
}

// NormalizeEmail returns the uniqueness key for an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(trimBlank(email))
}

// ParseAge reads a leading decimal integer, ignoring leading whitespace and
// anything after the digits ("24", " 24", "24 years" all give 24).
func ParseAge(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, isBlank)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// isBlank reports whether r is whitespace or a line terminator. Unlike
// unicode.IsSpace it includes U+FEFF and excludes U+0085.
func isBlank(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\ufeff':
		return true
	}
	return unicode.In(r, unicode.Zs, unicode.Zl, unicode.Zp)
}

func trimBlank(s string) string {
	return strings.TrimFunc(s, isBlank)
}

func lengthBetween(s string, lo, hi int) bool {
	n := utf8.RuneCountInString(s)
	return n >= lo && n <= hi
}

// normalizeOptional trims v and maps blank values to nil.
func normalizeOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := trimBlank(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
