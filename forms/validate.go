package forms

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const MinPasswordLength = 6

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{9,12}$`)
	phoneStrip   = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

func IsEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

func IsPhone(s string) bool {
	return phonePattern.MatchString(phoneStrip.Replace(strings.TrimSpace(s)))
}

func required(e Errors, f Field, v, label string) bool {
	if strings.TrimSpace(v) == "" {
		e.Add(f, label+" is required")
		return false
	}
	return true
}

func email(e Errors, f Field, v string) {
	if required(e, f, v, "Email") && !IsEmail(v) {
		e.Add(f, "Please enter a valid email address")
	}
}

func password(e Errors, f Field, v string) {
	if required(e, f, v, "Password") && utf8.RuneCountInString(v) < MinPasswordLength {
		e.Add(f, fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
}

func phone(e Errors, f Field, v string) {
	if required(e, f, v, "Phone number") && !IsPhone(v) {
		e.Add(f, "Please enter a valid phone number")
	}
}

func maxLength(e Errors, f Field, v, label string, n int) {
	if utf8.RuneCountInString(v) > n {
		e.Add(f, fmt.Sprintf("%s must be at most %d characters", label, n))
	}
}

// ParsePositive parses a decimal input and rejects zero, negatives and NaN.
func ParsePositive(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v != v || v <= 0 {
		return 0, false
	}
	return v, true
}
