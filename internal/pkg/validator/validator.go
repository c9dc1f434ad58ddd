package validator

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

// Identifier validation: 1-64 chars, A-Z, a-z, 0-9, ., _, -
var identifierRegex = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

func IsValidIdentifier(id string) bool {
	return identifierRegex.MatchString(strings.TrimSpace(id))
}

// HasMinLength counts runes, not bytes.
func HasMinLength(s string, n int) bool {
	return utf8.RuneCountInString(s) >= n
}

// IsValidFileExt reports whether filename ends with one of exts (case-insensitive).
func IsValidFileExt(filename string, exts []string) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return false
	}
	return IsInSlice(strings.ToLower(filename[i:]), exts)
}
