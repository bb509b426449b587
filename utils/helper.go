package utils

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"text/template"
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// returns slice removing duplicate elements
func UniqueSlice[T comparable](slice []T) []T {
	inResult := make(map[T]bool)
	var result []T
	for _, elm := range slice {
		if _, ok := inResult[elm]; !ok {
			inResult[elm] = true
			result = append(result, elm)
		}
	}
	return result
}

// execute given template string and return generated string
func ExecTemplate(tString string, data map[string]interface{}) (string, error) {
	t, err := template.New("sql").Parse(tString)
	if err != nil {
		return "", errors.New("error parsing sql template: " + err.Error())
	}
	var b bytes.Buffer
	if err := t.Execute(&b, data); err != nil {
		return "", errors.New("failed to execute sql template: " + err.Error())
	}
	return b.String(), nil
}

// ParseDecimal converts a string to a decimal.Decimal value.
func ParseDecimal(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, errors.New("empty decimal string")
	}
	return decimal.NewFromString(value)
}

// Flt is the lenient numeric parse used on stored data: anything unparsable is zero.
func Flt(value string) decimal.Decimal {
	d, err := ParseDecimal(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseDate parses YYYY-MM-DD; empty input yields today (UTC date).
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Today(), nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, NewValidationError(ErrInvalidDate, "%q (expected YYYY-MM-DD)", value)
	}
	return t, nil
}

func Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// TruncateToDate drops the clock part, keeping the calendar date as UTC midnight.
func TruncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Scrub turns "Write Off - AC" into "write_off___ac", the way column field names are derived from labels.
func Scrub(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return strings.ToLower(s)
}

// DocTypeTable maps a document type name to its table: "Cost Center" -> "cost_centers".
func DocTypeTable(docType string) string {
	return Scrub(strings.TrimSpace(docType)) + "s"
}

// IsIdentifier reports whether s is safe to use as a bare column name.
func IsIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

func SplitAndTrim(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
