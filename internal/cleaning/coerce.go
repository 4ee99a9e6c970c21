package cleaning

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrCoercion is wrapped by every CoercionError.
var ErrCoercion = errors.New("value cannot be coerced")

// CoercionError reports a non-empty cell that does not parse as its field type.
type CoercionError struct {
	Row    int // 1-based data row; the header is not counted
	Column string
	Value  string
	Err    error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("row %d: column %s: %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *CoercionError) Unwrap() []error {
	return []error{ErrCoercion, e.Err}
}

var (
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// dateLayouts are tried in order; the first match wins.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// parseInt reads the leading base-10 integer of s, ignoring surrounding
// whitespace and any trailing non-digit text ("12abc" and "3.7" both parse).
func parseInt(s string) (int64, error) {
	m := intPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, fmt.Errorf("no leading integer")
	}
	return strconv.ParseInt(m, 10, 64)
}

// parseFloat reads the longest leading decimal literal of s.
func parseFloat(s string) (float64, error) {
	m := floatPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, fmt.Errorf("no leading decimal")
	}
	return strconv.ParseFloat(m, 64)
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}
