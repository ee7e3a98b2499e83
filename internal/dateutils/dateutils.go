// Package dateutils provides date parsing helpers, including translation of
// the strftime format strings returned by the LLM into Go reference-time
// layouts.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Common date format constants used throughout the application
const (
	DateLayoutISO       = "2006-01-02"
	DateLayoutEuropean  = "02.01.2006"
	DateLayoutUS        = "01/02/2006"
	DateLayoutFull      = "2006-01-02 15:04:05"
	DateLayoutWithMonth = "2-Jan-2006"
)

// CommonFormats is a list of standard layouts to try when parsing dates
// without a known format.
var CommonFormats = []string{
	DateLayoutISO,
	DateLayoutEuropean,
	DateLayoutUS,
	DateLayoutFull,
	DateLayoutWithMonth,
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
}

// strftimeDirectives maps strftime conversion specifiers to Go reference-time
// equivalents. Only directives that appear in real bank exports are covered;
// anything else makes the translation fail and the caller falls back to
// CommonFormats.
var strftimeDirectives = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'e': "2",
	'b': "Jan",
	'B': "January",
	'H': "15",
	'M': "04",
	'S': "05",
	'p': "PM",
	'I': "03",
}

// LayoutFromStrftime translates a strftime format string (e.g. "%d/%m/%Y")
// into a Go time layout. Literal text between directives is preserved.
func LayoutFromStrftime(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("empty format string")
	}
	var b strings.Builder
	sawDirective := false
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			b.WriteByte(format[i])
			continue
		}
		if i+1 >= len(format) {
			return "", fmt.Errorf("trailing %% in format string %q", format)
		}
		i++
		if format[i] == '%' {
			b.WriteByte('%')
			continue
		}
		layout, ok := strftimeDirectives[format[i]]
		if !ok {
			return "", fmt.Errorf("unsupported strftime directive %%%c in %q", format[i], format)
		}
		b.WriteString(layout)
		sawDirective = true
	}
	if !sawDirective {
		return "", fmt.Errorf("format string %q contains no strftime directives", format)
	}
	return b.String(), nil
}

// ParseDate attempts to parse a date string using the common layouts.
// Returns the parsed time and the layout that matched.
func ParseDate(dateStr string) (time.Time, string, error) {
	dateStr = CleanDateString(dateStr)
	for _, format := range CommonFormats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, format, nil
		}
	}
	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", dateStr)
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD).
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

var spaceRe = regexp.MustCompile(`\s+`)

// CleanDateString trims and collapses whitespace in a date string.
func CleanDateString(dateStr string) string {
	return spaceRe.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}
