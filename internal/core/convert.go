package core

// convert.go turns raw spreadsheet cells into typed values.
//
// Spreadsheet exports are messy: numbers arrive as "30", "30.0" or "3e1",
// codes carry stray whitespace, and Excel sometimes wraps text as ="...".
// Parsers here report failure with ok=false instead of returning a zero
// value, so an unparseable bound is treated as missing, never as 0.

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Date layouts accepted for candidate expiration dates. ISO comes first
// because browsers submit <input type="date"> that way; day-first forms
// follow the DD/MM/YYYY convention of the operators' spreadsheets.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006", "2/1/2006",
	"02-01-2006", "2-1-2006",
	"02.01.2006", "2.1.2006",
	"2006/01/02",
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// surrounding whitespace, the Excel formula prefix (="...") and
// surrounding quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}

// NormalizeCode produces the lookup key for a material code.
func NormalizeCode(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseDays parses a shelf-life bound in days. Decimal and scientific
// notation are accepted; fractions are truncated toward zero.
func ParseDays(s string) (int, bool) {
	s = CleanCell(s)
	if s == "" {
		return 0, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}

	if d.IsZero() {
		return 0, true
	}

	// Bound the magnitude from digits and exponent before IntPart, which
	// rescales to 10^|exponent| and wraps past int64.
	intDigits := int64(d.NumDigits()) + int64(d.Exponent())
	switch {
	case intDigits > maxDayDigits:
		return 0, false
	case intDigits <= 0:
		return 0, true
	}

	days := d.IntPart()
	if days > maxDays || days < -maxDays {
		return 0, false
	}
	return int(days), true
}

const (
	// maxDays bounds parsed shelf lives to something a calendar can represent.
	maxDays = 1_000_000

	// maxDayDigits is the longest integer part ParseDays will evaluate.
	maxDayDigits = 7
)

// ParseDate parses a candidate expiration date in one of dateLayouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CalendarDays returns the signed number of calendar days from `from` to `to`.
// Only the date part of each value (in its own location) counts, so a DST
// shift or time of day never changes the result.
func CalendarDays(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / (24 * time.Hour))
}

// DateOnly truncates t to midnight of its calendar date in its location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NormalizeHeader folds a column header for matching: trimmed, lower-case,
// accents removed, underscores treated as spaces and runs of whitespace
// collapsed. "Vida útil  Máxima" and "vida_util_maxima" both become
// "vida util maxima".
func NormalizeHeader(s string) string {
	s = strings.ReplaceAll(CleanCell(s), "_", " ")

	folded, _, err := transform.String(accentFolder(), s)
	if err == nil {
		s = folded
	}
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// accentFolder strips combining marks after canonical decomposition.
// A transformer carries state, so each call gets a fresh chain.
func accentFolder() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}
