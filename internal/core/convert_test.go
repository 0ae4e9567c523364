package core

import (
	"testing"
	"time"
)

// ----------------------------------------------------------------------------
// ParseDays Tests
// ----------------------------------------------------------------------------

func TestParseDays(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   int
		wantOK bool
	}{
		{name: "integer", input: "30", want: 30, wantOK: true},
		{name: "zero", input: "0", want: 0, wantOK: true},
		{name: "surrounding whitespace", input: "  45 ", want: 45, wantOK: true},
		{name: "decimal export of integer", input: "30.0", want: 30, wantOK: true},
		{name: "fraction truncates", input: "30.9", want: 30, wantOK: true},
		{name: "negative fraction truncates toward zero", input: "-5.5", want: -5, wantOK: true},
		{name: "scientific notation", input: "3e1", want: 30, wantOK: true},
		{name: "excel formula wrapper", input: `="90"`, want: 90, wantOK: true},

		{name: "empty", input: "", wantOK: false},
		{name: "whitespace only", input: "   ", wantOK: false},
		{name: "text", input: "abc", wantOK: false},
		{name: "thousands separator", input: "1,000", wantOK: false},
		{name: "unit suffix", input: "30 days", wantOK: false},
		{name: "out of range", input: "1e9", wantOK: false},
		{name: "just past limit", input: "1000001", wantOK: false},
		{name: "beyond int64", input: "18446744073709551646", wantOK: false},
		{name: "negative beyond int64", input: "-18446744073709551646", wantOK: false},
		{name: "huge exponent", input: "1e2000000000", wantOK: false},
		{name: "huge negative exponent", input: "1e-2000000000", want: 0, wantOK: true},
		{name: "zero with huge exponent", input: "0e2000000000", want: 0, wantOK: true},
		{name: "limit", input: "1e6", want: 1_000_000, wantOK: true},
		{name: "small fraction", input: "0.25", want: 0, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDays(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseDays(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseDays(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ParseDate Tests
// ----------------------------------------------------------------------------

func TestParseDate(t *testing.T) {
	tests := []struct {
		input  string
		want   string // YYYY-MM-DD
		wantOK bool
	}{
		{input: "2024-02-15", want: "2024-02-15", wantOK: true},
		{input: "15/02/2024", want: "2024-02-15", wantOK: true},
		{input: "5/2/2024", want: "2024-02-05", wantOK: true},
		{input: "15-02-2024", want: "2024-02-15", wantOK: true},
		{input: "15.02.2024", want: "2024-02-15", wantOK: true},
		{input: "2024/02/15", want: "2024-02-15", wantOK: true},
		{input: " 2024-02-15 ", want: "2024-02-15", wantOK: true},

		{input: "", wantOK: false},
		{input: "02/30/2024", wantOK: false},
		{input: "2024-13-01", wantOK: false},
		{input: "tomorrow", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got.Format("2006-01-02") != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.input, got.Format("2006-01-02"), tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// CalendarDays Tests
// ----------------------------------------------------------------------------

func TestCalendarDays(t *testing.T) {
	plus2 := time.FixedZone("UTC+2", 2*60*60)
	minus5 := time.FixedZone("UTC-5", -5*60*60)

	tests := []struct {
		name     string
		from, to time.Time
		want     int
	}{
		{
			name: "same day",
			from: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC),
			want: 0,
		},
		{
			name: "forty five days",
			from: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
			want: 45,
		},
		{
			name: "late today, early tomorrow",
			from: time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC),
			to:   time.Date(2024, 1, 2, 0, 1, 0, 0, time.UTC),
			want: 1,
		},
		{
			name: "past date is negative",
			from: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2023, 12, 25, 0, 0, 0, 0, time.UTC),
			want: -7,
		},
		{
			name: "across leap day",
			from: time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			want: 2,
		},
		{
			name: "dates in different offsets use their own calendar day",
			from: time.Date(2024, 1, 1, 23, 30, 0, 0, plus2),
			to:   time.Date(2024, 1, 2, 0, 30, 0, 0, minus5),
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalendarDays(tt.from, tt.to); got != tt.want {
				t.Errorf("CalendarDays() = %d, want %d", got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Cell and Header Normalization Tests
// ----------------------------------------------------------------------------

func TestCleanCell(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "  M100  ", want: "M100"},
		{input: `="00123"`, want: "00123"},
		{input: "=42", want: "42"},
		{input: `"quoted"`, want: "quoted"},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CleanCell(tt.input); got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode("  M100-A \t"); got != "m100-a" {
		t.Errorf("NormalizeCode() = %q, want %q", got, "m100-a")
	}
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "Material", want: "material"},
		{input: "  Vida Útil  Máxima ", want: "vida util maxima"},
		{input: "vida util máxima", want: "vida util maxima"},
		{input: "VIDA_UTIL_MINIMA", want: "vida util minima"},
		{input: "Código", want: "codigo"},
		{input: "Textobrevedematerial", want: "textobrevedematerial"},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeHeader(tt.input); got != tt.want {
				t.Errorf("NormalizeHeader(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
