// Package templates holds the templ components for the operator pages.
// Edit the .templ files and run `templ generate`; the _templ.go files are
// generated.
package templates

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/ShelfLife/internal/core"
)

const (
	displayDate     = "02/01/2006"
	displayDateTime = "02/01/2006 15:04"
)

// DashboardData is everything the main page can show.
type DashboardData struct {
	Status        core.Status
	Today         time.Time
	MaxUploadSize int64

	// Echo of the verify form.
	Material string
	Date     string

	Result *core.VerificationResult
	Import *core.ImportResult
	Error  *core.UserMessage
	Notice string
}

func statusLine(st core.Status) string {
	return fmt.Sprintf("%d materials, imported %s", st.Rows, st.ImportedAt.Local().Format(displayDateTime))
}

func importSummaryLine(res core.ImportResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d data rows read, %d materials imported", res.TotalRows, res.Imported)
	if res.Duplicates > 0 {
		fmt.Fprintf(&b, ", %d duplicate codes overwritten by later rows", res.Duplicates)
	}
	if n := len(res.Skipped); n > 0 {
		fmt.Fprintf(&b, ", %d rows skipped", n)
	}
	b.WriteString(".")
	return b.String()
}

func checkedLine(res core.VerificationResult) string {
	return fmt.Sprintf("Expiration %s, checked on %s.", res.Candidate.Format(displayDate), res.Today.Format(displayDate))
}

func uploadHint(maxSize int64) string {
	hint := "Required columns: Material, vida util minima, vida util máxima. Optional: Textobrevedematerial, Cliente."
	if maxSize > 0 {
		hint += " Maximum size " + formatBytes(maxSize) + "."
	}
	return hint
}

func formatBytes(n int64) string {
	const mb = 1 << 20
	if n >= mb && n%mb == 0 {
		return strconv.FormatInt(n/mb, 10) + " MB"
	}
	if n >= mb {
		return strings.TrimSuffix(strconv.FormatFloat(float64(n)/mb, 'f', 1, 64), ".0") + " MB"
	}
	return strconv.FormatInt(n, 10) + " bytes"
}

func orPlaceholder(s string) string {
	if s == "" {
		return core.Placeholder
	}
	return s
}
