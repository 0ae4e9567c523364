package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Importer turns a RawTable into a ReferenceTable.
// The zero value is usable and applies DefaultColumns.
type Importer struct {
	Columns []ColumnSpec     // nil means DefaultColumns
	Now     func() time.Time // nil means time.Now
	NewID   func() string    // nil means uuid.NewString
}

// Import uses DefaultColumns and the wall clock.
func Import(raw *RawTable, source string) (*ImportResult, error) {
	var im Importer
	return im.Import(raw, source)
}

// Import validates and normalizes raw. Rows without a material code or
// without a numeric minimum or maximum are skipped, as are rows whose
// maximum is below the minimum. When a code appears more than once the
// last row wins.
//
// On error no table is returned.
func (im *Importer) Import(raw *RawTable, source string) (*ImportResult, error) {
	if raw == nil || len(raw.Header) == 0 {
		return nil, &ImportError{Kind: ImportEmpty}
	}

	specs := im.Columns
	if specs == nil {
		specs = DefaultColumns
	}

	cols, missing := resolveColumns(MakeHeaderIndex(raw.Header), specs)
	if len(missing) > 0 {
		return nil, &ImportError{Kind: ImportMissingColumns, Columns: missing}
	}

	table := NewReferenceTable(im.newID(), source, im.now())
	result := &ImportResult{Table: table}

	for i, cells := range raw.Rows {
		if isEmptyRow(cells) {
			continue
		}
		result.TotalRows++

		row, reason := cols.referenceRow(cells)
		if reason != "" {
			result.Skipped = append(result.Skipped, SkippedRow{Line: raw.Line(i), Reason: reason})
			continue
		}

		if _, dup := table.Rows[row.MaterialCode]; dup {
			result.Duplicates++
		}
		table.Rows[row.MaterialCode] = row
	}

	if table.Len() == 0 {
		return nil, &ImportError{
			Kind: ImportNoValidRows,
			Err:  fmt.Errorf("%d data rows, %d skipped", result.TotalRows, len(result.Skipped)),
		}
	}

	result.Imported = table.Len()
	return result, nil
}

// referenceRow builds one row. A non-empty reason means the row is dropped.
func (c columnMap) referenceRow(cells []string) (ReferenceRow, string) {
	code := NormalizeCode(c.cell(cells, FieldMaterial))
	if code == "" {
		return ReferenceRow{}, "missing material code"
	}

	minDays, reason := c.days(cells, FieldMinDays, "minimum")
	if reason != "" {
		return ReferenceRow{}, reason
	}
	maxDays, reason := c.days(cells, FieldMaxDays, "maximum")
	if reason != "" {
		return ReferenceRow{}, reason
	}
	if maxDays < minDays {
		return ReferenceRow{}, fmt.Sprintf("maximum shelf life (%d) is below minimum (%d)", maxDays, minDays)
	}

	return ReferenceRow{
		MaterialCode:     code,
		MinShelfLifeDays: minDays,
		MaxShelfLifeDays: maxDays,
		Description:      c.cell(cells, FieldDescription),
		Client:           c.cell(cells, FieldClient),
	}, ""
}

func (c columnMap) days(cells []string, f Field, label string) (int, string) {
	v := c.cell(cells, f)
	if v == "" {
		return 0, "missing " + label + " shelf life"
	}
	n, ok := ParseDays(v)
	if !ok {
		return 0, fmt.Sprintf("%s shelf life %q is not a number", label, v)
	}
	return n, ""
}

func (im *Importer) now() time.Time {
	if im.Now != nil {
		return im.Now()
	}
	return time.Now()
}

func (im *Importer) newID() string {
	if im.NewID != nil {
		return im.NewID()
	}
	return uuid.NewString()
}
