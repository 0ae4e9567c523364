package core

import (
	"context"
	"sort"
	"time"
)

// Placeholder is rendered for optional reference fields that were absent.
const Placeholder = "N/A"

// ReferenceRow is the shelf-life rule for one material.
// MinShelfLifeDays <= MaxShelfLifeDays always holds for imported rows.
type ReferenceRow struct {
	MaterialCode     string `json:"material_code"`
	MinShelfLifeDays int    `json:"min_shelf_life_days"`
	MaxShelfLifeDays int    `json:"max_shelf_life_days"`
	Description      string `json:"description,omitempty"`
	Client           string `json:"client,omitempty"`
}

// ReferenceTable is the full set of rules from one import, keyed by
// normalized material code. Tables are never merged; each import replaces
// the previous table wholesale.
type ReferenceTable struct {
	ID         string
	SourceName string
	ImportedAt time.Time
	Rows       map[string]ReferenceRow
}

// NewReferenceTable returns an empty table with metadata set.
func NewReferenceTable(id, source string, importedAt time.Time) *ReferenceTable {
	return &ReferenceTable{
		ID:         id,
		SourceName: source,
		ImportedAt: importedAt,
		Rows:       make(map[string]ReferenceRow),
	}
}

// Len returns the number of materials. A nil table has none.
func (t *ReferenceTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Lookup finds the row for code after normalizing it.
func (t *ReferenceTable) Lookup(code string) (ReferenceRow, bool) {
	if t == nil {
		return ReferenceRow{}, false
	}
	row, ok := t.Rows[NormalizeCode(code)]
	return row, ok
}

// Sorted returns the rows ordered by material code.
func (t *ReferenceTable) Sorted() []ReferenceRow {
	if t == nil {
		return nil
	}
	rows := make([]ReferenceRow, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].MaterialCode < rows[j].MaterialCode
	})
	return rows
}

// VerificationResult is the verdict for one material and candidate date.
// It is never persisted.
type VerificationResult struct {
	MaterialCode     string    `json:"material_code"`
	Description      string    `json:"description"`
	Client           string    `json:"client"`
	RemainingDays    int       `json:"remaining_days"`
	MinShelfLifeDays int       `json:"min_shelf_life_days"`
	MaxShelfLifeDays int       `json:"max_shelf_life_days"`
	Pass             bool      `json:"pass"`
	Today            time.Time `json:"today"`
	Candidate        time.Time `json:"candidate_date"`
}

// SkippedRow records a data row the importer dropped.
// Line is the 1-indexed row number in the spreadsheet.
type SkippedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ImportResult summarizes a successful import.
type ImportResult struct {
	Table      *ReferenceTable `json:"-"`
	TotalRows  int             `json:"total_rows"`
	Imported   int             `json:"imported"`
	Duplicates int             `json:"duplicates"`
	Skipped    []SkippedRow    `json:"skipped,omitempty"`
}

// Status describes the table currently held by the service.
type Status struct {
	Loaded     bool      `json:"loaded"`
	ID         string    `json:"id,omitempty"`
	SourceName string    `json:"source,omitempty"`
	ImportedAt time.Time `json:"imported_at,omitempty"`
	Rows       int       `json:"rows"`
}

// Store persists the single reference table between sessions.
//
// Save must replace the stored table atomically. Load returns (nil, nil)
// when nothing is stored. Clear must succeed when nothing is stored.
type Store interface {
	Save(ctx context.Context, table *ReferenceTable) error
	Load(ctx context.Context) (*ReferenceTable, error)
	Clear(ctx context.Context) error
}
