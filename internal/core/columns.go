package core

// columns.go maps spreadsheet headers onto reference fields.
//
// Every header lookup goes through NormalizeHeader, so matching ignores
// case, accents, surrounding whitespace and underscores for all columns,
// required or optional alike.

// Field identifies a reference column.
type Field int

const (
	FieldMaterial Field = iota
	FieldMinDays
	FieldMaxDays
	FieldDescription
	FieldClient
)

// ColumnSpec declares which headers feed a Field.
type ColumnSpec struct {
	Field    Field
	Name     string   // Canonical header shown to operators
	Aliases  []string // Other accepted headers
	Required bool
}

// DefaultColumns are the headers of the operators' shelf-life workbook
// plus English equivalents.
var DefaultColumns = []ColumnSpec{
	{
		Field:    FieldMaterial,
		Name:     "Material",
		Aliases:  []string{"Material code", "Codigo", "Codigo material", "Code"},
		Required: true,
	},
	{
		Field:    FieldMinDays,
		Name:     "vida util minima",
		Aliases:  []string{"Min shelf life days", "Min shelf life", "Minimum", "Min days"},
		Required: true,
	},
	{
		Field:    FieldMaxDays,
		Name:     "vida util máxima",
		Aliases:  []string{"Max shelf life days", "Max shelf life", "Maximum", "Max days"},
		Required: true,
	},
	{
		Field:   FieldDescription,
		Name:    "Textobrevedematerial",
		Aliases: []string{"Texto breve de material", "Description", "Descripcion"},
	},
	{
		Field:   FieldClient,
		Name:    "Cliente",
		Aliases: []string{"Client", "Customer"},
	},
}

// HeaderIndex maps normalized header names to their position in a row.
type HeaderIndex map[string]int

// MakeHeaderIndex indexes a header row. When two columns normalize to the
// same name the leftmost one wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := NormalizeHeader(h)
		if key == "" {
			continue
		}
		if _, exists := idx[key]; !exists {
			idx[key] = i
		}
	}
	return idx
}

// columnMap is the resolved position of each field found in the header.
type columnMap map[Field]int

// resolveColumns locates every spec in idx. It returns the canonical names
// of required specs that matched nothing.
func resolveColumns(idx HeaderIndex, specs []ColumnSpec) (columnMap, []string) {
	cols := make(columnMap, len(specs))
	var missing []string

	for _, spec := range specs {
		pos, ok := idx.find(spec)
		if ok {
			cols[spec.Field] = pos
			continue
		}
		if spec.Required {
			missing = append(missing, spec.Name)
		}
	}
	return cols, missing
}

func (idx HeaderIndex) find(spec ColumnSpec) (int, bool) {
	if pos, ok := idx[NormalizeHeader(spec.Name)]; ok {
		return pos, true
	}
	for _, alias := range spec.Aliases {
		if pos, ok := idx[NormalizeHeader(alias)]; ok {
			return pos, true
		}
	}
	return 0, false
}

// cell returns the cleaned value of field in row, or "" when the column is
// absent or the row is short.
func (c columnMap) cell(row []string, f Field) string {
	pos, ok := c[f]
	if !ok || pos >= len(row) {
		return ""
	}
	return CleanCell(row[pos])
}
