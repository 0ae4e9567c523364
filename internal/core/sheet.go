package core

// sheet.go reads an uploaded workbook into a RawTable.
//
// Excel workbooks (.xlsx, .xlsm, .xltx) are read with excelize from the
// first sheet. CSV exports are decoded after stripping a UTF-8 BOM and
// replacing invalid UTF-8; the delimiter is sniffed from the header line
// because European spreadsheet exports use ';'.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// MaxHeaderSearchRows bounds how far down the sheet the header row is looked for.
const MaxHeaderSearchRows = 20

// RawTable is a sheet as read from the upload, before any normalization.
type RawTable struct {
	Header     []string
	HeaderLine int // 1-indexed line of the header row
	Rows       [][]string

	// lines holds the source line of each row when the reader skips blank
	// lines (CSV). Nil means rows are contiguous after the header.
	lines []int
}

// Line returns the 1-indexed spreadsheet line of data row i.
func (t *RawTable) Line(i int) int {
	if i < len(t.lines) {
		return t.lines[i]
	}
	return t.HeaderLine + 1 + i
}

type sheetFormat int

const (
	formatUnknown sheetFormat = iota
	formatExcel
	formatCSV
)

var zipMagic = []byte("PK\x03\x04")

// detectFormat picks a reader from the file name, falling back to content
// sniffing when there is no extension.
func detectFormat(name string, data []byte) sheetFormat {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return formatExcel
	case ".csv", ".txt":
		return formatCSV
	case "":
		if bytes.HasPrefix(data, zipMagic) {
			return formatExcel
		}
		return formatCSV
	default:
		return formatUnknown
	}
}

// ReadSheet reads at most maxBytes from r and parses it according to name.
// A non-positive maxBytes disables the limit.
func ReadSheet(name string, r io.Reader, maxBytes int64) (*RawTable, error) {
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ImportError{Kind: ImportUnreadable, Err: err}
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, &ImportError{Kind: ImportTooLarge, Err: fmt.Errorf("limit is %d bytes", maxBytes)}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ImportError{Kind: ImportEmpty}
	}

	var (
		records [][]string
		lines   []int
	)
	switch detectFormat(name, data) {
	case formatExcel:
		records, err = readExcel(data)
	case formatCSV:
		records, lines, err = readCSV(data)
	default:
		return nil, &ImportError{
			Kind: ImportUnsupportedFormat,
			Err:  fmt.Errorf("%q: use .xlsx or .csv", filepath.Ext(name)),
		}
	}
	if err != nil {
		return nil, err
	}

	return splitHeader(records, lines)
}

func readExcel(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ImportError{Kind: ImportUnreadable, Err: err}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ImportError{Kind: ImportEmpty, Err: errors.New("workbook has no sheets")}
	}

	// Raw values keep numbers free of display formatting such as "1,000".
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &ImportError{Kind: ImportUnreadable, Err: fmt.Errorf("sheet %q: %w", sheets[0], err)}
	}
	return rows, nil
}

// readCSV returns the records and the source line each one started on.
func readCSV(data []byte) ([][]string, []int, error) {
	data = bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))
	data = sanitizeUTF8(data)

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var (
		records [][]string
		lines   []int
	)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, &ImportError{Kind: ImportUnreadable, Err: fmt.Errorf("invalid csv: %w", err)}
		}
		line, _ := r.FieldPos(0)
		records = append(records, rec)
		lines = append(lines, line)
	}
	return records, lines, nil
}

// sniffDelimiter chooses between ',', ';' and tab by counting them on the
// first non-blank line.
func sniffDelimiter(data []byte) rune {
	var line []byte
	for len(data) > 0 {
		line, data, _ = bytes.Cut(data, []byte{'\n'})
		if len(bytes.TrimSpace(line)) > 0 {
			break
		}
	}

	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// sanitizeUTF8 replaces invalid byte sequences with U+FFFD.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}
	return bytes.ToValidUTF8(data, []byte("\uFFFD"))
}

// splitHeader takes the first non-empty row among the first
// MaxHeaderSearchRows as the header.
// lines may be nil, meaning record i sits on line i+1.
func splitHeader(records [][]string, lines []int) (*RawTable, error) {
	limit := len(records)
	if limit > MaxHeaderSearchRows {
		limit = MaxHeaderSearchRows
	}

	for i := 0; i < limit; i++ {
		if isEmptyRow(records[i]) {
			continue
		}
		header := make([]string, len(records[i]))
		for j, h := range records[i] {
			header[j] = strings.TrimSpace(h)
		}
		t := &RawTable{
			Header:     header,
			HeaderLine: i + 1,
			Rows:       records[i+1:],
		}
		if lines != nil {
			t.HeaderLine = lines[i]
			t.lines = lines[i+1:]
		}
		return t, nil
	}

	return nil, &ImportError{Kind: ImportEmpty, Err: errors.New("no header row found")}
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
