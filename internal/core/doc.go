// Package core holds the shelf-life reference logic: importing the
// operators' spreadsheet into a reference table and checking a material's
// candidate expiration date against it.
//
// The package has no knowledge of HTTP or of how tables are stored. The web
// layer talks to a [Service]; persistence is plugged in through [Store].
//
// # Import
//
// [ReadSheet] reads an .xlsx workbook or CSV export into a [RawTable].
// [Import] then resolves the columns listed in [DefaultColumns] and builds a
// [ReferenceTable] keyed by lower-cased, trimmed material code:
//
//  1. Headers match case- and accent-insensitively ([NormalizeHeader])
//  2. Rows without a code, or without a numeric minimum and maximum, are skipped
//  3. Rows whose maximum is below the minimum are skipped
//  4. When a code repeats the last row wins and the overwrite is counted
//
// Each skipped row is reported with its spreadsheet line in [ImportResult].
//
// # Verify
//
// [Verify] computes the calendar days from today to the candidate date and
// passes when that number lies within [min, max], both inclusive:
//
//	res, err := core.Verify(table, "M100", candidate, time.Now())
//	if errors.Is(err, core.ErrNotFound) {
//	    // unknown material
//	}
//
// # Error Handling
//
// Failures are typed: [ImportError], [VerificationError] and [StorageError].
// [MapError] turns any of them into a [UserMessage] with a support code.
package core
