package core

import "time"

// Verify checks whether a batch of code expiring on candidate is inside the
// material's shelf-life window as of today. Both bounds are inclusive.
//
// Verify has no side effects; the same arguments always give the same result.
func Verify(table *ReferenceTable, code string, candidate, today time.Time) (VerificationResult, error) {
	key := NormalizeCode(code)
	if key == "" {
		return VerificationResult{}, &VerificationError{Kind: VerifyEmptyInput}
	}
	if table.Len() == 0 {
		return VerificationResult{}, &VerificationError{Kind: VerifyNoData, Input: key}
	}

	row, ok := table.Lookup(key)
	if !ok {
		return VerificationResult{}, &VerificationError{Kind: VerifyNotFound, Input: key}
	}

	remaining := CalendarDays(today, candidate)

	return VerificationResult{
		MaterialCode:     row.MaterialCode,
		Description:      orPlaceholder(row.Description),
		Client:           orPlaceholder(row.Client),
		RemainingDays:    remaining,
		MinShelfLifeDays: row.MinShelfLifeDays,
		MaxShelfLifeDays: row.MaxShelfLifeDays,
		Pass:             remaining >= row.MinShelfLifeDays && remaining <= row.MaxShelfLifeDays,
		Today:            DateOnly(today),
		Candidate:        DateOnly(candidate),
	}, nil
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}
