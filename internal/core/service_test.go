package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// memStore is an in-memory Store with injectable failures.
type memStore struct {
	table    *ReferenceTable
	loadErr  error
	saveErr  error
	clearErr error
	saves    int
	clears   int
}

func (m *memStore) Save(_ context.Context, t *ReferenceTable) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.table = t
	return nil
}

func (m *memStore) Load(context.Context) (*ReferenceTable, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.table, nil
}

func (m *memStore) Clear(context.Context) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.clears++
	m.table = nil
	return nil
}

const referenceCSV = "Material;vida util minima;vida util máxima;Textobrevedematerial;Cliente\n" +
	"M100;30;90;Widget;Acme\n" +
	"M200;0;10;;\n" +
	"M300;x;10;;\n"

func newTestService(store Store) *Service {
	clock := func() time.Time { return time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local) }
	return NewService(store,
		WithClock(clock),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func TestService_InitLoadsStoredTable(t *testing.T) {
	store := &memStore{table: m100Table()}
	svc := newTestService(store)
	svc.Init(context.Background())

	st := svc.Status()
	if !st.Loaded || st.Rows != 2 || st.SourceName != "ref.xlsx" {
		t.Errorf("Status() = %+v, want the stored table", st)
	}
}

func TestService_InitDegradesOnLoadError(t *testing.T) {
	store := &memStore{loadErr: &StorageError{Op: "load", Err: errors.New("unexpected end of JSON input")}}
	svc := newTestService(store)
	svc.Init(context.Background())

	if svc.Status().Loaded {
		t.Error("Status().Loaded = true after a failed load")
	}
	if _, err := svc.Verify(context.Background(), "m100", date(2024, 2, 15)); !errors.Is(err, ErrNoData) {
		t.Errorf("Verify() error = %v, want ErrNoData", err)
	}
}

func TestService_ImportThenVerify(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	svc := newTestService(store)
	svc.Init(ctx)

	res, err := svc.Import(ctx, "uploads/reference.csv", strings.NewReader(referenceCSV))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if res.Imported != 2 || len(res.Skipped) != 1 {
		t.Errorf("Imported = %d, Skipped = %v", res.Imported, res.Skipped)
	}
	if store.saves != 1 || store.table != res.Table {
		t.Error("imported table was not persisted")
	}
	if st := svc.Status(); st.SourceName != "reference.csv" || st.Rows != 2 {
		t.Errorf("Status() = %+v", st)
	}

	pass, err := svc.Verify(ctx, "M100", date(2024, 2, 15))
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !pass.Pass || pass.RemainingDays != 45 {
		t.Errorf("Verify(2024-02-15) = %+v, want pass with 45 days", pass)
	}

	fail, err := svc.Verify(ctx, "m100", date(2024, 1, 10))
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if fail.Pass || fail.RemainingDays != 9 {
		t.Errorf("Verify(2024-01-10) = %+v, want fail with 9 days", fail)
	}
}

func TestService_ImportReplacesTable(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&memStore{table: m100Table()})
	svc.Init(ctx)

	csv := "Material,vida util minima,vida util máxima\nM900,1,2\n"
	if _, err := svc.Import(ctx, "new.csv", strings.NewReader(csv)); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if _, err := svc.Verify(ctx, "m100", date(2024, 2, 15)); !errors.Is(err, ErrNotFound) {
		t.Errorf("old row still visible: err = %v", err)
	}
	if got := svc.Rows(); len(got) != 1 || got[0].MaterialCode != "m900" {
		t.Errorf("Rows() = %+v, want only m900", got)
	}
}

func TestService_FailedImportKeepsTable(t *testing.T) {
	tests := []struct {
		name    string
		store   *memStore
		file    string
		input   string
		wantErr error
	}{
		{
			name:    "missing columns",
			store:   &memStore{table: m100Table()},
			file:    "bad.csv",
			input:   "Code,Days\nX,1\n",
			wantErr: ErrMissingColumns,
		},
		{
			name:    "unsupported format",
			store:   &memStore{table: m100Table()},
			file:    "bad.pdf",
			input:   "%PDF",
			wantErr: ErrUnsupportedFormat,
		},
		{
			name:  "save failure",
			store: &memStore{table: m100Table(), saveErr: errors.New("disk full")},
			file:  "good.csv",
			input: referenceCSV,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			svc := newTestService(tt.store)
			svc.Init(ctx)

			res, err := svc.Import(ctx, tt.file, strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("Import() succeeded, want error")
			}
			if res != nil {
				t.Error("Import() returned a result alongside an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.store.saveErr != nil {
				var se *StorageError
				if !errors.As(err, &se) || se.Op != "save" {
					t.Errorf("error = %v, want save StorageError", err)
				}
			}

			if st := svc.Status(); st.ID != "t1" || st.Rows != 2 {
				t.Errorf("Status() = %+v, want the previous table", st)
			}
		})
	}
}

func TestService_Clear(t *testing.T) {
	ctx := context.Background()
	store := &memStore{table: m100Table()}
	svc := newTestService(store)
	svc.Init(ctx)

	if err := svc.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if err := svc.Clear(ctx); err != nil {
		t.Fatalf("second Clear() error = %v", err)
	}

	if store.table != nil || store.clears != 2 {
		t.Errorf("store not cleared: table = %v, clears = %d", store.table, store.clears)
	}
	if svc.Status().Loaded {
		t.Error("Status().Loaded = true after Clear")
	}
	if _, err := svc.Verify(ctx, "m100", date(2024, 2, 15)); !errors.Is(err, ErrNoData) {
		t.Errorf("Verify() error = %v, want ErrNoData", err)
	}
}

func TestService_ClearFailureKeepsTable(t *testing.T) {
	ctx := context.Background()
	store := &memStore{table: m100Table(), clearErr: errors.New("permission denied")}
	svc := newTestService(store)
	svc.Init(ctx)

	err := svc.Clear(ctx)
	var se *StorageError
	if !errors.As(err, &se) || se.Op != "clear" {
		t.Fatalf("Clear() error = %v, want clear StorageError", err)
	}
	if !svc.Status().Loaded {
		t.Error("table dropped although the store still holds it")
	}
}

func TestService_VerifyInput(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&memStore{table: m100Table()})
	svc.Init(ctx)

	tests := []struct {
		name     string
		code     string
		date     string
		wantErr  error
		wantPass bool
	}{
		{name: "day first", code: "m100", date: "15/02/2024", wantPass: true},
		{name: "iso", code: "m100", date: "2024-01-10", wantPass: false},
		{name: "bad date", code: "m100", date: "31/02/2024", wantErr: ErrInvalidDate},
		{name: "empty date", code: "m100", date: "", wantErr: ErrInvalidDate},
		{name: "empty code wins over bad date", code: " ", date: "nope", wantErr: ErrEmptyInput},
		{name: "unknown code", code: "zzz", date: "2024-02-15", wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.VerifyInput(ctx, tt.code, tt.date)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("VerifyInput() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("VerifyInput() error = %v", err)
			}
			if res.Pass != tt.wantPass {
				t.Errorf("Pass = %v, want %v", res.Pass, tt.wantPass)
			}
		})
	}
}

func TestService_Today(t *testing.T) {
	svc := newTestService(&memStore{})
	if got := svc.Today(); !got.Equal(date(2024, 1, 1)) {
		t.Errorf("Today() = %v, want 2024-01-01", got)
	}
}
