package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/ShelfLife/internal/core"
)

func sampleTable() *core.ReferenceTable {
	table := core.NewReferenceTable(
		"0b7f5a3e-9a43-4a43-8c1c-2f6f0d1c9b11",
		"reference.xlsx",
		time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
	)
	table.Rows["m100"] = core.ReferenceRow{MaterialCode: "m100", MinShelfLifeDays: 30, MaxShelfLifeDays: 90, Description: "Widget", Client: "Acme"}
	table.Rows["m200"] = core.ReferenceRow{MaterialCode: "m200", MinShelfLifeDays: 0, MaxShelfLifeDays: 10}
	return table
}

func assertSameTable(t *testing.T, got, want *core.ReferenceTable) {
	t.Helper()
	if got == nil {
		t.Fatal("table is nil")
	}
	if got.ID != want.ID || got.SourceName != want.SourceName || !got.ImportedAt.Equal(want.ImportedAt) {
		t.Errorf("metadata = (%q, %q, %v), want (%q, %q, %v)",
			got.ID, got.SourceName, got.ImportedAt, want.ID, want.SourceName, want.ImportedAt)
	}
	if !reflect.DeepEqual(got.Rows, want.Rows) {
		t.Errorf("rows = %+v, want %+v", got.Rows, want.Rows)
	}
}

func TestFileStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(filepath.Join(t.TempDir(), "nested", "reference.json"))

	want := sampleTable()
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	assertSameTable(t, got, want)
}

func TestFileStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewFileStore(filepath.Join(dir, "reference.json"))

	if err := s.Save(ctx, sampleTable()); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}

	second := core.NewReferenceTable("second", "other.csv", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	second.Rows["x1"] = core.ReferenceRow{MaterialCode: "x1", MinShelfLifeDays: 1, MaxShelfLifeDays: 2}
	if err := s.Save(ctx, second); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	assertSameTable(t, got, second)

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the snapshot (temp files left behind?)", len(entries))
	}
}

func TestFileStore_LoadMissing(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "reference.json"))

	got, err := s.Load(context.Background())
	if err != nil || got != nil {
		t.Errorf("Load() = %v, %v, want nil, nil", got, err)
	}
}

func TestFileStore_ClearThenLoad(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(filepath.Join(t.TempDir(), "reference.json"))

	if err := s.Save(ctx, sampleTable()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	for i := 1; i <= 2; i++ {
		if err := s.Clear(ctx); err != nil {
			t.Fatalf("Clear() #%d error = %v", i, err)
		}
		got, err := s.Load(ctx)
		if err != nil || got != nil {
			t.Errorf("Load() after Clear #%d = %v, %v, want nil, nil", i, got, err)
		}
	}
}

func TestFileStore_ClearWithoutSnapshot(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "never-written.json"))
	if err := s.Clear(context.Background()); err != nil {
		t.Errorf("Clear() error = %v", err)
	}
}

func TestFileStore_LoadUnreadable(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "truncated json", content: `{"version":1,"rows":[`},
		{name: "not json", content: "material,min,max"},
		{name: "unknown version", content: `{"version":99,"rows":[]}`},
		{name: "max below min", content: `{"version":1,"rows":[{"material_code":"m1","min_shelf_life_days":9,"max_shelf_life_days":1}]}`},
		{name: "empty code", content: `{"version":1,"rows":[{"material_code":" ","min_shelf_life_days":1,"max_shelf_life_days":2}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "reference.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}

			got, err := NewFileStore(path).Load(context.Background())
			if got != nil {
				t.Errorf("Load() returned a table from unreadable storage")
			}
			var se *core.StorageError
			if !errors.As(err, &se) || se.Op != "load" {
				t.Errorf("Load() error = %v, want load StorageError", err)
			}
		})
	}
}

func TestFileStore_LoadEmptySnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reference.json")
	if err := os.WriteFile(path, []byte(`{"version":1,"id":"x","rows":[]}`), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := NewFileStore(path).Load(context.Background())
	if err != nil || got != nil {
		t.Errorf("Load() = %v, %v, want nil, nil", got, err)
	}
}

func TestFileStore_SaveFailureKeepsPrevious(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "reference.json")
	s := NewFileStore(path)

	if err := s.Save(ctx, sampleTable()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	blocked := NewFileStore(filepath.Join(path, "child.json"))
	err := blocked.Save(ctx, sampleTable())
	var se *core.StorageError
	if !errors.As(err, &se) || se.Op != "save" {
		t.Fatalf("Save() under a file error = %v, want save StorageError", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	assertSameTable(t, got, sampleTable())
}

func TestFileStore_ServiceAcrossSessions(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reference.json")
	quiet := core.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	first := core.NewService(NewFileStore(path), quiet)
	first.Init(ctx)
	csv := "Material,vida util minima,vida util máxima,Textobrevedematerial,Cliente\nM100,30,90,Widget,Acme\n"
	if _, err := first.Import(ctx, "reference.csv", strings.NewReader(csv)); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	second := core.NewService(NewFileStore(path), quiet)
	second.Init(ctx)
	if st := second.Status(); !st.Loaded || st.Rows != 1 || st.SourceName != "reference.csv" {
		t.Fatalf("Status() after restart = %+v", st)
	}

	if err := second.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	third := core.NewService(NewFileStore(path), quiet)
	third.Init(ctx)
	if third.Status().Loaded {
		t.Error("table survived Clear")
	}
}
