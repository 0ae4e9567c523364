package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"
)

// DefaultMaxUploadSize caps uploads when no limit is configured.
const DefaultMaxUploadSize int64 = 10 << 20

// Service holds the reference table for the running process and is the
// only place it changes: Init loads it, Import replaces it and Clear drops it.
type Service struct {
	store     Store
	importer  Importer
	clock     func() time.Time
	maxUpload int64
	log       *slog.Logger

	// writeMu serializes Import and Clear so the store and the in-memory
	// table always agree.
	writeMu sync.Mutex

	mu    sync.RWMutex
	table *ReferenceTable
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the source of "today" for verification and import times.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.clock = now }
}

// WithMaxUploadSize sets the upload limit in bytes. Zero or less disables it.
func WithMaxUploadSize(n int64) Option {
	return func(s *Service) { s.maxUpload = n }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithColumns overrides the accepted spreadsheet columns.
func WithColumns(specs []ColumnSpec) Option {
	return func(s *Service) { s.importer.Columns = specs }
}

// NewService creates a Service backed by store. Call Init before use.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		clock:     time.Now,
		maxUpload: DefaultMaxUploadSize,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.importer.Now = s.clock
	return s
}

// Init loads the stored table. An unreadable store is logged and treated
// as empty; it never prevents startup.
func (s *Service) Init(ctx context.Context) {
	table, err := s.store.Load(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "stored reference unreadable, starting empty", "error", err)
		table = nil
	}

	s.mu.Lock()
	s.table = table
	s.mu.Unlock()
	referenceRows.Set(float64(table.Len()))

	if table != nil {
		s.log.InfoContext(ctx, "reference loaded",
			"id", table.ID,
			"source", table.SourceName,
			"rows", table.Len(),
		)
	}
}

// Import reads an uploaded spreadsheet and installs it as the reference
// table. The table is persisted before it becomes visible; on any error
// the previous table stays in place.
func (s *Service) Import(ctx context.Context, fileName string, r io.Reader) (*ImportResult, error) {
	res, err := s.importFile(ctx, fileName, r)
	observeImport(err)
	if err != nil {
		s.log.WarnContext(ctx, "import failed", "file", fileName, "error", err)
		return nil, err
	}

	s.log.InfoContext(ctx, "reference imported",
		"file", fileName,
		"id", res.Table.ID,
		"rows", res.Imported,
		"skipped", len(res.Skipped),
		"duplicates", res.Duplicates,
	)
	return res, nil
}

func (s *Service) importFile(ctx context.Context, fileName string, r io.Reader) (*ImportResult, error) {
	raw, err := ReadSheet(fileName, r, s.maxUpload)
	if err != nil {
		return nil, err
	}

	res, err := s.importer.Import(raw, filepath.Base(fileName))
	if err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.store.Save(ctx, res.Table); err != nil {
		return nil, asStorageError("save", err)
	}

	s.mu.Lock()
	s.table = res.Table
	s.mu.Unlock()
	referenceRows.Set(float64(res.Table.Len()))

	return res, nil
}

// Verify checks code against the current table using today's date.
func (s *Service) Verify(ctx context.Context, code string, candidate time.Time) (VerificationResult, error) {
	s.mu.RLock()
	table := s.table
	s.mu.RUnlock()

	res, err := Verify(table, code, candidate, s.clock())
	observeVerify(res, err)
	if err != nil {
		s.log.DebugContext(ctx, "verification rejected", "material", code, "error", err)
	}
	return res, err
}

// VerifyInput is Verify for form input, where the date is still text.
func (s *Service) VerifyInput(ctx context.Context, code, date string) (VerificationResult, error) {
	if NormalizeCode(code) == "" {
		return s.Verify(ctx, code, time.Time{})
	}

	candidate, ok := ParseDate(date)
	if !ok {
		err := &VerificationError{Kind: VerifyInvalidDate, Input: date}
		observeVerify(VerificationResult{}, err)
		return VerificationResult{}, err
	}
	return s.Verify(ctx, code, candidate)
}

// Clear removes the stored table and then the in-memory one. If the store
// fails nothing changes.
func (s *Service) Clear(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		err = asStorageError("clear", err)
		s.log.ErrorContext(ctx, "clear failed", "error", err)
		return err
	}

	s.mu.Lock()
	s.table = nil
	s.mu.Unlock()
	referenceRows.Set(0)

	s.log.InfoContext(ctx, "reference cleared")
	return nil
}

// Status describes the loaded table.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.table == nil {
		return Status{}
	}
	return Status{
		Loaded:     true,
		ID:         s.table.ID,
		SourceName: s.table.SourceName,
		ImportedAt: s.table.ImportedAt,
		Rows:       s.table.Len(),
	}
}

// Rows returns the loaded rows sorted by material code.
func (s *Service) Rows() []ReferenceRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.Sorted()
}

// Today is the service clock's current calendar date.
func (s *Service) Today() time.Time {
	return DateOnly(s.clock())
}

// MaxUploadSize is the upload limit in bytes, or zero or less for none.
func (s *Service) MaxUploadSize() int64 {
	return s.maxUpload
}

func asStorageError(op string, err error) error {
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
