package web

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/JonMunkholm/ShelfLife/internal/core"
	"github.com/JonMunkholm/ShelfLife/internal/logging"
	"github.com/JonMunkholm/ShelfLife/internal/web/templates"
)

const (
	// multipartOverhead allows for form boundaries and headers on top of
	// the file itself.
	multipartOverhead = 64 << 10

	// multipartMemory is held in memory; larger parts spill to temp files.
	multipartMemory = 1 << 20
)

// renderDashboard renders the main page with the current service state
// filled in.
func (s *Server) renderDashboard(w http.ResponseWriter, r *http.Request, status int, data templates.DashboardData) {
	data.Status = s.service.Status()
	data.Today = s.service.Today()
	data.MaxUploadSize = s.service.MaxUploadSize()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.Dashboard(data).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render dashboard", "error", err)
	}
}

// handleDashboard renders the main dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.renderDashboard(w, r, http.StatusOK, templates.DashboardData{})
}

// handleReferencePage lists the loaded reference table.
func (s *Server) handleReferencePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Reference(s.service.Status(), s.service.Rows()).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render reference", "error", err)
	}
}

// handleUploadForm imports the spreadsheet posted from the dashboard.
func (s *Server) handleUploadForm(w http.ResponseWriter, r *http.Request) {
	res, name, err := s.importUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.renderDashboard(w, r, http.StatusOK, templates.DashboardData{
		Import: res,
		Notice: fmt.Sprintf("Loaded %d materials from %s.", res.Imported, name),
	})
}

// handleVerifyForm checks one material and date from the dashboard form.
// HTMX requests get only the result fragment.
func (s *Server) handleVerifyForm(w http.ResponseWriter, r *http.Request) {
	material := r.FormValue("material")
	date := r.FormValue("date")
	echo := templates.DashboardData{Material: material, Date: date}

	res, err := s.service.VerifyInput(r.Context(), material, date)
	if err != nil {
		s.respondErrorWith(w, r, err, echo)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = templates.VerifyResult(res).Render(r.Context(), w)
		return
	}

	echo.Result = &res
	s.renderDashboard(w, r, http.StatusOK, echo)
}

// handleClearForm deletes the stored and in-memory reference table.
func (s *Server) handleClearForm(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Clear(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.renderDashboard(w, r, http.StatusOK, templates.DashboardData{Notice: "Stored reference data deleted."})
}

// importUpload reads the "file" part of a multipart request and imports it.
// It returns the uploaded file name for display.
func (s *Server) importUpload(w http.ResponseWriter, r *http.Request) (*core.ImportResult, string, error) {
	file, name, err := s.formFile(w, r)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = file.Close() }()

	res, err := s.service.Import(r.Context(), name, file)
	return res, name, err
}

func (s *Server) formFile(w http.ResponseWriter, r *http.Request) (multipart.File, string, error) {
	if limit := s.service.MaxUploadSize(); limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBE *http.MaxBytesError
		if errors.As(err, &maxBE) {
			return nil, "", &core.ImportError{Kind: core.ImportTooLarge, Err: err}
		}
		return nil, "", fmt.Errorf("%w: %v", errBadRequest, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", err
	}
	logging.WithFields(r.Context(), "file", header.Filename, "size", header.Size).Debug("upload received")
	return file, header.Filename, nil
}
