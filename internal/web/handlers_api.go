package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/ShelfLife/internal/core"
)

// maxJSONBody bounds API request bodies other than uploads.
const maxJSONBody = 64 << 10

const isoDate = "2006-01-02"

type referenceResponse struct {
	Status core.Status         `json:"status"`
	Rows   []core.ReferenceRow `json:"rows"`
}

type importResponse struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	*core.ImportResult
}

type verifyRequest struct {
	Material string `json:"material"`
	Date     string `json:"date"`
}

type verifyResponse struct {
	MaterialCode     string `json:"material_code"`
	Description      string `json:"description"`
	Client           string `json:"client"`
	MinShelfLifeDays int    `json:"min_shelf_life_days"`
	MaxShelfLifeDays int    `json:"max_shelf_life_days"`
	RemainingDays    int    `json:"remaining_days"`
	Pass             bool   `json:"pass"`
	Today            string `json:"today"`
	CandidateDate    string `json:"candidate_date"`
}

func toVerifyResponse(res core.VerificationResult) verifyResponse {
	return verifyResponse{
		MaterialCode:     res.MaterialCode,
		Description:      res.Description,
		Client:           res.Client,
		MinShelfLifeDays: res.MinShelfLifeDays,
		MaxShelfLifeDays: res.MaxShelfLifeDays,
		RemainingDays:    res.RemainingDays,
		Pass:             res.Pass,
		Today:            res.Today.Format(isoDate),
		CandidateDate:    res.Candidate.Format(isoDate),
	}
}

// handleGetReference returns the loaded table.
func (s *Server) handleGetReference(w http.ResponseWriter, r *http.Request) {
	rows := s.service.Rows()
	if rows == nil {
		rows = []core.ReferenceRow{}
	}
	writeJSON(w, http.StatusOK, referenceResponse{Status: s.service.Status(), Rows: rows})
}

// handleDeleteReference clears stored and in-memory data.
func (s *Server) handleDeleteReference(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Clear(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

// handleImport imports a multipart "file" upload.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	res, _, err := s.importUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, importResponse{
		ID:           res.Table.ID,
		Source:       res.Table.SourceName,
		ImportResult: res,
	})
}

// handleVerify checks {"material", "date"} against the loaded table.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	res, err := s.service.VerifyInput(r.Context(), req.Material, req.Date)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toVerifyResponse(res))
}
