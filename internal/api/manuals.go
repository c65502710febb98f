package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/morbeth/home-assistant-pdf-manuals/internal/manual"
)

// handleListManuals returns all stored manuals, newest first.
func (s *Server) handleListManuals(w http.ResponseWriter, _ *http.Request) {
	manuals, err := s.manuals.List()
	if err != nil {
		s.logger.Error("failed to list manuals", "error", err)
		writeInternalError(w, "failed to list manuals")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"manuals": manuals, "count": len(manuals)})
}

// handleUploadManual stores an uploaded PDF. Expects a multipart form with
// the document in the "file" field.
func (s *Server) handleUploadManual(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(s.manualsCfg.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge,
				fmt.Sprintf("upload exceeds %d MB", s.manualsCfg.MaxUploadMB))
			return
		}
		writeBadRequest(w, "multipart form with a 'file' field is required")
		return
	}
	defer file.Close() //nolint:errcheck

	m, err := s.manuals.Save(header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, manual.ErrDuplicate):
			writeConflict(w, "a manual with this filename already exists")
		case errors.Is(err, manual.ErrInvalidFilename), errors.Is(err, manual.ErrNotPDF):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		default:
			s.logger.Error("failed to store manual", "filename", header.Filename, "error", err)
			writeInternalError(w, "failed to store manual")
		}
		return
	}

	writeJSON(w, http.StatusCreated, m)
}

// handleGetManual serves a manual file inline.
func (s *Server) handleGetManual(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	f, info, err := s.manuals.Open(name)
	if err != nil {
		switch {
		case errors.Is(err, manual.ErrNotFound):
			writeNotFound(w, "manual not found")
		case errors.Is(err, manual.ErrInvalidFilename):
			writeBadRequest(w, err.Error())
		default:
			s.logger.Error("failed to open manual", "name", name, "error", err)
			writeInternalError(w, "failed to open manual")
		}
		return
	}
	defer f.Close() //nolint:errcheck

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.Header().Set("Content-Disposition", `inline; filename="`+info.Name()+`"`)
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// handleDeleteManual removes a manual file and clears its references.
func (s *Server) handleDeleteManual(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	unlinked, err := s.manuals.Delete(r.Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, manual.ErrNotFound):
			writeNotFound(w, "manual not found")
		case errors.Is(err, manual.ErrInvalidFilename):
			writeBadRequest(w, err.Error())
		default:
			s.logger.Error("failed to delete manual", "name", name, "error", err)
			writeInternalError(w, "failed to delete manual")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"devices_unlinked": unlinked})
}
