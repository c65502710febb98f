package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/morbeth/home-assistant-pdf-manuals/internal/location"
)

// locationResponse is a location plus its current device count.
type locationResponse struct {
	location.Location
	DeviceCount int `json:"device_count"`
}

// handleListLocations returns all locations with per-location device counts.
func (s *Server) handleListLocations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	locations, err := s.locationRepo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list locations", "error", err)
		writeInternalError(w, "failed to list locations")
		return
	}

	out := make([]locationResponse, 0, len(locations))
	for _, loc := range locations {
		devices, err := s.deviceRepo.ListByLocation(ctx, loc.Name)
		if err != nil {
			s.logger.Error("failed to count devices", "location", loc.Name, "error", err)
			writeInternalError(w, "failed to list locations")
			return
		}
		out = append(out, locationResponse{Location: loc, DeviceCount: len(devices)})
	}

	writeJSON(w, http.StatusOK, map[string]any{"locations": out, "count": len(out)})
}

// handleGetLocation returns a single location by slug.
func (s *Server) handleGetLocation(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	ctx := r.Context()

	loc, err := s.locationRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, location.ErrNotFound) {
			writeNotFound(w, "location not found")
			return
		}
		s.logger.Error("failed to get location", "slug", slug, "error", err)
		writeInternalError(w, "failed to get location")
		return
	}

	devices, err := s.deviceRepo.ListByLocation(ctx, loc.Name)
	if err != nil {
		s.logger.Error("failed to count devices", "location", loc.Name, "error", err)
		writeInternalError(w, "failed to get location")
		return
	}

	writeJSON(w, http.StatusOK, locationResponse{Location: *loc, DeviceCount: len(devices)})
}

// handleCreateLocation creates a new location.
func (s *Server) handleCreateLocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if err := location.ValidateName(req.Name); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	loc := &location.Location{
		ID:   uuid.NewString(),
		Name: req.Name,
		Slug: location.Slugify(req.Name),
	}
	if err := s.locationRepo.Create(r.Context(), loc); err != nil {
		if errors.Is(err, location.ErrDuplicate) {
			writeConflict(w, "location already exists")
			return
		}
		s.logger.Error("failed to create location", "name", req.Name, "error", err)
		writeInternalError(w, "failed to create location")
		return
	}

	writeJSON(w, http.StatusCreated, loc)
}

// handleUpdateLocation renames a location. With cascade=true (the default),
// devices referencing the old name move to the new one.
func (s *Server) handleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	ctx := r.Context()

	loc, err := s.locationRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, location.ErrNotFound) {
			writeNotFound(w, "location not found")
			return
		}
		s.logger.Error("failed to get location", "slug", slug, "error", err)
		writeInternalError(w, "failed to update location")
		return
	}

	var req struct {
		Name    string `json:"name"`
		Cascade *bool  `json:"cascade"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if err := location.ValidateName(req.Name); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	oldName := loc.Name
	loc.Name = req.Name
	loc.Slug = location.Slugify(req.Name)
	if err := s.locationRepo.Update(ctx, loc); err != nil {
		if errors.Is(err, location.ErrDuplicate) {
			writeConflict(w, "location name already in use")
			return
		}
		s.logger.Error("failed to update location", "slug", slug, "error", err)
		writeInternalError(w, "failed to update location")
		return
	}

	moved := 0
	if req.Cascade == nil || *req.Cascade {
		moved, err = s.deviceRepo.RenameLocation(ctx, oldName, loc.Name)
		if err != nil {
			s.logger.Error("failed to cascade rename", "old", oldName, "new", loc.Name, "error", err)
			writeInternalError(w, "failed to update location")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"location":      loc,
		"devices_moved": moved,
	})
}

// handleDeleteLocation removes a location. Rejected with 409 while any
// device still references it.
func (s *Server) handleDeleteLocation(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	if err := s.locationRepo.Delete(r.Context(), slug); err != nil {
		switch {
		case errors.Is(err, location.ErrNotFound):
			writeNotFound(w, "location not found")
		case errors.Is(err, location.ErrLocationInUse):
			writeConflict(w, "location still has devices assigned")
		default:
			s.logger.Error("failed to delete location", "slug", slug, "error", err)
			writeInternalError(w, "failed to delete location")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleImportLocations triggers an area discovery and merges the result.
func (s *Server) handleImportLocations(w http.ResponseWriter, r *http.Request) {
	added, err := s.importer.ImportAreas(r.Context())
	if err != nil {
		s.logger.Error("area import failed", "error", err)
		writeInternalError(w, "area import failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"added": added})
}
