package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/morbeth/home-assistant-pdf-manuals/internal/device"
)

// deviceRequest is the JSON body for device create and update.
type deviceRequest struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Location     string  `json:"location"`
	Manufacturer string  `json:"manufacturer"`
	Model        string  `json:"model"`
	Manual       *string `json:"manual"`
}

// handleListDevices returns all devices.
//
// Query parameters:
//   - location: filter by location name (case-insensitive)
//   - sort: "name" (default) or "location"
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var devices []device.Device
	var err error
	if loc := r.URL.Query().Get("location"); loc != "" {
		devices, err = s.deviceRepo.ListByLocation(ctx, loc)
	} else {
		devices, err = s.deviceRepo.List(ctx)
	}
	if err != nil {
		s.logger.Error("failed to list devices", "error", err)
		writeInternalError(w, "failed to list devices")
		return
	}

	if r.URL.Query().Get("sort") == "location" {
		sort.SliceStable(devices, func(i, j int) bool {
			return strings.ToLower(devices[i].Location) < strings.ToLower(devices[j].Location)
		})
	}

	if devices == nil {
		devices = []device.Device{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}

// handleGetDevice returns a single device by ID.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	d, err := s.deviceRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, device.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("failed to get device", "device_id", id, "error", err)
		writeInternalError(w, "failed to get device")
		return
	}

	writeJSON(w, http.StatusOK, d)
}

// handleCreateDevice creates a new device. The device's location is created
// on the fly if it does not exist yet.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	d := &device.Device{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Type:         req.Type,
		Location:     req.Location,
		Manufacturer: req.Manufacturer,
		Model:        req.Model,
	}
	if err := s.assignManual(w, req.Manual, d); err != nil {
		return
	}
	if err := device.Validate(d); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	ctx := r.Context()
	if err := s.importer.EnsureLocation(ctx, d.Location); err != nil {
		s.logger.Error("failed to ensure location", "location", d.Location, "error", err)
		writeInternalError(w, "failed to create device")
		return
	}
	if err := s.deviceRepo.Create(ctx, d); err != nil {
		s.logger.Error("failed to create device", "error", err)
		writeInternalError(w, "failed to create device")
		return
	}

	writeJSON(w, http.StatusCreated, d)
}

// handleUpdateDevice replaces a device's editable fields.
func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()

	existing, err := s.deviceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, device.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("failed to get device", "device_id", id, "error", err)
		writeInternalError(w, "failed to update device")
		return
	}

	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	existing.Name = req.Name
	existing.Type = req.Type
	existing.Location = req.Location
	existing.Manufacturer = req.Manufacturer
	existing.Model = req.Model
	existing.Manual = nil
	if err := s.assignManual(w, req.Manual, existing); err != nil {
		return
	}
	if err := device.Validate(existing); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	if err := s.importer.EnsureLocation(ctx, existing.Location); err != nil {
		s.logger.Error("failed to ensure location", "location", existing.Location, "error", err)
		writeInternalError(w, "failed to update device")
		return
	}
	if err := s.deviceRepo.Update(ctx, existing); err != nil {
		s.logger.Error("failed to update device", "device_id", id, "error", err)
		writeInternalError(w, "failed to update device")
		return
	}

	writeJSON(w, http.StatusOK, existing)
}

// assignManual validates a requested manual reference against the store
// before attaching it. Writes the error response itself when invalid.
func (s *Server) assignManual(w http.ResponseWriter, requested *string, d *device.Device) error {
	if requested == nil || strings.TrimSpace(*requested) == "" {
		return nil
	}
	name := strings.TrimSpace(*requested)
	if !s.manuals.Exists(name) {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "manual does not exist: "+name)
		return errors.New("unknown manual")
	}
	d.Manual = &name
	return nil
}

// handleDeleteDevice removes a single device.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.deviceRepo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, device.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("failed to delete device", "device_id", id, "error", err)
		writeInternalError(w, "failed to delete device")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleBulkDeleteDevices removes a set of devices by id. Unknown ids are
// skipped; the response reports how many were actually deleted.
func (s *Server) handleBulkDeleteDevices(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if len(req.IDs) == 0 {
		writeBadRequest(w, "ids must not be empty")
		return
	}

	deleted, err := s.deviceRepo.DeleteMany(r.Context(), req.IDs)
	if err != nil {
		s.logger.Error("failed to bulk delete devices", "error", err)
		writeInternalError(w, "failed to delete devices")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}

// handleDeleteAllDevices empties the device catalog.
func (s *Server) handleDeleteAllDevices(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.deviceRepo.DeleteAll(r.Context())
	if err != nil {
		s.logger.Error("failed to delete all devices", "error", err)
		writeInternalError(w, "failed to delete devices")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}

// handleImportDevices triggers a hub discovery and merges the result.
func (s *Server) handleImportDevices(w http.ResponseWriter, r *http.Request) {
	imported, err := s.importer.ImportDevices(r.Context())
	if err != nil {
		s.logger.Error("device import failed", "error", err)
		writeInternalError(w, "device import failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"imported": imported})
}
