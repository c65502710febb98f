package api

import "net/http"

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}

// handleStats returns catalog-wide counts.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	devices, err := s.deviceRepo.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count devices", "error", err)
		writeInternalError(w, "failed to gather stats")
		return
	}
	hubImported, err := s.deviceRepo.CountHubImported(ctx)
	if err != nil {
		s.logger.Error("failed to count imported devices", "error", err)
		writeInternalError(w, "failed to gather stats")
		return
	}
	withManual, err := s.deviceRepo.CountWithManual(ctx)
	if err != nil {
		s.logger.Error("failed to count devices with manuals", "error", err)
		writeInternalError(w, "failed to gather stats")
		return
	}
	locations, err := s.locationRepo.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count locations", "error", err)
		writeInternalError(w, "failed to gather stats")
		return
	}
	manuals, err := s.manuals.Count()
	if err != nil {
		s.logger.Error("failed to count manuals", "error", err)
		writeInternalError(w, "failed to gather stats")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices":              devices,
		"devices_hub_imported": hubImported,
		"devices_with_manual":  withManual,
		"locations":            locations,
		"manuals":              manuals,
	})
}
