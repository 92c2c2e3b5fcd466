package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roomlink/roomlink-core/internal/catalog"
)

// handleListCatalog returns taught commands, optionally filtered by
// device type and category query parameters.
func (s *Server) handleListCatalog(w http.ResponseWriter, r *http.Request) {
	deviceType := r.URL.Query().Get("device_type")
	category := r.URL.Query().Get("category")

	var (
		entries []catalog.Entry
		err     error
	)
	switch {
	case deviceType != "" && category != "":
		entries, err = s.catalog.ListByDeviceTypeAndCategory(r.Context(), deviceType, category)
	case deviceType != "":
		entries, err = s.catalog.ListByDeviceType(r.Context(), deviceType)
	default:
		entries, err = s.catalog.List(r.Context())
	}
	if err != nil {
		s.logger.Error("listing catalog entries", "error", err)
		writeInternalError(w, "failed to list commands")
		return
	}
	if entries == nil {
		entries = []catalog.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleCreateCatalogEntry stores a newly taught command.
func (s *Server) handleCreateCatalogEntry(w http.ResponseWriter, r *http.Request) {
	var entry catalog.Entry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.catalog.Create(r.Context(), &entry); err != nil {
		if errors.Is(err, catalog.ErrInvalidEntry) {
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
			return
		}
		s.logger.Error("creating catalog entry", "error", err)
		writeInternalError(w, "failed to create command")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// handleGetCatalogEntry returns a single taught command.
func (s *Server) handleGetCatalogEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, catalog.ErrEntryNotFound) {
			writeNotFound(w, "command not found")
			return
		}
		s.logger.Error("fetching catalog entry", "error", err)
		writeInternalError(w, "failed to fetch command")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// handleUpdateCatalogEntry replaces a taught command's fields.
func (s *Server) handleUpdateCatalogEntry(w http.ResponseWriter, r *http.Request) {
	var entry catalog.Entry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	entry.ID = chi.URLParam(r, "id")

	if err := s.catalog.Update(r.Context(), &entry); err != nil {
		switch {
		case errors.Is(err, catalog.ErrEntryNotFound):
			writeNotFound(w, "command not found")
		case errors.Is(err, catalog.ErrInvalidEntry):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		default:
			s.logger.Error("updating catalog entry", "error", err)
			writeInternalError(w, "failed to update command")
		}
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// handleDeleteCatalogEntry removes a taught command.
func (s *Server) handleDeleteCatalogEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, catalog.ErrEntryNotFound) {
			writeNotFound(w, "command not found")
			return
		}
		s.logger.Error("deleting catalog entry", "error", err)
		writeInternalError(w, "failed to delete command")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
