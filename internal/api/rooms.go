package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roomlink/roomlink-core/internal/catalog"
	"github.com/roomlink/roomlink-core/internal/fleet"
	"github.com/roomlink/roomlink-core/internal/resolver"
	"github.com/roomlink/roomlink-core/internal/room"
)

// roomCommandRequest is the body of a room-level command. Value carries
// the intent payload; Code is accepted as an alias for Value because
// custom-command clients send the raw payload under that key.
type roomCommandRequest struct {
	Type        string `json:"type"`
	Value       any    `json:"value"`
	Code        any    `json:"code"`
	Description string `json:"description"`
	Brand       string `json:"brand"`
}

// roomCommandResponse is the success shape of the dispatch endpoints.
type roomCommandResponse struct {
	Success bool                 `json:"success"`
	Command fleet.PendingCommand `json:"command"`
}

// handleRoomCommand resolves an abstract intent for the room's device
// and queues the matched command.
func (s *Server) handleRoomCommand(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	var req roomCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	value := req.Value
	if value == nil {
		value = req.Code
	}
	if req.Type == "" || value == nil {
		writeFailure(w, http.StatusBadRequest, "Command type and value are required")
		return
	}

	intent := resolver.Intent{
		Type:        resolver.ParseIntentType(req.Type),
		RawType:     req.Type,
		Value:       value,
		Description: req.Description,
		Brand:       req.Brand,
	}

	cmd, err := s.dispatcher.SendToRoom(r.Context(), roomID, intent)
	if err != nil {
		writeDispatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roomCommandResponse{Success: true, Command: cmd})
}

// handleRoomCatalogCommand delivers a catalog entry verbatim to the
// room's device, bypassing the resolver.
func (s *Server) handleRoomCatalogCommand(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	entryID := chi.URLParam(r, "entryID")

	cmd, err := s.dispatcher.SendCatalogCommand(r.Context(), roomID, entryID)
	if err != nil {
		writeDispatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roomCommandResponse{Success: true, Command: cmd})
}

// handleRoomCommands lists the taught commands available to a room,
// grouped by device type then brand for the web application's picker.
func (s *Server) handleRoomCommands(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	if _, err := s.rooms.Get(r.Context(), roomID); err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			writeFailure(w, http.StatusNotFound, "Room not found")
			return
		}
		s.logger.Error("fetching room", "room_id", roomID, "error", err)
		writeInternalError(w, "failed to fetch room")
		return
	}

	entries, err := s.catalog.List(r.Context())
	if err != nil {
		s.logger.Error("listing catalog", "error", err)
		writeInternalError(w, "failed to list commands")
		return
	}

	grouped := make(map[string]map[string][]catalog.Entry)
	for _, e := range entries {
		byBrand, ok := grouped[e.DeviceType]
		if !ok {
			byBrand = make(map[string][]catalog.Entry)
			grouped[e.DeviceType] = byBrand
		}
		byBrand[e.Brand] = append(byBrand[e.Brand], e)
	}
	writeJSON(w, http.StatusOK, grouped)
}

// handleRoomDeviceStatus reports the liveness of the room's assigned
// blaster, so the web application can grey out controls.
func (s *Server) handleRoomDeviceStatus(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	rm, err := s.rooms.Get(r.Context(), roomID)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			writeFailure(w, http.StatusNotFound, "Room not found")
			return
		}
		s.logger.Error("fetching room", "room_id", roomID, "error", err)
		writeInternalError(w, "failed to fetch room")
		return
	}
	if !rm.HasIRControl || rm.DeviceID == nil || *rm.DeviceID == "" {
		writeFailure(w, http.StatusBadRequest, "Room does not have an IR control device assigned")
		return
	}

	writeJSON(w, http.StatusOK, s.dispatcher.Status(*rm.DeviceID))
}

// roomRequest is the body for creating or updating a room.
type roomRequest struct {
	Name         string  `json:"name"`
	Location     string  `json:"location"`
	HasIRControl bool    `json:"has_ir_control"`
	DeviceID     *string `json:"device_id"`
}

// handleListRooms returns all rooms.
func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.rooms.List(r.Context())
	if err != nil {
		s.logger.Error("listing rooms", "error", err)
		writeInternalError(w, "failed to list rooms")
		return
	}
	if rooms == nil {
		rooms = []room.Room{}
	}
	writeJSON(w, http.StatusOK, rooms)
}

// handleCreateRoom creates a room.
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	rm := &room.Room{
		Name:         req.Name,
		Location:     req.Location,
		HasIRControl: req.HasIRControl,
		DeviceID:     req.DeviceID,
	}
	if err := s.rooms.Create(r.Context(), rm); err != nil {
		if errors.Is(err, room.ErrInvalidRoom) {
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
			return
		}
		s.logger.Error("creating room", "error", err)
		writeInternalError(w, "failed to create room")
		return
	}
	writeJSON(w, http.StatusCreated, rm)
}

// handleGetRoom returns a single room.
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	rm, err := s.rooms.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			writeNotFound(w, "room not found")
			return
		}
		s.logger.Error("fetching room", "error", err)
		writeInternalError(w, "failed to fetch room")
		return
	}
	writeJSON(w, http.StatusOK, rm)
}

// handleUpdateRoom replaces a room's mutable fields.
func (s *Server) handleUpdateRoom(w http.ResponseWriter, r *http.Request) {
	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	rm := &room.Room{
		ID:           chi.URLParam(r, "id"),
		Name:         req.Name,
		Location:     req.Location,
		HasIRControl: req.HasIRControl,
		DeviceID:     req.DeviceID,
	}
	if err := s.rooms.Update(r.Context(), rm); err != nil {
		switch {
		case errors.Is(err, room.ErrRoomNotFound):
			writeNotFound(w, "room not found")
		case errors.Is(err, room.ErrInvalidRoom):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		default:
			s.logger.Error("updating room", "error", err)
			writeInternalError(w, "failed to update room")
		}
		return
	}
	writeJSON(w, http.StatusOK, rm)
}

// handleDeleteRoom removes a room.
func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := s.rooms.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			writeNotFound(w, "room not found")
			return
		}
		s.logger.Error("deleting room", "error", err)
		writeInternalError(w, "failed to delete room")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
