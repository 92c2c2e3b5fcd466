package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/roomlink/roomlink-core/internal/fleet"
)

// handleDevicePoll is the blaster's short poll: 200 with the next
// pending command, or 204 when the queue is empty. Either way the poll
// counts as device contact.
func (s *Server) handleDevicePoll(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceID")

	cmd, ok := s.dispatcher.PollNext(r.Context(), deviceID)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, cmd)
}

// deviceCommandRequest is the body of a direct device command.
type deviceCommandRequest struct {
	Type        string `json:"type"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// handleDeviceCommand queues a command for a device directly, without
// room or catalog involvement.
func (s *Server) handleDeviceCommand(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceID")

	var req deviceCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Type == "" || req.Code == "" {
		writeBadRequest(w, "type and code are required")
		return
	}

	cmd := s.dispatcher.SendToDevice(r.Context(), deviceID, req.Type, req.Code, req.Description)
	writeJSON(w, http.StatusOK, cmd)
}

// handleDeviceAck records command execution. The id is advisory; an
// unknown id is accepted without complaint.
func (s *Server) handleDeviceAck(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceID")

	commandID, err := strconv.ParseInt(chi.URLParam(r, "commandID"), 10, 64)
	if err != nil {
		writeBadRequest(w, "command id must be an integer")
		return
	}

	s.dispatcher.Acknowledge(r.Context(), deviceID, commandID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "acknowledged"})
}

// handleDeviceStatus reports liveness and queue depth for one device.
func (s *Server) handleDeviceStatus(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceID")
	writeJSON(w, http.StatusOK, s.dispatcher.Status(deviceID))
}

// handleListDeviceStatuses reports every device either the queue
// manager or the liveness tracker has ever seen.
func (s *Server) handleListDeviceStatuses(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.dispatcher.ListDevices())
}

// handleDeviceHistory returns recent delivery events, newest first.
func (s *Server) handleDeviceHistory(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceID")

	limit := s.fleetCfg.HistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.dispatcher.History(r.Context(), deviceID, limit)
	if err != nil {
		s.logger.Error("querying device history", "device_id", deviceID, "error", err)
		writeInternalError(w, "failed to query history")
		return
	}
	if entries == nil {
		entries = []fleet.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
