package service

import (
	"encoding/json"
	"net/http"
)

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.write(w, http.StatusBadRequest, errorResponse{
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return false
	}
	return true
}

func (h *Handler) write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) error(w http.ResponseWriter, message string, err error) {
	h.logger.Error(message, "error", err)

	h.write(w, http.StatusInternalServerError, errorResponse{
		Message: message,
		Error:   err.Error(),
	})
}
