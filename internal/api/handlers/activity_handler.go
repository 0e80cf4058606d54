package handlers

import (
	"net/http"
	"strconv"

	"github.com/isdelr/todoshare-be/internal/services"
)

// ActivityHandler handles HTTP requests for the activity feed.
type ActivityHandler struct {
	service services.ActivityServiceProvider
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(service services.ActivityServiceProvider) *ActivityHandler {
	return &ActivityHandler{service: service}
}

// GetRecent handles the request to get recent activity visible to the caller.
func (h *ActivityHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 0 // service default
	}
	writeJSON(w, http.StatusOK, h.service.Recent(userID, limit))
}
