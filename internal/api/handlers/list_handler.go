package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/todoshare-be/internal/models"
	"github.com/isdelr/todoshare-be/internal/services"
)

// ListHandler handles HTTP requests for todo lists and their sharing.
type ListHandler struct {
	service services.ListServiceProvider
}

// NewListHandler creates a new ListHandler.
func NewListHandler(service services.ListServiceProvider) *ListHandler {
	return &ListHandler{service: service}
}

// SharePayload is the body of a share request. Username is accepted when
// email is empty.
type SharePayload struct {
	Email      string            `json:"email"`
	Username   string            `json:"username"`
	Permission models.Permission `json:"permission"`
}

// GetAll returns owned lists followed by lists shared with the caller.
func (h *ListHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.service.AllLists(userID))
}

// GetOwned returns the lists the caller owns.
func (h *ListHandler) GetOwned(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.service.OwnedLists(userID))
}

// GetShared returns the lists shared with the caller.
func (h *ListHandler) GetShared(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.service.SharedLists(userID))
}

// Get returns a single list the caller can read.
func (h *ListHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	list, err := h.service.GetList(userID, chi.URLParam(r, "listId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Create makes a new empty list owned by the caller.
func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var payload struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	list, err := h.service.CreateList(userID, payload.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

// Delete removes a list the caller owns.
func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteList(userID, chi.URLParam(r, "listId")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Share grants another user read or write access.
func (h *ListHandler) Share(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var payload SharePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	target := payload.Email
	if target == "" {
		target = payload.Username
	}

	grant, err := h.service.ShareList(userID, chi.URLParam(r, "listId"), target, payload.Permission)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("List shared with %s (%s permission)", target, grant.Permission),
	})
}

// Unshare revokes a grant.
func (h *ListHandler) Unshare(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	err := h.service.RevokeShare(userID, chi.URLParam(r, "listId"), chi.URLParam(r, "targetUserId"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Shares lists the collaborators on a list the caller owns.
func (h *ListHandler) Shares(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	collaborators, err := h.service.Collaborators(userID, chi.URLParam(r, "listId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, collaborators)
}

// ReplaceAll makes the caller's lists match the submitted array.
func (h *ListHandler) ReplaceAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var payload struct {
		Lists json.RawMessage `json:"lists"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	if raw := bytes.TrimSpace(payload.Lists); len(raw) == 0 || raw[0] != '[' {
		writeMessage(w, http.StatusBadRequest, "Lists must be an array")
		return
	}

	var lists []models.ListSubmission
	if err := json.Unmarshal(payload.Lists, &lists); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid lists: "+err.Error())
		return
	}

	updated, err := h.service.ReplaceLists(userID, lists)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"lists":   updated,
	})
}
