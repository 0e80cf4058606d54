package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/todoshare-be/internal/models"
	"github.com/isdelr/todoshare-be/internal/services"
)

// TodoHandler handles HTTP requests for the items of a list.
type TodoHandler struct {
	service services.ListServiceProvider
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(service services.ListServiceProvider) *TodoHandler {
	return &TodoHandler{service: service}
}

// Add appends an item to a list.
func (h *TodoHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var input services.TodoInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	todo, err := h.service.AddTodo(userID, chi.URLParam(r, "listId"), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

// Toggle advances an item's status.
func (h *TodoHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	todo, err := h.service.ToggleTodo(userID, chi.URLParam(r, "listId"), chi.URLParam(r, "todoId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// Update applies a partial update to an item.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	patch, err := models.ParseTodoPatch(body)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	todo, err := h.service.UpdateTodo(userID, chi.URLParam(r, "listId"), chi.URLParam(r, "todoId"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// Delete removes an item.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteTodo(userID, chi.URLParam(r, "listId"), chi.URLParam(r, "todoId")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
