package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/opsdesk/opsdesk/internal/command"
	"github.com/opsdesk/opsdesk/internal/domain"
)

// UserHandler handles HTTP requests for user accounts
type UserHandler struct {
	users *command.UserCommands
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *command.UserCommands) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterRoutes registers user routes
func (h *UserHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/users", h.CreateUser).Methods("POST")
	router.HandleFunc("/api/v1/users", h.ListUsers).Methods("GET")
	router.HandleFunc("/api/v1/users/{id}", h.GetUser).Methods("GET")
	router.HandleFunc("/api/v1/users/{id}", h.UpdateProfile).Methods("PATCH")
	router.HandleFunc("/api/v1/users/{id}", h.DeleteUser).Methods("DELETE")
	router.HandleFunc("/api/v1/users/{id}/role", h.ChangeRole).Methods("PUT")
	router.HandleFunc("/api/v1/users/{id}/deactivate", h.DeactivateUser).Methods("POST")
}

// CreateUser handles user provisioning
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req command.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res := h.users.Create(r.Context(), actorFromContext(r.Context()), req)
	writeResult(w, res, http.StatusCreated)
}

// GetUser handles retrieving a single user
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	user, err := h.users.Get(r.Context(), actorFromContext(r.Context()), userID)
	if err != nil {
		writeReadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ListUsers handles listing users with filters
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	filter := domain.UserFilter{}

	if role := r.URL.Query().Get("role"); role != "" {
		parsed, err := domain.ParseRole(role)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid role filter")
			return
		}
		filter.Role = &parsed
	}
	if active := r.URL.Query().Get("active"); active != "" {
		v := active == "true"
		filter.Active = &v
	}
	filter.Limit, filter.Offset = pagination(r)

	users, err := h.users.List(r.Context(), actorFromContext(r.Context()), filter)
	if err != nil {
		writeReadError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"users":  users,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// UpdateProfile handles profile updates
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	var req command.UpdateUserProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res := h.users.UpdateProfile(r.Context(), actorFromContext(r.Context()), userID, req)
	writeResult(w, res, http.StatusOK)
}

// ChangeRole handles role changes
func (h *UserHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid role")
		return
	}

	res := h.users.ChangeRole(r.Context(), actorFromContext(r.Context()), userID, role)
	writeResult(w, res, http.StatusOK)
}

// DeactivateUser handles deactivating an account
func (h *UserHandler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	res := h.users.Deactivate(r.Context(), actorFromContext(r.Context()), userID)
	writeResult(w, res, http.StatusOK)
}

// DeleteUser handles deleting an account
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	res := h.users.Delete(r.Context(), actorFromContext(r.Context()), userID)
	writeResult(w, res, http.StatusOK)
}
