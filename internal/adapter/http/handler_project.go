package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/opsdesk/opsdesk/internal/command"
	"github.com/opsdesk/opsdesk/internal/domain"
)

// ProjectHandler handles HTTP requests for projects
type ProjectHandler struct {
	projects *command.ProjectCommands
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projects *command.ProjectCommands) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// RegisterRoutes registers project routes
func (h *ProjectHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/projects", h.CreateProject).Methods("POST")
	router.HandleFunc("/api/v1/projects", h.ListProjects).Methods("GET")
	router.HandleFunc("/api/v1/projects/{id}", h.GetProject).Methods("GET")
	router.HandleFunc("/api/v1/projects/{id}", h.UpdateProject).Methods("PATCH")
	router.HandleFunc("/api/v1/projects/{id}", h.DeleteProject).Methods("DELETE")
	router.HandleFunc("/api/v1/projects/{id}/members", h.AssignMember).Methods("POST")
	router.HandleFunc("/api/v1/projects/{id}/members/{userId}", h.RemoveMember).Methods("DELETE")
}

// CreateProject handles project creation
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req command.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res := h.projects.Create(r.Context(), actorFromContext(r.Context()), req)
	writeResult(w, res, http.StatusCreated)
}

// GetProject handles retrieving a single project
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]

	project, err := h.projects.Get(r.Context(), actorFromContext(r.Context()), projectID)
	if err != nil {
		writeReadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// ListProjects handles listing projects with filters
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	filter := domain.ProjectFilter{}

	if status := r.URL.Query().Get("status"); status != "" {
		s := domain.ProjectStatus(status)
		filter.Status = &s
	}
	if createdBy := r.URL.Query().Get("created_by"); createdBy != "" {
		filter.CreatedBy = &createdBy
	}
	if memberID := r.URL.Query().Get("member_id"); memberID != "" {
		filter.MemberID = &memberID
	}
	filter.Limit, filter.Offset = pagination(r)

	projects, err := h.projects.List(r.Context(), actorFromContext(r.Context()), filter)
	if err != nil {
		writeReadError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"projects": projects,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})
}

// UpdateProject handles project updates
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]

	var req command.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res := h.projects.Update(r.Context(), actorFromContext(r.Context()), projectID, req)
	writeResult(w, res, http.StatusOK)
}

// DeleteProject handles project deletion
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]

	res := h.projects.Delete(r.Context(), actorFromContext(r.Context()), projectID)
	writeResult(w, res, http.StatusOK)
}

// AssignMember handles adding a user to the project roster
func (h *ProjectHandler) AssignMember(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]

	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	res := h.projects.AssignMember(r.Context(), actorFromContext(r.Context()), projectID, req.UserID)
	writeResult(w, res, http.StatusOK)
}

// RemoveMember handles removing a user from the project roster
func (h *ProjectHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	res := h.projects.RemoveMember(r.Context(), actorFromContext(r.Context()), vars["id"], vars["userId"])
	writeResult(w, res, http.StatusOK)
}
