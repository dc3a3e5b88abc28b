package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/opsdesk/opsdesk/internal/domain"
	"github.com/opsdesk/opsdesk/internal/ports"
)

// AuditHandler exposes the read side of the audit log.
type AuditHandler struct {
	audits ports.AuditRepository
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(audits ports.AuditRepository) *AuditHandler {
	return &AuditHandler{audits: audits}
}

// RegisterRoutes registers audit routes
func (h *AuditHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/audit", h.ListEntries).Methods("GET")
}

// ListEntries handles listing audit entries for a resource
func (h *AuditHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	if actor == nil || actor.Role.Rank() < domain.RoleAdmin.Rank() {
		writeError(w, http.StatusForbidden, "audit log requires an administrative role")
		return
	}

	resourceType := r.URL.Query().Get("resource_type")
	resourceID := r.URL.Query().Get("resource_id")
	if resourceType == "" || resourceID == "" {
		writeError(w, http.StatusBadRequest, "resource_type and resource_id are required")
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := h.audits.List(r.Context(), resourceType, resourceID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"total":   len(entries),
	})
}
