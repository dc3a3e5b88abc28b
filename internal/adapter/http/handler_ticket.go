package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/opsdesk/opsdesk/internal/command"
	"github.com/opsdesk/opsdesk/internal/domain"
)

// TicketHandler handles HTTP requests for tickets
type TicketHandler struct {
	tickets *command.TicketCommands
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(tickets *command.TicketCommands) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

// RegisterRoutes registers ticket routes
func (h *TicketHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/tickets", h.CreateTicket).Methods("POST")
	router.HandleFunc("/api/v1/tickets", h.ListTickets).Methods("GET")
	router.HandleFunc("/api/v1/tickets/{id}", h.GetTicket).Methods("GET")
	router.HandleFunc("/api/v1/tickets/{id}", h.UpdateTicket).Methods("PATCH")
	router.HandleFunc("/api/v1/tickets/{id}", h.DeleteTicket).Methods("DELETE")
	router.HandleFunc("/api/v1/tickets/{id}/assign", h.AssignTicket).Methods("POST")
	router.HandleFunc("/api/v1/tickets/{id}/unassign", h.UnassignTicket).Methods("POST")
	router.HandleFunc("/api/v1/tickets/{id}/resolve", h.ResolveTicket).Methods("POST")
	router.HandleFunc("/api/v1/tickets/{id}/close", h.CloseTicket).Methods("POST")
}

// CreateTicket handles ticket creation
func (h *TicketHandler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	var req command.CreateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res := h.tickets.Create(r.Context(), actorFromContext(r.Context()), req)
	writeResult(w, res, http.StatusCreated)
}

// GetTicket handles retrieving a single ticket
func (h *TicketHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := mux.Vars(r)["id"]

	ticket, err := h.tickets.Get(r.Context(), actorFromContext(r.Context()), ticketID)
	if err != nil {
		writeReadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

// ListTickets handles listing tickets with filters
func (h *TicketHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	filter := domain.TicketFilter{}

	if status := r.URL.Query().Get("status"); status != "" {
		s := domain.TicketStatus(status)
		filter.Status = &s
	}
	if category := r.URL.Query().Get("category"); category != "" {
		c := domain.TicketCategory(category)
		filter.Category = &c
	}
	if priority := r.URL.Query().Get("priority"); priority != "" {
		p := domain.TicketPriority(priority)
		filter.Priority = &p
	}
	if createdBy := r.URL.Query().Get("created_by"); createdBy != "" {
		filter.CreatedBy = &createdBy
	}
	if assignedTo := r.URL.Query().Get("assigned_to"); assignedTo != "" {
		filter.AssignedTo = &assignedTo
	}
	filter.Limit, filter.Offset = pagination(r)

	tickets, total, err := h.tickets.List(r.Context(), actorFromContext(r.Context()), filter)
	if err != nil {
		writeReadError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tickets": tickets,
		"total":   total,
		"limit":   filter.Limit,
		"offset":  filter.Offset,
	})
}

// UpdateTicket handles ticket updates
func (h *TicketHandler) UpdateTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := mux.Vars(r)["id"]

	var req command.UpdateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res := h.tickets.Update(r.Context(), actorFromContext(r.Context()), ticketID, req)
	writeResult(w, res, http.StatusOK)
}

// DeleteTicket handles ticket deletion
func (h *TicketHandler) DeleteTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := mux.Vars(r)["id"]

	res := h.tickets.Delete(r.Context(), actorFromContext(r.Context()), ticketID)
	writeResult(w, res, http.StatusOK)
}

// AssignTicket handles ticket assignment
func (h *TicketHandler) AssignTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := mux.Vars(r)["id"]

	var req struct {
		AssigneeID string `json:"assignee_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AssigneeID == "" {
		writeError(w, http.StatusBadRequest, "assignee_id is required")
		return
	}

	res := h.tickets.Assign(r.Context(), actorFromContext(r.Context()), ticketID, req.AssigneeID)
	writeResult(w, res, http.StatusOK)
}

// UnassignTicket handles removing the ticket assignee
func (h *TicketHandler) UnassignTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := mux.Vars(r)["id"]

	res := h.tickets.Unassign(r.Context(), actorFromContext(r.Context()), ticketID)
	writeResult(w, res, http.StatusOK)
}

// ResolveTicket handles ticket resolution
func (h *TicketHandler) ResolveTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := mux.Vars(r)["id"]

	var req struct {
		Resolution string `json:"resolution"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Resolution == "" {
		writeError(w, http.StatusBadRequest, "resolution is required")
		return
	}

	res := h.tickets.Resolve(r.Context(), actorFromContext(r.Context()), ticketID, req.Resolution)
	writeResult(w, res, http.StatusOK)
}

// CloseTicket handles ticket closure
func (h *TicketHandler) CloseTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := mux.Vars(r)["id"]

	res := h.tickets.Close(r.Context(), actorFromContext(r.Context()), ticketID)
	writeResult(w, res, http.StatusOK)
}

func pagination(r *http.Request) (limit, offset int) {
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil {
			limit = n
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if n, err := strconv.Atoi(offsetStr); err == nil {
			offset = n
		}
	}
	return limit, offset
}
