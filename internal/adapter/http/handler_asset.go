package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/opsdesk/opsdesk/internal/command"
	"github.com/opsdesk/opsdesk/internal/domain"
)

// AssetHandler handles HTTP requests for assets
type AssetHandler struct {
	assets *command.AssetCommands
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(assets *command.AssetCommands) *AssetHandler {
	return &AssetHandler{assets: assets}
}

// RegisterRoutes registers asset routes
func (h *AssetHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/assets", h.CreateAsset).Methods("POST")
	router.HandleFunc("/api/v1/assets", h.ListAssets).Methods("GET")
	router.HandleFunc("/api/v1/assets/{id}", h.GetAsset).Methods("GET")
	router.HandleFunc("/api/v1/assets/{id}", h.UpdateAsset).Methods("PATCH")
	router.HandleFunc("/api/v1/assets/{id}", h.DeleteAsset).Methods("DELETE")
	router.HandleFunc("/api/v1/assets/{id}/assign", h.AssignAsset).Methods("POST")
	router.HandleFunc("/api/v1/assets/{id}/unassign", h.UnassignAsset).Methods("POST")
}

// CreateAsset handles asset registration
func (h *AssetHandler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var req command.CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res := h.assets.Create(r.Context(), actorFromContext(r.Context()), req)
	writeResult(w, res, http.StatusCreated)
}

// GetAsset handles retrieving a single asset
func (h *AssetHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	assetID := mux.Vars(r)["id"]

	asset, err := h.assets.Get(r.Context(), actorFromContext(r.Context()), assetID)
	if err != nil {
		writeReadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

// ListAssets handles listing assets with filters
func (h *AssetHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	filter := domain.AssetFilter{}

	if status := r.URL.Query().Get("status"); status != "" {
		s := domain.AssetStatus(status)
		filter.Status = &s
	}
	if category := r.URL.Query().Get("category"); category != "" {
		c := domain.AssetCategory(category)
		filter.Category = &c
	}
	if assignedTo := r.URL.Query().Get("assigned_to"); assignedTo != "" {
		filter.AssignedTo = &assignedTo
	}
	filter.Limit, filter.Offset = pagination(r)

	assets, total, err := h.assets.List(r.Context(), actorFromContext(r.Context()), filter)
	if err != nil {
		writeReadError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"assets": assets,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// UpdateAsset handles asset updates
func (h *AssetHandler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	assetID := mux.Vars(r)["id"]

	var req command.UpdateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res := h.assets.Update(r.Context(), actorFromContext(r.Context()), assetID, req)
	writeResult(w, res, http.StatusOK)
}

// DeleteAsset handles asset deletion
func (h *AssetHandler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	assetID := mux.Vars(r)["id"]

	res := h.assets.Delete(r.Context(), actorFromContext(r.Context()), assetID)
	writeResult(w, res, http.StatusOK)
}

// AssignAsset handles handing an asset to a holder
func (h *AssetHandler) AssignAsset(w http.ResponseWriter, r *http.Request) {
	assetID := mux.Vars(r)["id"]

	var req struct {
		HolderID string `json:"holder_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.HolderID == "" {
		writeError(w, http.StatusBadRequest, "holder_id is required")
		return
	}

	res := h.assets.Assign(r.Context(), actorFromContext(r.Context()), assetID, req.HolderID)
	writeResult(w, res, http.StatusOK)
}

// UnassignAsset handles returning an asset to stock
func (h *AssetHandler) UnassignAsset(w http.ResponseWriter, r *http.Request) {
	assetID := mux.Vars(r)["id"]

	res := h.assets.Unassign(r.Context(), actorFromContext(r.Context()), assetID)
	writeResult(w, res, http.StatusOK)
}
