package handler

import (
	"log/slog"
	"net/http"

	models "vantage/internal/domain/models/orgtree"
	orgtreeSvc "vantage/internal/domain/services/orgtree"
	"vantage/internal/httputil"
)

// ReorderHandler persists reorder payloads computed by a client
type ReorderHandler struct {
	reorderService orgtreeSvc.ReorderService
	logger         *slog.Logger
}

func NewReorderHandler(reorderService orgtreeSvc.ReorderService, logger *slog.Logger) *ReorderHandler {
	return &ReorderHandler{
		reorderService: reorderService,
		logger:         logger,
	}
}

// Reorder applies a reorder payload atomically
// POST /api/companies/{id}/tree/reorder
func (h *ReorderHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := parseCompanyID(w, r)
	if !ok {
		return
	}

	var req models.ReorderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.reorderService.ReorderTree(r.Context(), userID, companyID, req.Items); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
