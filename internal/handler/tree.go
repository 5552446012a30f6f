package handler

import (
	"log/slog"
	"net/http"

	orgtreeSvc "vantage/internal/domain/services/orgtree"
	"vantage/internal/httputil"
	engine "vantage/internal/orgtree"
)

// TreeHandler handles HTTP requests for tree operations
type TreeHandler struct {
	treeService orgtreeSvc.TreeService
	logger      *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(treeService orgtreeSvc.TreeService, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		treeService: treeService,
		logger:      logger,
	}
}

// GetTree returns the adapted tree and its flattened view
// GET /api/companies/{id}/tree
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := parseCompanyID(w, r)
	if !ok {
		return
	}

	tree, err := h.treeService.GetCompanyTree(r.Context(), userID, companyID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}

// RenderTree returns the tree as box-drawing text.
// ?expanded=all|none|id1,id2 picks the expanded items (default: root only),
// ?show_ids=true appends item IDs.
// GET /api/companies/{id}/tree/render
func (h *TreeHandler) RenderTree(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	companyID, ok := parseCompanyID(w, r)
	if !ok {
		return
	}

	tree, err := h.treeService.GetCompanyTree(r.Context(), userID, companyID)
	if err != nil {
		handleError(w, err)
		return
	}

	expanded := engine.ParseExpanded(r.URL.Query().Get("expanded"), tree.Flattened)
	renderer := engine.NewRenderer(r.URL.Query().Get("show_ids") == "true")
	httputil.RespondText(w, http.StatusOK, renderer.Render(engine.FilterVisible(tree.Flattened, expanded))+"\n")
}
