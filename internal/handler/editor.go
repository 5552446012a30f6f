package handler

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	orgtreeSvc "vantage/internal/domain/services/orgtree"
	"vantage/internal/httputil"
)

// EditorHandler exposes server-side drag-and-drop editor sessions
type EditorHandler struct {
	editor orgtreeSvc.EditorService
	logger *slog.Logger
}

func NewEditorHandler(editor orgtreeSvc.EditorService, logger *slog.Logger) *EditorHandler {
	return &EditorHandler{
		editor: editor,
		logger: logger,
	}
}

type toggleRequest struct {
	ID string `json:"id"`
}

type dragStartRequest struct {
	ActiveID string `json:"active_id"`
}

type dragMoveRequest struct {
	OverID     string  `json:"over_id"`
	OffsetLeft float64 `json:"offset_left"`
}

// OpenSession (re)loads the caller's session from the database
// POST /api/companies/{id}/editor/session
func (h *EditorHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	userID, companyID, ok := h.scope(w, r)
	if !ok {
		return
	}
	view, err := h.editor.Open(r.Context(), userID, companyID)
	respondView(w, view, err)
}

// GetVisible returns the visible items of the session
// GET /api/companies/{id}/editor/visible
func (h *EditorHandler) GetVisible(w http.ResponseWriter, r *http.Request) {
	userID, companyID, ok := h.scope(w, r)
	if !ok {
		return
	}
	view, err := h.editor.View(r.Context(), userID, companyID)
	respondView(w, view, err)
}

// Toggle expands or collapses an item
// POST /api/companies/{id}/editor/toggle
func (h *EditorHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, companyID, ok := h.scope(w, r)
	if !ok {
		return
	}
	var req toggleRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil || req.ID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "id is required")
		return
	}
	view, err := h.editor.Toggle(r.Context(), userID, companyID, req.ID)
	respondView(w, view, err)
}

// DragStart begins a drag
// POST /api/companies/{id}/editor/drag/start
func (h *EditorHandler) DragStart(w http.ResponseWriter, r *http.Request) {
	userID, companyID, ok := h.scope(w, r)
	if !ok {
		return
	}
	var req dragStartRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil || req.ActiveID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "active_id is required")
		return
	}
	view, err := h.editor.DragStart(r.Context(), userID, companyID, req.ActiveID)
	respondView(w, view, err)
}

// DragMove updates the hovered item and offset; the view carries the projection
// POST /api/companies/{id}/editor/drag/move
func (h *EditorHandler) DragMove(w http.ResponseWriter, r *http.Request) {
	userID, companyID, ok := h.scope(w, r)
	if !ok {
		return
	}
	var req dragMoveRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil || req.OverID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "over_id is required")
		return
	}
	view, err := h.editor.DragMove(r.Context(), userID, companyID, req.OverID, req.OffsetLeft)
	respondView(w, view, err)
}

// DragEnd validates and applies the move. Rejections come back as 422 with
// the user-facing message in detail.
// POST /api/companies/{id}/editor/drag/end
func (h *EditorHandler) DragEnd(w http.ResponseWriter, r *http.Request) {
	userID, companyID, ok := h.scope(w, r)
	if !ok {
		return
	}
	result, err := h.editor.DragEnd(r.Context(), userID, companyID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

// DragCancel abandons the drag
// POST /api/companies/{id}/editor/drag/cancel
func (h *EditorHandler) DragCancel(w http.ResponseWriter, r *http.Request) {
	userID, companyID, ok := h.scope(w, r)
	if !ok {
		return
	}
	view, err := h.editor.DragCancel(r.Context(), userID, companyID)
	respondView(w, view, err)
}

func (h *EditorHandler) scope(w http.ResponseWriter, r *http.Request) (uuid.UUID, int64, bool) {
	uid, ok := currentUser(w, r)
	if !ok {
		return uid, 0, false
	}
	cid, ok := parseCompanyID(w, r)
	if !ok {
		return uid, 0, false
	}
	return uid, cid, true
}

func respondView(w http.ResponseWriter, view *orgtreeSvc.EditorView, err error) {
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, view)
}
