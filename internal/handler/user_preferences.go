package handler

import (
	"log/slog"
	"net/http"

	"vantage/internal/domain/models"
	"vantage/internal/domain/services"
	"vantage/internal/httputil"
)

// UserPreferencesHandler handles user preferences HTTP requests
type UserPreferencesHandler struct {
	service services.UserPreferencesService
	logger  *slog.Logger
}

// NewUserPreferencesHandler creates a new user preferences handler
func NewUserPreferencesHandler(service services.UserPreferencesService, logger *slog.Logger) *UserPreferencesHandler {
	return &UserPreferencesHandler{
		service: service,
		logger:  logger,
	}
}

// updatePreferencesBody is the PATCH body. selected_tree_item is tri-state:
// absent keeps it, null clears it, a string selects that item.
type updatePreferencesBody struct {
	SelectedCompanyID *int64                  `json:"selected_company_id"`
	SelectedTreeItem  httputil.OptionalString `json:"selected_tree_item"`
	Tree              *models.TreePreferences `json:"tree"`
	UI                *models.UIPreferences   `json:"ui"`
}

// GetPreferences retrieves user preferences
// GET /api/users/me/preferences
func (h *UserPreferencesHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	prefs, err := h.service.GetPreferences(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, prefs)
}

// UpdatePreferences updates user preferences
// PATCH /api/users/me/preferences
func (h *UserPreferencesHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var body updatePreferencesBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Map the HTTP DTO onto the transport-agnostic request
	req := &models.UpdatePreferencesRequest{
		SelectedCompanyID: body.SelectedCompanyID,
		SelectedTreeItem: models.OptionalTreeItem{
			Present: body.SelectedTreeItem.Present,
			Value:   body.SelectedTreeItem.Value,
		},
		Tree: body.Tree,
		UI:   body.UI,
	}

	prefs, err := h.service.UpdatePreferences(r.Context(), userID, req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, prefs)
}
