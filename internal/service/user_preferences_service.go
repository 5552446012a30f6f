package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"vantage/internal/domain"
	"vantage/internal/domain/models"
	"vantage/internal/domain/repositories"
	"vantage/internal/domain/services"
	engine "vantage/internal/orgtree"
)

// Bounds for the tree indentation preference, in pixels
const (
	minIndentationWidth = 10
	maxIndentationWidth = 200
)

// UserPreferencesService implements the UserPreferencesService interface
type UserPreferencesService struct {
	prefsRepo repositories.UserPreferencesRepository
	logger    *slog.Logger
}

// NewUserPreferencesService creates a new user preferences service
func NewUserPreferencesService(
	prefsRepo repositories.UserPreferencesRepository,
	logger *slog.Logger,
) services.UserPreferencesService {
	return &UserPreferencesService{
		prefsRepo: prefsRepo,
		logger:    logger,
	}
}

// getDefaultPreferences returns default preferences with namespaced structure
func (s *UserPreferencesService) getDefaultPreferences(userID uuid.UUID) *models.UserPreferences {
	now := time.Now()
	return &models.UserPreferences{
		UserID: userID,
		Preferences: models.JSONMap{
			models.NamespaceSelection: map[string]interface{}{
				"company_id":   nil,
				"tree_item_id": nil,
			},
			models.NamespaceTree: map[string]interface{}{
				"indentation_width": nil,
				"show_ids":          false,
			},
			models.NamespaceUI: map[string]interface{}{
				"theme": "light",
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetPreferences retrieves preferences for a user
func (s *UserPreferencesService) GetPreferences(ctx context.Context, userID uuid.UUID) (*models.UserPreferences, error) {
	prefs, err := s.prefsRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}

	// If no preferences exist yet, return default/empty preferences
	if prefs == nil {
		s.logger.Debug("no preferences found, returning defaults", "user_id", userID)
		prefs = s.getDefaultPreferences(userID)
	}

	return prefs, nil
}

// UpdatePreferences updates user preferences (partial or full update)
func (s *UserPreferencesService) UpdatePreferences(ctx context.Context, userID uuid.UUID, req *models.UpdatePreferencesRequest) (*models.UserPreferences, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Get existing preferences or create new ones
	existing, err := s.prefsRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get existing preferences: %w", err)
	}

	// If no existing preferences, start with defaults
	if existing == nil {
		existing = s.getDefaultPreferences(userID)
	}

	if req.SelectedCompanyID != nil || req.SelectedTreeItem.Present {
		if err := s.updateSelection(existing, req); err != nil {
			return nil, fmt.Errorf("update selection namespace: %w", err)
		}
	}

	if req.Tree != nil {
		if err := existing.SetNamespace(models.NamespaceTree, req.Tree); err != nil {
			return nil, fmt.Errorf("update tree namespace: %w", err)
		}
	}

	if req.UI != nil {
		if err := existing.SetNamespace(models.NamespaceUI, req.UI); err != nil {
			return nil, fmt.Errorf("update ui namespace: %w", err)
		}
	}

	// Update timestamp
	existing.UpdatedAt = time.Now()

	// Persist changes
	if err := s.prefsRepo.Upsert(ctx, existing); err != nil {
		return nil, fmt.Errorf("upsert preferences: %w", err)
	}

	s.logger.Info("user preferences updated",
		"user_id", userID,
		"has_company", req.SelectedCompanyID != nil,
		"has_tree_item", req.SelectedTreeItem.Present,
		"has_tree", req.Tree != nil,
		"has_ui", req.UI != nil,
	)

	return existing, nil
}

// updateSelection patches the selection namespace. Switching company clears
// the selected item unless the same request sets a new one.
func (s *UserPreferencesService) updateSelection(prefs *models.UserPreferences, req *models.UpdatePreferencesRequest) error {
	selection, err := prefs.GetSelection()
	if err != nil {
		return err
	}

	if req.SelectedCompanyID != nil {
		changed := selection.CompanyID == nil || *selection.CompanyID != *req.SelectedCompanyID
		selection.CompanyID = req.SelectedCompanyID
		if changed {
			selection.TreeItemID = nil
		}
	}

	// Tri-state: only update if field was present in request
	if req.SelectedTreeItem.Present {
		selection.TreeItemID = req.SelectedTreeItem.Value
	}

	return prefs.SetNamespace(models.NamespaceSelection, selection)
}

func (s *UserPreferencesService) validateUpdateRequest(req *models.UpdatePreferencesRequest) error {
	if req.SelectedCompanyID != nil && *req.SelectedCompanyID <= 0 {
		return fmt.Errorf("selected_company_id must be positive")
	}

	if req.SelectedTreeItem.Present && req.SelectedTreeItem.Value != nil {
		if _, _, err := engine.DecodeID(*req.SelectedTreeItem.Value); err != nil {
			return fmt.Errorf("selected_tree_item: %v", err)
		}
	}

	if req.Tree != nil {
		if err := validation.ValidateStruct(req.Tree,
			validation.Field(&req.Tree.IndentationWidth, validation.Min(minIndentationWidth), validation.Max(maxIndentationWidth)),
		); err != nil {
			return err
		}
	}

	if req.UI != nil {
		if err := validation.ValidateStruct(req.UI,
			validation.Field(&req.UI.Theme, validation.In("light", "dark", "auto")),
		); err != nil {
			return err
		}
	}

	return nil
}
