package services

import (
	"context"

	"github.com/google/uuid"
	"vantage/internal/domain/models"
)

// UserPreferencesService manages the durable side of the editor state:
// selected company, selected tree item and display settings
type UserPreferencesService interface {
	// GetPreferences returns default preferences if none exist yet
	GetPreferences(ctx context.Context, userID uuid.UUID) (*models.UserPreferences, error)

	// UpdatePreferences applies a partial update, creating the row if needed
	UpdatePreferences(ctx context.Context, userID uuid.UUID, req *models.UpdatePreferencesRequest) (*models.UserPreferences, error)
}
