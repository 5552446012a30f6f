package orgtree

import (
	"context"

	"github.com/google/uuid"
	models "vantage/internal/domain/models/orgtree"
	engine "vantage/internal/orgtree"
)

// EditorView is what the client renders after every editor operation
type EditorView struct {
	CompanyID  int64                  `json:"company_id"`
	Visible    []engine.FlattenedItem `json:"visible"`
	Expanded   []string               `json:"expanded"`
	Dragging   bool                   `json:"dragging"`
	Projection *engine.Projection     `json:"projection,omitempty"`
}

// DragEndResult is the outcome of a drag end plus the refreshed view
type DragEndResult struct {
	engine.MoveResult
	View *EditorView `json:"view"`
}

// EditorService runs server-side tree editor sessions, one per user and
// company. Sessions live in memory only and expire when idle.
type EditorService interface {
	// Open (re)loads the session from upstream, discarding any pending drag
	Open(ctx context.Context, userID uuid.UUID, companyID int64) (*EditorView, error)
	View(ctx context.Context, userID uuid.UUID, companyID int64) (*EditorView, error)
	Toggle(ctx context.Context, userID uuid.UUID, companyID int64, itemID string) (*EditorView, error)
	DragStart(ctx context.Context, userID uuid.UUID, companyID int64, activeID string) (*EditorView, error)
	DragMove(ctx context.Context, userID uuid.UUID, companyID int64, overID string, offsetLeft float64) (*EditorView, error)

	// DragEnd commits the move to the session and hands the payload to the
	// persister in the background. A persistence failure is not rolled back.
	DragEnd(ctx context.Context, userID uuid.UUID, companyID int64) (*DragEndResult, error)
	DragCancel(ctx context.Context, userID uuid.UUID, companyID int64) (*EditorView, error)
}

// TreePersister writes a reorder payload upstream
type TreePersister interface {
	Persist(ctx context.Context, companyID int64, records []models.ReorderRecord) error
}
