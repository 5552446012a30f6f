package orgtree

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vantage/internal/domain"
	models "vantage/internal/domain/models/orgtree"
	engine "vantage/internal/orgtree"
)

func newTestEditor(t *testing.T, persister *fakePersister) *EditorService {
	t.Helper()
	repo := &fakeHierarchy{company: testCompany()}
	return NewEditorService(repo, nil, &fakeAuthorizer{}, persister, nil, EditorConfig{
		IndentationWidth: 50,
		IdleTimeout:      time.Hour,
	}, discardLogger())
}

func itemIDs(items []engine.FlattenedItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

// expandToSite opens the session and expands down to Mine A, showing both
// asset groups collapsed
func expandToSite(t *testing.T, svc *EditorService, user uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	_, err := svc.Open(ctx, user, 1)
	require.NoError(t, err)
	for _, id := range []string{"business_unit_1", "region_1", "site_1"} {
		_, err := svc.Toggle(ctx, user, 1, id)
		require.NoError(t, err)
	}
}

func TestEditorService_Open(t *testing.T) {
	svc := newTestEditor(t, &fakePersister{})

	view, err := svc.Open(context.Background(), uuid.New(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"company_1", "business_unit_1"}, itemIDs(view.Visible))
	assert.Equal(t, []string{"company_1"}, view.Expanded)
	assert.False(t, view.Dragging)
}

func TestEditorService_DragReorderPersists(t *testing.T) {
	persister := &fakePersister{}
	svc := newTestEditor(t, persister)
	user := uuid.New()
	ctx := context.Background()
	expandToSite(t, svc, user)

	view, err := svc.DragStart(ctx, user, 1, "asset_group_1")
	require.NoError(t, err)
	assert.True(t, view.Dragging)

	view, err = svc.DragMove(ctx, user, 1, "asset_group_2", 0)
	require.NoError(t, err)
	require.NotNil(t, view.Projection)
	assert.Equal(t, "site_1", view.Projection.ParentID)

	result, err := svc.DragEnd(ctx, user, 1)
	require.NoError(t, err)
	require.True(t, result.Moved)
	assert.False(t, result.ParentChanged)
	assert.Equal(t, []string{"company_1", "business_unit_1", "region_1", "site_1", "asset_group_2", "asset_group_1"}, itemIDs(result.View.Visible))
	assert.False(t, result.View.Dragging)

	require.NoError(t, svc.Wait(ctx))
	want := []models.ReorderRecord{
		{ID: 2, Type: models.EntityAssetGroup, OrderIndex: 0},
		{ID: 1, Type: models.EntityAssetGroup, OrderIndex: 1},
	}
	require.Len(t, persister.calls, 1)
	assert.Equal(t, want, persister.calls[0])
	assert.Equal(t, want, result.Payload)
}

func TestEditorService_PersistFailureKeepsMove(t *testing.T) {
	persister := &fakePersister{err: errors.New("connection reset")}
	svc := newTestEditor(t, persister)
	user := uuid.New()
	ctx := context.Background()
	expandToSite(t, svc, user)

	_, err := svc.DragStart(ctx, user, 1, "asset_group_1")
	require.NoError(t, err)
	_, err = svc.DragMove(ctx, user, 1, "asset_group_2", 0)
	require.NoError(t, err)
	result, err := svc.DragEnd(ctx, user, 1)
	require.NoError(t, err)
	require.True(t, result.Moved)
	require.NoError(t, svc.Wait(ctx))

	view, err := svc.View(ctx, user, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"company_1", "business_unit_1", "region_1", "site_1", "asset_group_2", "asset_group_1"}, itemIDs(view.Visible))
}

func TestEditorService_RejectedMove(t *testing.T) {
	persister := &fakePersister{}
	svc := newTestEditor(t, persister)
	user := uuid.New()
	ctx := context.Background()
	_, err := svc.Open(ctx, user, 1)
	require.NoError(t, err)
	for _, id := range []string{"business_unit_1", "region_1"} {
		_, err := svc.Toggle(ctx, user, 1, id)
		require.NoError(t, err)
	}

	_, err = svc.DragStart(ctx, user, 1, "site_1")
	require.NoError(t, err)
	_, err = svc.DragMove(ctx, user, 1, "region_1", -50)
	require.NoError(t, err)

	_, err = svc.DragEnd(ctx, user, 1)
	var rejected *domain.MoveRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, domain.ReasonInvalidParent, rejected.Reason)
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, svc.Wait(ctx))
	assert.Empty(t, persister.calls)

	view, err := svc.View(ctx, user, 1)
	require.NoError(t, err)
	assert.False(t, view.Dragging)
	assert.Equal(t, []string{"company_1", "business_unit_1", "region_1", "site_1"}, itemIDs(view.Visible))
}

func TestEditorService_LookupFailures(t *testing.T) {
	svc := newTestEditor(t, &fakePersister{})
	user := uuid.New()
	ctx := context.Background()

	_, err := svc.Toggle(ctx, user, 1, "region_99")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.DragStart(ctx, user, 1, "company_1")
	var rejected *domain.MoveRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, domain.ReasonRootNotMovable, rejected.Reason)

	_, err = svc.DragMove(ctx, user, 1, "business_unit_1", 0)
	assert.ErrorIs(t, err, domain.ErrValidation, "no drag in progress")

	_, err = svc.DragStart(ctx, user, 1, "business_unit_1")
	require.NoError(t, err)
	view, err := svc.DragMove(ctx, user, 1, "region_99", 0)
	require.NoError(t, err, "unknown hover target is ignored")
	assert.True(t, view.Dragging)

	view, err = svc.DragCancel(ctx, user, 1)
	require.NoError(t, err)
	assert.False(t, view.Dragging)

	_, err = svc.Open(ctx, user, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEditorService_Forbidden(t *testing.T) {
	repo := &fakeHierarchy{company: testCompany()}
	svc := NewEditorService(repo, nil, &fakeAuthorizer{denyEdit: true}, &fakePersister{}, nil, EditorConfig{IndentationWidth: 50}, discardLogger())

	_, err := svc.Open(context.Background(), uuid.New(), 1)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, svc.sessions)
}

func TestEditorService_IdleEviction(t *testing.T) {
	svc := newTestEditor(t, &fakePersister{})
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	first, second := uuid.New(), uuid.New()
	_, err := svc.Open(ctx, first, 1)
	require.NoError(t, err)
	assert.Len(t, svc.sessions, 1)

	now = now.Add(2 * time.Hour)
	_, err = svc.Open(ctx, second, 1)
	require.NoError(t, err)

	assert.Len(t, svc.sessions, 1)
	_, ok := svc.sessions[sessionKey{userID: second, companyID: 1}]
	assert.True(t, ok)
}

func TestEditorService_IndentationFromPreferences(t *testing.T) {
	repo := &fakeHierarchy{company: testCompany()}
	svc := NewEditorService(repo, nil, &fakeAuthorizer{}, &fakePersister{}, &fakePrefs{width: 20}, EditorConfig{
		IndentationWidth: 50,
	}, discardLogger())
	user := uuid.New()
	ctx := context.Background()
	expandToSite(t, svc, user)

	_, err := svc.DragStart(ctx, user, 1, "asset_group_2")
	require.NoError(t, err)
	view, err := svc.DragMove(ctx, user, 1, "asset_group_2", 20)
	require.NoError(t, err)

	require.NotNil(t, view.Projection)
	assert.Equal(t, 5, view.Projection.Depth, "20px is one level at the preferred width")
	assert.Equal(t, "asset_group_1", view.Projection.ParentID)
}
