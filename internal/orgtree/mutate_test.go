package orgtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vantage/internal/hierarchy"
)

// assertDepthInvariant checks every node sits one below its parent and within
// its tier cap
func assertDepthInvariant(t *testing.T, tree []*TreeItem) {
	t.Helper()
	tiers := hierarchy.Default()

	var walk func(items []*TreeItem, depth int)
	walk = func(items []*TreeItem, depth int) {
		for _, item := range items {
			assert.Equal(t, depth, item.Depth, item.ID)
			assert.LessOrEqual(t, item.Depth, tiers.MaxDepth(item.EntityType), item.ID)
			walk(item.Children, depth+1)
		}
	}
	walk(tree, 0)
}

func TestRemoveItem_CopyOnWrite(t *testing.T) {
	tree := Adapt(testCompany())
	wg := FindItem(tree, "work_group_10")
	untouched := FindItem(tree, "asset_group_2")

	pruned, removed := RemoveItem(tree, "role_1")
	require.NotNil(t, removed)
	assert.Equal(t, "role_1", removed.ID)

	assert.Equal(t, []string{"role_1", "role_3"}, childIDs(wg), "original must be unchanged")
	assert.Equal(t, []string{"role_3"}, childIDs(FindItem(pruned, "work_group_10")))
	assert.Same(t, untouched, FindItem(pruned, "asset_group_2"), "untouched subtrees are shared")
	assert.Nil(t, FindItem(pruned, "role_2"))
}

func TestRemoveItem_Missing(t *testing.T) {
	tree := Adapt(testCompany())
	got, removed := RemoveItem(tree, "role_99")
	assert.Nil(t, removed)
	assert.Equal(t, tree, got)
}

func TestInsertItem(t *testing.T) {
	tree := Adapt(testCompany())
	item := &TreeItem{ID: "role_50", Children: []*TreeItem{}}

	tests := []struct {
		name   string
		anchor Anchor
		want   []string
	}{
		{"before", Anchor{SiblingID: "role_31"}, []string{"role_30", "role_50", "role_31", "role_32"}},
		{"after", Anchor{SiblingID: "role_31", After: true}, []string{"role_30", "role_31", "role_50", "role_32"}},
		{"after last", Anchor{SiblingID: "role_32", After: true}, []string{"role_30", "role_31", "role_32", "role_50"}},
		{"unknown anchor appends", Anchor{SiblingID: "role_1"}, []string{"role_30", "role_31", "role_32", "role_50"}},
		{"no anchor appends", Anchor{}, []string{"role_30", "role_31", "role_32", "role_50"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := InsertItem(tree, "work_group_13", item, tt.anchor)
			require.True(t, ok)
			assert.Equal(t, tt.want, childIDs(FindItem(got, "work_group_13")))
			assert.Len(t, FindItem(tree, "work_group_13").Children, 3, "original must be unchanged")
		})
	}

	_, ok := InsertItem(tree, "work_group_99", item, Anchor{})
	assert.False(t, ok)
}

func TestMoveItem_Reparent(t *testing.T) {
	tree := Adapt(testCompany())
	before := FindItem(tree, "work_group_11")

	got, err := MoveItem(tree, "work_group_11", Placement{Depth: 5, ParentID: "asset_group_2"}, Anchor{SiblingID: "work_group_13", After: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"work_group_10"}, childIDs(FindItem(got, "asset_group_1")))
	assert.Equal(t, []string{"work_group_12", "work_group_13", "work_group_11"}, childIDs(FindItem(got, "asset_group_2")))

	moved := FindItem(got, "work_group_11")
	assert.NotSame(t, before, moved, "moved subtree is a clone")
	assert.Same(t, before.Entity, moved.Entity, "entity payload is preserved")
	assert.Equal(t, []string{"role_4"}, childIDs(moved))

	assert.Equal(t, []string{"work_group_10", "work_group_11"}, childIDs(FindItem(tree, "asset_group_1")), "original must be unchanged")
	assertDepthInvariant(t, got)
}

func TestMoveItem_RewritesDepthsAndReportsTo(t *testing.T) {
	tree := Adapt(testCompany())

	got, err := MoveItem(tree, "role_3", Placement{Depth: 7, ParentID: "role_1"}, Anchor{SiblingID: "role_2", After: true})
	require.NoError(t, err)

	moved := FindItem(got, "role_3")
	assert.Equal(t, 7, moved.Depth)
	assert.Equal(t, "role_1", moved.ReportsTo)
	assert.True(t, moved.IsReportingRole())
	assert.Equal(t, "", FindItem(tree, "role_3").ReportsTo)

	got, err = MoveItem(got, "role_2", Placement{Depth: 6, ParentID: "work_group_10"}, Anchor{})
	require.NoError(t, err)
	promoted := FindItem(got, "role_2")
	assert.Equal(t, 6, promoted.Depth)
	assert.False(t, promoted.IsReportingRole())

	assertDepthInvariant(t, got)
}

func TestMoveItem_DepthInvariantAcrossMoves(t *testing.T) {
	moves := []struct {
		id        string
		placement Placement
		anchor    Anchor
	}{
		{"site_1", Placement{ParentID: "region_2"}, Anchor{SiblingID: "site_2"}},
		{"region_1", Placement{ParentID: "business_unit_2"}, Anchor{}},
		{"asset_group_2", Placement{ParentID: "site_2"}, Anchor{}},
		{"role_5", Placement{ParentID: "role_30"}, Anchor{}},
		{"work_group_13", Placement{ParentID: "asset_group_1"}, Anchor{SiblingID: "work_group_10"}},
	}

	tree := Adapt(testCompany())
	for _, m := range moves {
		var err error
		tree, err = MoveItem(tree, m.id, m.placement, m.anchor)
		require.NoError(t, err, m.id)
		assertDepthInvariant(t, tree)
	}

	assert.Equal(t, []string{"work_group_13", "work_group_10", "work_group_11"}, childIDs(FindItem(tree, "asset_group_1")))
	assert.Equal(t, "role_30", FindItem(tree, "role_5").ReportsTo)
}

func TestMoveItem_Missing(t *testing.T) {
	tree := Adapt(testCompany())

	_, err := MoveItem(tree, "role_99", Placement{ParentID: "work_group_10"}, Anchor{})
	assert.ErrorIs(t, err, ErrItemNotFound)

	_, err = MoveItem(tree, "role_3", Placement{ParentID: "work_group_99"}, Anchor{})
	assert.ErrorIs(t, err, ErrItemNotFound)
}
