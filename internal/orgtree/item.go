// Package orgtree is the org-tree editing engine: it adapts a company
// hierarchy into generic tree items, flattens them for display and drag math,
// validates drag-and-drop moves against the tier rules, applies approved moves
// copy-on-write, and diffs the result into a minimal reorder payload.
//
// Nothing in this package performs I/O. A Session holds the ephemeral editing
// state of one user and is not safe for concurrent use.
package orgtree

import (
	"errors"

	models "vantage/internal/domain/models/orgtree"
)

// ErrItemNotFound is returned when an item ID is not present in the tree
var ErrItemNotFound = errors.New("tree item not found")

// TreeItem is the uniform node shape every tier is adapted into.
// Children order is the sibling order and maps to order_index.
type TreeItem struct {
	ID         string            `json:"id"`
	EntityType models.EntityType `json:"entity_type"`
	EntityID   int64             `json:"entity_id"`
	Name       string            `json:"name"`
	Depth      int               `json:"depth"`
	ReportsTo  string            `json:"reports_to,omitempty"` // Manager role item ID, reporting roles only
	Entity     any               `json:"entity"`               // Source entity, treated as read-only
	Children   []*TreeItem       `json:"children"`
}

// Clone deep-copies the item and its subtree. Entity payloads are shared,
// they are never written through a TreeItem.
func (t *TreeItem) Clone() *TreeItem {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Children = make([]*TreeItem, len(t.Children))
	for i, child := range t.Children {
		cp.Children[i] = child.Clone()
	}
	return &cp
}

// SharedRoleID returns the shared role reference of a role item
func (t *TreeItem) SharedRoleID() (int64, bool) {
	role, ok := t.Entity.(*models.Role)
	if !ok || role.SharedRoleID == nil {
		return 0, false
	}
	return *role.SharedRoleID, true
}

// IsReportingRole reports whether the item is a role nested under another role.
// ReportsTo follows the item through moves; the entity's own back-reference
// reflects the last loaded state only.
func (t *TreeItem) IsReportingRole() bool {
	return t.EntityType == models.EntityRole && t.ReportsTo != ""
}

// Placement is the validated destination of a move
type Placement struct {
	Depth    int    `json:"depth"`
	ParentID string `json:"parent_id,omitempty"`
}
