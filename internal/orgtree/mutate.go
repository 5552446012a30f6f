package orgtree

import (
	"fmt"

	models "vantage/internal/domain/models/orgtree"
)

// Anchor designates where a moved item goes among its new siblings:
// immediately before or after SiblingID. An empty or unknown SiblingID appends.
type Anchor struct {
	SiblingID string
	After     bool
}

// FindItem returns the item with the given ID anywhere in the tree
func FindItem(items []*TreeItem, id string) *TreeItem {
	for _, item := range items {
		if item.ID == id {
			return item
		}
		if found := FindItem(item.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// FindParent returns the parent of the item with the given ID, or nil when
// the item is a root or absent
func FindParent(items []*TreeItem, id string) *TreeItem {
	for _, item := range items {
		for _, child := range item.Children {
			if child.ID == id {
				return item
			}
		}
		if found := FindParent(item.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// RemoveItem detaches an item and its subtree. The returned tree shares every
// untouched subtree with the input; nodes on the path to the removed item are
// copied, so the input tree is left unchanged.
func RemoveItem(items []*TreeItem, id string) ([]*TreeItem, *TreeItem) {
	for i, item := range items {
		if item.ID == id {
			out := make([]*TreeItem, 0, len(items)-1)
			out = append(out, items[:i]...)
			out = append(out, items[i+1:]...)
			return out, item
		}

		children, removed := RemoveItem(item.Children, id)
		if removed == nil {
			continue
		}

		cp := *item
		cp.Children = children
		out := make([]*TreeItem, len(items))
		copy(out, items)
		out[i] = &cp
		return out, removed
	}
	return items, nil
}

// SetDepth rewrites the depth of an item and all its descendants, keeping
// relative depths within the subtree
func SetDepth(item *TreeItem, depth int) {
	item.Depth = depth
	for _, child := range item.Children {
		SetDepth(child, depth+1)
	}
}

// InsertItem places item among the children of parentID (or at root level
// when parentID is empty), copying nodes along the path. ok is false when the
// parent does not exist.
func InsertItem(items []*TreeItem, parentID string, item *TreeItem, anchor Anchor) ([]*TreeItem, bool) {
	if parentID == "" {
		return insertAt(items, item, anchor), true
	}

	for i, node := range items {
		if node.ID == parentID {
			cp := *node
			cp.Children = insertAt(node.Children, item, anchor)
			out := make([]*TreeItem, len(items))
			copy(out, items)
			out[i] = &cp
			return out, true
		}

		children, ok := InsertItem(node.Children, parentID, item, anchor)
		if !ok {
			continue
		}
		cp := *node
		cp.Children = children
		out := make([]*TreeItem, len(items))
		copy(out, items)
		out[i] = &cp
		return out, true
	}
	return items, false
}

func insertAt(siblings []*TreeItem, item *TreeItem, anchor Anchor) []*TreeItem {
	pos := len(siblings)
	if anchor.SiblingID != "" {
		for i, s := range siblings {
			if s.ID == anchor.SiblingID {
				pos = i
				if anchor.After {
					pos = i + 1
				}
				break
			}
		}
	}

	out := make([]*TreeItem, 0, len(siblings)+1)
	out = append(out, siblings[:pos]...)
	out = append(out, item)
	out = append(out, siblings[pos:]...)
	return out
}

// MoveItem applies an approved placement and returns the new tree. The moved
// subtree is cloned; only depths, the reporting-role back-reference and the
// position change. The input tree is not modified.
func MoveItem(items []*TreeItem, id string, placement Placement, anchor Anchor) ([]*TreeItem, error) {
	if FindItem(items, id) == nil {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}

	var parent *TreeItem
	if placement.ParentID != "" {
		if parent = FindItem(items, placement.ParentID); parent == nil {
			return nil, fmt.Errorf("%w: %s", ErrItemNotFound, placement.ParentID)
		}
	}

	pruned, removed := RemoveItem(items, id)
	moved := removed.Clone()

	depth := placement.Depth
	if parent != nil {
		depth = parent.Depth + 1
	}
	SetDepth(moved, depth)

	moved.ReportsTo = ""
	if parent != nil && parent.EntityType == models.EntityRole && moved.EntityType == models.EntityRole {
		moved.ReportsTo = parent.ID
	}

	if anchor.SiblingID == id {
		anchor = Anchor{}
	}
	out, ok := InsertItem(pruned, placement.ParentID, moved, anchor)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, placement.ParentID)
	}
	return out, nil
}
