package orgtree

import (
	"strings"

	models "vantage/internal/domain/models/orgtree"
)

// FlattenedItem is one row of the pre-order flat view of the tree
type FlattenedItem struct {
	ID         string            `json:"id"`
	EntityType models.EntityType `json:"entity_type"`
	Name       string            `json:"name"`
	ParentID   string            `json:"parent_id,omitempty"` // Empty for the root
	Depth      int               `json:"depth"`
	Index      int               `json:"index"` // Position among siblings
	ChildCount int               `json:"child_count"`
	Item       *TreeItem         `json:"-"`
}

// Flatten walks the tree depth-first and returns every item in display order:
// a parent is immediately followed by its children, before its next sibling.
func Flatten(items []*TreeItem) []FlattenedItem {
	out := make([]FlattenedItem, 0, countItems(items))
	return flatten(out, items, "", 0)
}

func flatten(acc []FlattenedItem, items []*TreeItem, parentID string, depth int) []FlattenedItem {
	for i, item := range items {
		acc = append(acc, FlattenedItem{
			ID:         item.ID,
			EntityType: item.EntityType,
			Name:       item.Name,
			ParentID:   parentID,
			Depth:      depth,
			Index:      i,
			ChildCount: len(item.Children),
			Item:       item,
		})
		acc = flatten(acc, item.Children, item.ID, depth+1)
	}
	return acc
}

func countItems(items []*TreeItem) int {
	n := len(items)
	for _, item := range items {
		n += countItems(item.Children)
	}
	return n
}

// BuildTree re-nests a flat list using parent links. Items whose parent is not
// in the list are dropped. Sibling order follows the flat order.
func BuildTree(flat []FlattenedItem) []*TreeItem {
	nodes := make(map[string]*TreeItem, len(flat))
	roots := []*TreeItem{}

	for _, f := range flat {
		node := &TreeItem{
			ID:         f.ID,
			EntityType: f.EntityType,
			Name:       f.Name,
			Depth:      f.Depth,
			Children:   []*TreeItem{},
		}
		if f.Item != nil {
			node.EntityID = f.Item.EntityID
			node.ReportsTo = f.Item.ReportsTo
			node.Entity = f.Item.Entity
		} else if _, entityID, err := DecodeID(f.ID); err == nil {
			node.EntityID = entityID
		}
		nodes[f.ID] = node

		if f.ParentID == "" {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[f.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		}
	}
	return roots
}

// FilterVisible keeps the items whose every ancestor is expanded.
// Roots are always visible.
func FilterVisible(flat []FlattenedItem, expanded map[string]bool) []FlattenedItem {
	parents := make(map[string]string, len(flat))
	for _, f := range flat {
		parents[f.ID] = f.ParentID
	}

	out := make([]FlattenedItem, 0, len(flat))
	for _, f := range flat {
		visible := true
		for ancestor := f.ParentID; ancestor != ""; ancestor = parents[ancestor] {
			if !expanded[ancestor] {
				visible = false
				break
			}
		}
		if visible {
			out = append(out, f)
		}
	}
	return out
}

// RemoveChildrenOf drops every descendant of the given items from a flat list
func RemoveChildrenOf(flat []FlattenedItem, ids ...string) []FlattenedItem {
	excluded := make(map[string]bool, len(ids))
	for _, id := range ids {
		excluded[id] = true
	}

	out := make([]FlattenedItem, 0, len(flat))
	for _, f := range flat {
		if f.ParentID != "" && excluded[f.ParentID] {
			if f.ChildCount > 0 {
				excluded[f.ID] = true
			}
			continue
		}
		out = append(out, f)
	}
	return out
}

func indexOf(flat []FlattenedItem, id string) int {
	for i := range flat {
		if flat[i].ID == id {
			return i
		}
	}
	return -1
}

// arrayMove returns a copy of items with the element at from moved to to
func arrayMove(items []FlattenedItem, from, to int) []FlattenedItem {
	out := make([]FlattenedItem, 0, len(items))
	moved := items[from]
	for i := range items {
		if i != from {
			out = append(out, items[i])
		}
	}
	out = append(out, FlattenedItem{})
	copy(out[to+1:], out[to:])
	out[to] = moved
	return out
}

// ParseExpanded turns a --expanded flag value into an expanded set. "all" expands
// every item, "none" nothing, "" the roots, anything else is a comma list.
func ParseExpanded(value string, flat []FlattenedItem) map[string]bool {
	expanded := make(map[string]bool)
	switch value {
	case "none":
	case "all":
		for _, f := range flat {
			expanded[f.ID] = true
		}
	case "":
		for _, f := range flat {
			if f.ParentID == "" {
				expanded[f.ID] = true
			}
		}
	default:
		for _, id := range strings.Split(value, ",") {
			if id = strings.TrimSpace(id); id != "" {
				expanded[id] = true
			}
		}
	}
	return expanded
}
