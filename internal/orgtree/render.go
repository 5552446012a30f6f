package orgtree

import (
	"fmt"
	"strings"
)

// Renderer draws a flattened tree with box-drawing characters.
//
// Example output:
//
//	Acme Mining [company]
//	├── Operations [business_unit]
//	│   └── North [region] (+2)
//	└── Corporate [business_unit]
type Renderer struct {
	// ShowIDs appends the item ID to each line
	ShowIDs bool
}

// NewRenderer creates a Renderer
func NewRenderer(showIDs bool) *Renderer {
	return &Renderer{ShowIDs: showIDs}
}

// Render converts a flat list in display order into a tree string. Items may
// be a visible subset; an item with children none of which are listed is
// marked with its hidden child count.
func (r *Renderer) Render(items []FlattenedItem) string {
	if len(items) == 0 {
		return ""
	}

	listed := make(map[string]int, len(items))
	for _, item := range items {
		if item.ParentID != "" {
			listed[item.ParentID]++
		}
	}

	var result strings.Builder

	// Depths that still have siblings further down need a continuation line
	continuations := make(map[int]bool)

	for i, item := range items {
		isLast := r.isLast(items, i)
		result.WriteString(r.buildPrefix(item.Depth, isLast, continuations))
		result.WriteString(item.Name)
		fmt.Fprintf(&result, " [%s]", item.EntityType)

		if r.ShowIDs {
			fmt.Fprintf(&result, " %s", item.ID)
		}
		if item.ChildCount > 0 && listed[item.ID] == 0 {
			fmt.Fprintf(&result, " (+%d)", item.ChildCount)
		}

		if i < len(items)-1 {
			result.WriteString("\n")
		}

		if isLast {
			delete(continuations, item.Depth)
		} else {
			continuations[item.Depth] = true
		}
	}

	return result.String()
}

// isLast reports whether no later sibling of items[i] is listed
func (r *Renderer) isLast(items []FlattenedItem, i int) bool {
	for j := i + 1; j < len(items); j++ {
		if items[j].Depth < items[i].Depth {
			return true
		}
		if items[j].Depth == items[i].Depth {
			return items[j].ParentID != items[i].ParentID
		}
	}
	return true
}

func (r *Renderer) buildPrefix(depth int, isLast bool, continuations map[int]bool) string {
	if depth == 0 {
		return ""
	}

	var prefix strings.Builder
	for d := 1; d < depth; d++ {
		if continuations[d] {
			prefix.WriteString("│   ")
		} else {
			prefix.WriteString("    ")
		}
	}

	if isLast {
		prefix.WriteString("└── ")
	} else {
		prefix.WriteString("├── ")
	}
	return prefix.String()
}
