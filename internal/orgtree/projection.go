package orgtree

import (
	"fmt"
	"math"
)

// Projection is the provisional destination of a drag, computed from pointer
// geometry alone. The validator may still clamp or reject it.
type Projection struct {
	Depth    int    `json:"depth"`
	MaxDepth int    `json:"max_depth"`
	MinDepth int    `json:"min_depth"`
	ParentID string `json:"parent_id,omitempty"`
}

// GetProjection computes where the active item would land if dropped over
// overID with the given horizontal offset. items is the visible flat list with
// the active item's descendants removed.
func GetProjection(items []FlattenedItem, activeID, overID string, dragOffset float64, indentationWidth int) (Projection, error) {
	if indentationWidth <= 0 {
		return Projection{}, fmt.Errorf("indentation width must be positive, got %d", indentationWidth)
	}

	activeIndex := indexOf(items, activeID)
	if activeIndex < 0 {
		return Projection{}, fmt.Errorf("%w: %s", ErrItemNotFound, activeID)
	}
	overIndex := indexOf(items, overID)
	if overIndex < 0 {
		return Projection{}, fmt.Errorf("%w: %s", ErrItemNotFound, overID)
	}

	activeItem := items[activeIndex]
	newItems := arrayMove(items, activeIndex, overIndex)

	dragDepth := jsRound(dragOffset / float64(indentationWidth))
	projected := activeItem.Depth + dragDepth

	maxDepth := 0
	if overIndex > 0 {
		maxDepth = newItems[overIndex-1].Depth + 1
	}
	minDepth := 0
	if overIndex+1 < len(newItems) {
		minDepth = newItems[overIndex+1].Depth
	}

	depth := projected
	if depth > maxDepth {
		depth = maxDepth
	}
	if depth < minDepth {
		depth = minDepth
	}
	if depth < 0 {
		depth = 0
	}

	parentID, _ := parentAt(newItems, overIndex, depth)
	return Projection{
		Depth:    depth,
		MaxDepth: maxDepth,
		MinDepth: minDepth,
		ParentID: parentID,
	}, nil
}

// parentAt resolves the parent of an item placed at index with the given depth
// in an already-reordered flat list. ok is false when no item above can parent
// that depth.
func parentAt(newItems []FlattenedItem, index, depth int) (string, bool) {
	if depth == 0 {
		return "", true
	}
	if index <= 0 {
		return "", false
	}

	prev := newItems[index-1]
	switch {
	case depth == prev.Depth:
		return prev.ParentID, prev.ParentID != ""
	case depth == prev.Depth+1:
		return prev.ID, true
	case depth > prev.Depth+1:
		return "", false
	}

	for i := index - 1; i >= 0; i-- {
		if newItems[i].Depth == depth-1 {
			return newItems[i].ID, true
		}
	}
	return "", false
}

// jsRound rounds half up, matching the pointer math of the web client
func jsRound(x float64) int {
	return int(math.Floor(x + 0.5))
}
