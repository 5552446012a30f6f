package orgtree

import (
	"fmt"

	models "vantage/internal/domain/models/orgtree"
)

// BuildReorderPayload diffs the trees before and after a move of activeID and
// returns the records needed to persist it: every child of the new parent with
// its dense order_index, and when the parent changed, every remaining child of
// the old parent as well. Only the moved record carries parent fields, and
// only when its parent changed.
func BuildReorderPayload(oldTree, newTree []*TreeItem, activeID string) ([]models.ReorderRecord, error) {
	if FindItem(oldTree, activeID) == nil {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, activeID)
	}
	if FindItem(newTree, activeID) == nil {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, activeID)
	}

	oldParent := FindParent(oldTree, activeID)
	newParent := FindParent(newTree, activeID)
	if newParent == nil {
		return nil, fmt.Errorf("%s has no parent after the move", activeID)
	}
	parentChanged := oldParent == nil || oldParent.ID != newParent.ID

	records := make([]models.ReorderRecord, 0, len(newParent.Children))
	for i, sibling := range newParent.Children {
		record := models.ReorderRecord{
			ID:         sibling.EntityID,
			Type:       sibling.EntityType,
			OrderIndex: i,
		}
		if sibling.ID == activeID && parentChanged {
			parentID := newParent.EntityID
			parentType := newParent.EntityType
			record.ParentID = &parentID
			record.ParentType = &parentType
		}
		records = append(records, record)
	}

	if !parentChanged || oldParent == nil {
		return records, nil
	}

	// The old parent's siblings come from the new tree so they reflect the removal
	remaining := FindItem(newTree, oldParent.ID)
	if remaining == nil {
		return records, nil
	}
	for i, sibling := range remaining.Children {
		records = append(records, models.ReorderRecord{
			ID:         sibling.EntityID,
			Type:       sibling.EntityType,
			OrderIndex: i,
		})
	}
	return records, nil
}
