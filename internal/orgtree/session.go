package orgtree

import (
	"errors"
	"fmt"
	"sort"

	"vantage/internal/domain"
	models "vantage/internal/domain/models/orgtree"
)

// Session is the ephemeral editing state of one user on one company tree:
// the current tree, the expanded set and the in-flight drag. It is never
// serialized and is discarded whenever the upstream tree is reloaded.
type Session struct {
	validator        *Validator
	indentationWidth int

	tree     []*TreeItem
	expanded map[string]bool
	loaded   bool
	drag     *dragState
}

// dragState lives from DragStart to DragEnd or DragCancel
type dragState struct {
	activeID   string
	overID     string
	offsetLeft float64
	projection *Projection

	// items is the visible flat list at drag start, without the active subtree
	items []FlattenedItem

	// collapsed records that DragStart collapsed the active item
	collapsed bool
}

// MoveResult describes the outcome of a drag end
type MoveResult struct {
	Moved         bool                   `json:"moved"`
	ActiveID      string                 `json:"active_id,omitempty"`
	Placement     Placement              `json:"placement"`
	ParentChanged bool                   `json:"parent_changed"`
	Payload       []models.ReorderRecord `json:"payload,omitempty"`
}

// NewSession creates an empty session. Call Load before anything else.
func NewSession(v *Validator, indentationWidth int) *Session {
	if v == nil {
		v = NewValidator(nil)
	}
	return &Session{
		validator:        v,
		indentationWidth: indentationWidth,
		tree:             []*TreeItem{},
		expanded:         make(map[string]bool),
	}
}

// Load rebuilds the tree from a company hierarchy. Expanded IDs that still
// exist survive the rebuild; on first load the root is expanded. Any drag in
// progress is dropped.
func (s *Session) Load(company *models.Company) {
	s.tree = Adapt(company)
	s.drag = nil

	existing := make(map[string]bool)
	for _, f := range Flatten(s.tree) {
		existing[f.ID] = true
	}
	for id := range s.expanded {
		if !existing[id] {
			delete(s.expanded, id)
		}
	}

	if !s.loaded {
		for _, root := range s.tree {
			s.expanded[root.ID] = true
		}
		s.loaded = true
	}
}

// Tree returns the current tree. Callers must not modify it.
func (s *Session) Tree() []*TreeItem {
	return s.tree
}

// Flattened returns every item in display order, ignoring expansion
func (s *Session) Flattened() []FlattenedItem {
	return Flatten(s.tree)
}

// Visible returns the items whose ancestors are all expanded
func (s *Session) Visible() []FlattenedItem {
	return FilterVisible(Flatten(s.tree), s.expanded)
}

// Toggle flips the expansion of an item and returns the new state
func (s *Session) Toggle(id string) (bool, error) {
	if FindItem(s.tree, id) == nil {
		return false, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	if s.expanded[id] {
		delete(s.expanded, id)
		return false, nil
	}
	s.expanded[id] = true
	return true, nil
}

// Expand marks items as expanded. Unknown IDs are ignored.
func (s *Session) Expand(ids ...string) {
	for _, id := range ids {
		if FindItem(s.tree, id) != nil {
			s.expanded[id] = true
		}
	}
}

// ExpandAll expands every item that has children
func (s *Session) ExpandAll() {
	for _, f := range Flatten(s.tree) {
		if f.ChildCount > 0 {
			s.expanded[f.ID] = true
		}
	}
}

// Collapse removes items from the expanded set
func (s *Session) Collapse(ids ...string) {
	for _, id := range ids {
		delete(s.expanded, id)
	}
}

// Expanded returns the expanded IDs, sorted
func (s *Session) Expanded() []string {
	ids := make([]string, 0, len(s.expanded))
	for id := range s.expanded {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dragging reports whether a drag is in progress
func (s *Session) Dragging() bool {
	return s.drag != nil
}

// DragStart begins dragging activeID. The company root is rejected. An
// expanded active item is collapsed for the duration of the drag and
// re-expanded on cancel.
func (s *Session) DragStart(activeID string) error {
	active := FindItem(s.tree, activeID)
	if active == nil {
		return fmt.Errorf("%w: %s", ErrItemNotFound, activeID)
	}
	if active.EntityType == models.EntityCompany {
		return &domain.MoveRejectedError{
			Reason:  domain.ReasonRootNotMovable,
			Message: "The company cannot be moved",
			ItemID:  active.ID,
		}
	}

	drag := &dragState{activeID: activeID, overID: activeID}
	if s.expanded[activeID] {
		delete(s.expanded, activeID)
		drag.collapsed = true
	}
	drag.items = RemoveChildrenOf(s.Visible(), activeID)
	s.drag = drag
	return nil
}

// DragMove records the hovered item and horizontal offset and returns the
// resulting projection
func (s *Session) DragMove(overID string, offsetLeft float64) (Projection, error) {
	if s.drag == nil {
		return Projection{}, errors.New("no drag in progress")
	}

	projection, err := GetProjection(s.drag.items, s.drag.activeID, overID, offsetLeft, s.indentationWidth)
	if err != nil {
		return Projection{}, err
	}

	s.drag.overID = overID
	s.drag.offsetLeft = offsetLeft
	s.drag.projection = &projection
	return projection, nil
}

// Projection returns the current projection, if a drag has moved at all
func (s *Session) Projection() (Projection, bool) {
	if s.drag == nil || s.drag.projection == nil {
		return Projection{}, false
	}
	return *s.drag.projection, true
}

// DragEnd finishes the drag: validate, mutate, diff. On success the new tree
// replaces the current one before the result is returned; persisting the
// payload is up to the caller. A rejection leaves the tree untouched and
// returns the *domain.MoveRejectedError. Unknown IDs end the drag as a no-op.
func (s *Session) DragEnd() (*MoveResult, error) {
	drag := s.drag
	s.drag = nil
	if drag == nil {
		return &MoveResult{}, nil
	}

	projection := drag.projection
	if projection == nil {
		p, err := GetProjection(drag.items, drag.activeID, drag.overID, drag.offsetLeft, s.indentationWidth)
		if err != nil {
			return noMove(drag.activeID, err)
		}
		projection = &p
	}

	placement, err := s.validator.ValidateMove(MoveRequest{
		Tree:       s.tree,
		Items:      drag.items,
		ActiveID:   drag.activeID,
		OverID:     drag.overID,
		Projection: *projection,
	})
	if err != nil {
		return noMove(drag.activeID, err)
	}

	oldParent := FindParent(s.tree, drag.activeID)
	oldIndex := childIndex(oldParent, drag.activeID)

	anchor := resolveAnchor(drag.items, drag.activeID, drag.overID, placement.ParentID)
	newTree, err := MoveItem(s.tree, drag.activeID, placement, anchor)
	if err != nil {
		return noMove(drag.activeID, err)
	}

	newParent := FindParent(newTree, drag.activeID)
	parentChanged := oldParent == nil || newParent == nil || oldParent.ID != newParent.ID
	if !parentChanged && childIndex(newParent, drag.activeID) == oldIndex {
		return &MoveResult{ActiveID: drag.activeID, Placement: placement}, nil
	}

	payload, err := BuildReorderPayload(s.tree, newTree, drag.activeID)
	if err != nil {
		return noMove(drag.activeID, err)
	}

	s.tree = newTree
	return &MoveResult{
		Moved:         true,
		ActiveID:      drag.activeID,
		Placement:     placement,
		ParentChanged: parentChanged,
		Payload:       payload,
	}, nil
}

// DragCancel abandons the drag and restores the expansion the drag changed
func (s *Session) DragCancel() {
	if s.drag == nil {
		return
	}
	if s.drag.collapsed {
		s.expanded[s.drag.activeID] = true
	}
	s.drag = nil
}

// noMove turns lookup failures into a silent no-op and passes everything
// else through
func noMove(activeID string, err error) (*MoveResult, error) {
	if errors.Is(err, ErrItemNotFound) {
		return &MoveResult{ActiveID: activeID}, nil
	}
	return nil, err
}

func childIndex(parent *TreeItem, id string) int {
	if parent == nil {
		return -1
	}
	for i, child := range parent.Children {
		if child.ID == id {
			return i
		}
	}
	return -1
}

// resolveAnchor picks the sibling the moved item is inserted next to. When
// the hovered item ends up as a sibling it is the anchor: after it when moving
// down the list, before it when moving up. Otherwise the nearest item with the
// same parent in the projected order is used.
func resolveAnchor(items []FlattenedItem, activeID, overID, parentID string) Anchor {
	activeIndex := indexOf(items, activeID)
	overIndex := indexOf(items, overID)
	if activeIndex < 0 || overIndex < 0 {
		return Anchor{}
	}

	if overID != activeID && items[overIndex].ParentID == parentID {
		return Anchor{SiblingID: overID, After: overIndex > activeIndex}
	}

	projected := arrayMove(items, activeIndex, overIndex)
	for i := overIndex - 1; i >= 0; i-- {
		if projected[i].ParentID == parentID {
			return Anchor{SiblingID: projected[i].ID, After: true}
		}
	}
	for i := overIndex + 1; i < len(projected); i++ {
		if projected[i].ParentID == parentID {
			return Anchor{SiblingID: projected[i].ID}
		}
	}
	return Anchor{}
}
