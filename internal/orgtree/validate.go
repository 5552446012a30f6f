package orgtree

import (
	"errors"
	"fmt"
	"strings"

	"vantage/internal/domain"
	models "vantage/internal/domain/models/orgtree"
	"vantage/internal/hierarchy"
)

// Validator gates drag-and-drop moves against the tier rules
type Validator struct {
	tiers *hierarchy.Registry
}

// NewValidator creates a validator over the given tier registry
func NewValidator(tiers *hierarchy.Registry) *Validator {
	if tiers == nil {
		tiers = hierarchy.Default()
	}
	return &Validator{tiers: tiers}
}

// MoveRequest carries everything needed to judge one drop
type MoveRequest struct {
	Tree       []*TreeItem     // Full nested tree
	Items      []FlattenedItem // Flat list the projection was computed on
	ActiveID   string
	OverID     string
	Projection Projection
}

// ValidateMove applies the move rules in order: root lock, depth cap, parent
// type, duplicate shared role. It returns the final placement, which may be
// clamped shallower than the projection, or a *domain.MoveRejectedError.
func (v *Validator) ValidateMove(req MoveRequest) (Placement, error) {
	active := FindItem(req.Tree, req.ActiveID)
	if active == nil {
		return Placement{}, fmt.Errorf("%w: %s", ErrItemNotFound, req.ActiveID)
	}

	// 1. The root never moves
	if active.EntityType == models.EntityCompany {
		return Placement{}, &domain.MoveRejectedError{
			Reason:  domain.ReasonRootNotMovable,
			Message: "The company cannot be moved",
			ItemID:  active.ID,
		}
	}

	// 2. Depth cap
	placement, err := v.clampDepth(req, active)
	if err != nil {
		return Placement{}, err
	}

	// 3. Parent type
	target, err := v.checkParent(req.Tree, active, placement)
	if err != nil {
		return Placement{}, err
	}

	// 4. Duplicate shared role within the target work group
	if err := v.checkDuplicateRole(req.Tree, active, target); err != nil {
		return Placement{}, err
	}

	placement.Depth = target.Depth + 1
	return placement, nil
}

// clampDepth lowers the projected depth to the tier maximum and re-derives the
// parent at the clamped depth, stepping shallower until a parent exists.
func (v *Validator) clampDepth(req MoveRequest, active *TreeItem) (Placement, error) {
	placement := Placement{Depth: req.Projection.Depth, ParentID: req.Projection.ParentID}

	maxDepth := v.tiers.MaxDepth(active.EntityType)
	if placement.Depth <= maxDepth {
		return placement, nil
	}

	activeIndex := indexOf(req.Items, req.ActiveID)
	overIndex := indexOf(req.Items, req.OverID)
	if activeIndex < 0 || overIndex < 0 {
		return Placement{}, fmt.Errorf("%w: %s", ErrItemNotFound, req.OverID)
	}
	newItems := arrayMove(req.Items, activeIndex, overIndex)

	for depth := maxDepth; depth >= 0; depth-- {
		if parentID, ok := parentAt(newItems, overIndex, depth); ok {
			return Placement{Depth: depth, ParentID: parentID}, nil
		}
	}

	return Placement{}, &domain.MoveRejectedError{
		Reason:  domain.ReasonDepthExceeded,
		Message: fmt.Sprintf("%s %q cannot be placed that deep", v.tiers.Label(active.EntityType), active.Name),
		ItemID:  active.ID,
	}
}

func (v *Validator) checkParent(tree []*TreeItem, active *TreeItem, placement Placement) (*TreeItem, error) {
	label := v.tiers.Label(active.EntityType)

	if placement.ParentID == "" {
		return nil, &domain.MoveRejectedError{
			Reason:  domain.ReasonInvalidParent,
			Message: fmt.Sprintf("%s %q cannot be placed at the top level", label, active.Name),
			ItemID:  active.ID,
		}
	}

	target := FindItem(tree, placement.ParentID)
	if target == nil {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, placement.ParentID)
	}
	if target.ID == active.ID || FindItem(active.Children, target.ID) != nil {
		return nil, &domain.MoveRejectedError{
			Reason:        domain.ReasonInvalidParent,
			Message:       fmt.Sprintf("%s %q cannot be placed inside itself", label, active.Name),
			ItemID:        active.ID,
			ConflictingID: target.ID,
		}
	}

	if !v.tiers.AllowsParent(active.EntityType, target.EntityType) {
		return nil, &domain.MoveRejectedError{
			Reason:        domain.ReasonInvalidParent,
			Message:       fmt.Sprintf("%s %q can only be placed under a %s", label, active.Name, v.parentLabels(active.EntityType)),
			ItemID:        active.ID,
			ConflictingID: target.ID,
		}
	}

	if active.EntityType == models.EntityRole && target.EntityType == models.EntityRole {
		if len(active.Children) > 0 {
			return nil, &domain.MoveRejectedError{
				Reason:        domain.ReasonRoleNesting,
				Message:       fmt.Sprintf("Role %q has reporting roles and cannot report to another role", active.Name),
				ItemID:        active.ID,
				ConflictingID: target.ID,
			}
		}
		if isReportingRole(tree, target) {
			return nil, &domain.MoveRejectedError{
				Reason:        domain.ReasonRoleNesting,
				Message:       fmt.Sprintf("Role %q already reports to another role and cannot have reporting roles", target.Name),
				ItemID:        active.ID,
				ConflictingID: target.ID,
			}
		}
	}

	return target, nil
}

func (v *Validator) checkDuplicateRole(tree []*TreeItem, active, target *TreeItem) error {
	if active.EntityType != models.EntityRole {
		return nil
	}
	sharedID, ok := active.SharedRoleID()
	if !ok {
		return nil
	}

	workGroup := target
	if target.EntityType == models.EntityRole {
		workGroup = FindParent(tree, target.ID)
	}
	if workGroup == nil || workGroup.EntityType != models.EntityWorkGroup {
		return nil
	}

	if conflict := findSharedRole(workGroup, sharedID, active.ID); conflict != nil {
		return &domain.MoveRejectedError{
			Reason:        domain.ReasonDuplicateRole,
			Message:       fmt.Sprintf("Work group %q already contains the role %q", workGroup.Name, conflict.Name),
			ItemID:        active.ID,
			ConflictingID: conflict.ID,
		}
	}
	return nil
}

// findSharedRole scans a work group's roles and their direct reports
func findSharedRole(workGroup *TreeItem, sharedID int64, excludeID string) *TreeItem {
	for _, role := range workGroup.Children {
		if role.ID != excludeID {
			if id, ok := role.SharedRoleID(); ok && id == sharedID {
				return role
			}
		}
		for _, report := range role.Children {
			if report.ID == excludeID {
				continue
			}
			if id, ok := report.SharedRoleID(); ok && id == sharedID {
				return report
			}
		}
	}
	return nil
}

// isReportingRole checks the live tree position as well as the adapted flag
func isReportingRole(tree []*TreeItem, role *TreeItem) bool {
	if role.IsReportingRole() {
		return true
	}
	parent := FindParent(tree, role.ID)
	return parent != nil && parent.EntityType == models.EntityRole
}

func (v *Validator) parentLabels(t models.EntityType) string {
	parents := v.tiers.Parents(t)
	labels := make([]string, 0, len(parents))
	for _, p := range parents {
		labels = append(labels, strings.ToLower(v.tiers.Label(p)))
	}
	return strings.Join(labels, " or ")
}

// ValidateTree checks the structural invariants of a whole tree: parent tiers,
// depth caps, role nesting and shared role uniqueness per work group.
// All violations are returned joined.
func (v *Validator) ValidateTree(tree []*TreeItem) error {
	var errs []error

	if len(tree) != 1 {
		errs = append(errs, fmt.Errorf("tree must have exactly one root, got %d", len(tree)))
	}
	for _, root := range tree {
		if root.EntityType != models.EntityCompany {
			errs = append(errs, fmt.Errorf("root %s must be a company", root.ID))
		}
	}

	seen := make(map[string]bool)
	for _, f := range Flatten(tree) {
		if seen[f.ID] {
			errs = append(errs, fmt.Errorf("duplicate item id %s", f.ID))
		}
		seen[f.ID] = true

		if maxDepth := v.tiers.MaxDepth(f.EntityType); f.Depth > maxDepth {
			errs = append(errs, fmt.Errorf("%s at depth %d exceeds max depth %d", f.ID, f.Depth, maxDepth))
		}
		if f.ParentID == "" {
			continue
		}

		parent := FindItem(tree, f.ParentID)
		if parent == nil {
			continue
		}
		if !v.tiers.AllowsParent(f.EntityType, parent.EntityType) {
			errs = append(errs, fmt.Errorf("%s cannot be a child of %s", f.ID, parent.ID))
		}
		if f.EntityType == models.EntityRole && parent.EntityType == models.EntityRole && f.ChildCount > 0 {
			errs = append(errs, fmt.Errorf("reporting role %s cannot have reporting roles", f.ID))
		}
		if f.EntityType == models.EntityWorkGroup {
			errs = append(errs, duplicateRoles(f.Item)...)
		}
	}

	return errors.Join(errs...)
}

func duplicateRoles(workGroup *TreeItem) []error {
	var errs []error
	bySharedID := make(map[int64]string)
	check := func(role *TreeItem) {
		id, ok := role.SharedRoleID()
		if !ok {
			return
		}
		if first, dup := bySharedID[id]; dup {
			errs = append(errs, fmt.Errorf("%s duplicates shared role %d of %s in %s", role.ID, id, first, workGroup.ID))
			return
		}
		bySharedID[id] = role.ID
	}
	for _, role := range workGroup.Children {
		check(role)
		for _, report := range role.Children {
			check(report)
		}
	}
	return errs
}
