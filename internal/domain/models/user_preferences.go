package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JSONMap is a type alias for JSONB columns
type JSONMap map[string]interface{}

// Preference namespaces inside the JSONB column
const (
	NamespaceSelection = "selection"
	NamespaceTree      = "tree"
	NamespaceUI        = "ui"
)

// UserPreferences is the durable, per-user state of the org-tree editor.
// Everything ephemeral (drag state, the working tree) lives in the editor
// session instead and is never written here.
type UserPreferences struct {
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Preferences JSONMap   `json:"preferences" db:"preferences"` // Namespaced JSONB: {selection, tree, ui}
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// SelectionPreferences is what the user last had selected
type SelectionPreferences struct {
	CompanyID  *int64  `json:"company_id"`   // Pointer to allow null
	TreeItemID *string `json:"tree_item_id"` // Encoded tree item ID, e.g. "site_12"
}

// TreePreferences configures the tree editor
type TreePreferences struct {
	IndentationWidth *int  `json:"indentation_width"` // Pointer to allow null
	ShowIDs          *bool `json:"show_ids"`
}

// UIPreferences represents the ui namespace in preferences
type UIPreferences struct {
	Theme       string `json:"theme"` // "light", "dark", "auto"
	CompactMode *bool  `json:"compact_mode"`
}

// GetSelection extracts the selection namespace
func (up *UserPreferences) GetSelection() (*SelectionPreferences, error) {
	var sel SelectionPreferences
	if err := up.decode(NamespaceSelection, &sel); err != nil {
		return nil, err
	}
	return &sel, nil
}

// GetTree extracts the tree namespace
func (up *UserPreferences) GetTree() (*TreePreferences, error) {
	var tree TreePreferences
	if err := up.decode(NamespaceTree, &tree); err != nil {
		return nil, err
	}
	return &tree, nil
}

// GetUI extracts the ui namespace, defaulting to the light theme
func (up *UserPreferences) GetUI() (*UIPreferences, error) {
	ui := UIPreferences{Theme: "light"}
	if err := up.decode(NamespaceUI, &ui); err != nil {
		return nil, err
	}
	return &ui, nil
}

// SetNamespace replaces a whole namespace with the JSON form of value
func (up *UserPreferences) SetNamespace(namespace string, value interface{}) error {
	if up.Preferences == nil {
		up.Preferences = JSONMap{}
	}

	// Round-trip through JSON so the map holds plain JSON types, matching
	// what comes back from the JSONB column
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	up.Preferences[namespace] = m
	return nil
}

// decode re-marshals a namespace into dest; a missing namespace leaves dest as is
func (up *UserPreferences) decode(namespace string, dest interface{}) error {
	if up.Preferences == nil {
		return nil
	}
	raw, ok := up.Preferences[namespace]
	if !ok || raw == nil {
		return nil
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// OptionalTreeItem tracks tri-state semantics for selection updates (RFC 7396 PATCH).
// This is transport-agnostic (no JSON tags) - handler maps from httputil.OptionalString.
//   - Present=false: field absent from request (don't change)
//   - Present=true, Value=nil: field is null (clear)
//   - Present=true, Value=&"site_3": select that item
type OptionalTreeItem struct {
	Present bool
	Value   *string
}

// UpdatePreferencesRequest represents the request to update user preferences.
// Namespaces are replaced whole; the selection is patched field by field.
type UpdatePreferencesRequest struct {
	SelectedCompanyID *int64           // Set when present; the tree item is cleared when the company changes
	SelectedTreeItem  OptionalTreeItem // Tri-state, mapped from the handler DTO
	Tree              *TreePreferences
	UI                *UIPreferences
}
