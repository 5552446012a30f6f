package orgtree

import "time"

// EntityType tags a node with its hierarchy tier
type EntityType string

const (
	EntityCompany      EntityType = "company"
	EntityBusinessUnit EntityType = "business_unit"
	EntityRegion       EntityType = "region"
	EntitySite         EntityType = "site"
	EntityAssetGroup   EntityType = "asset_group"
	EntityWorkGroup    EntityType = "work_group"
	EntityRole         EntityType = "role"
)

// Company is the root of a tenant's org structure.
// Child collections are ordered by order_index.
type Company struct {
	ID            int64          `json:"id" yaml:"id" db:"id"`
	Name          string         `json:"name" yaml:"name" db:"name"`
	Code          string         `json:"code,omitempty" yaml:"code,omitempty" db:"code"`
	Description   string         `json:"description,omitempty" yaml:"description,omitempty" db:"description"`
	CreatedAt     time.Time      `json:"created_at" yaml:"-" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" yaml:"-" db:"updated_at"`
	BusinessUnits []BusinessUnit `json:"business_units" yaml:"business_units"`
}

type BusinessUnit struct {
	ID          int64    `json:"id" yaml:"id" db:"id"`
	Name        string   `json:"name" yaml:"name" db:"name"`
	Code        string   `json:"code,omitempty" yaml:"code,omitempty" db:"code"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" db:"description"`
	OrderIndex  int      `json:"order_index" yaml:"order_index" db:"order_index"`
	Regions     []Region `json:"regions" yaml:"regions"`
}

type Region struct {
	ID          int64  `json:"id" yaml:"id" db:"id"`
	Name        string `json:"name" yaml:"name" db:"name"`
	Code        string `json:"code,omitempty" yaml:"code,omitempty" db:"code"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" db:"description"`
	OrderIndex  int    `json:"order_index" yaml:"order_index" db:"order_index"`
	Sites       []Site `json:"sites" yaml:"sites"`
}

type Site struct {
	ID          int64        `json:"id" yaml:"id" db:"id"`
	Name        string       `json:"name" yaml:"name" db:"name"`
	Code        string       `json:"code,omitempty" yaml:"code,omitempty" db:"code"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty" db:"description"`
	Lat         *float64     `json:"lat,omitempty" yaml:"lat,omitempty" db:"lat"`
	Lng         *float64     `json:"lng,omitempty" yaml:"lng,omitempty" db:"lng"`
	OrderIndex  int          `json:"order_index" yaml:"order_index" db:"order_index"`
	AssetGroups []AssetGroup `json:"asset_groups" yaml:"asset_groups"`
}

type AssetGroup struct {
	ID          int64       `json:"id" yaml:"id" db:"id"`
	Name        string      `json:"name" yaml:"name" db:"name"`
	Code        string      `json:"code,omitempty" yaml:"code,omitempty" db:"code"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty" db:"description"`
	OrderIndex  int         `json:"order_index" yaml:"order_index" db:"order_index"`
	WorkGroups  []WorkGroup `json:"work_groups" yaml:"work_groups"`
}

type WorkGroup struct {
	ID          int64  `json:"id" yaml:"id" db:"id"`
	Name        string `json:"name" yaml:"name" db:"name"`
	Code        string `json:"code,omitempty" yaml:"code,omitempty" db:"code"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" db:"description"`
	OrderIndex  int    `json:"order_index" yaml:"order_index" db:"order_index"`
	Roles       []Role `json:"roles" yaml:"roles"`
}

// Role is a position inside a work group. A role placed under another role is
// a reporting role; ReportsToRoleID references its manager. Reporting roles
// never carry reporting roles of their own.
type Role struct {
	ID              int64  `json:"id" yaml:"id" db:"id"`
	Name            string `json:"name" yaml:"name" db:"name"` // Shared role name
	SharedRoleID    *int64 `json:"shared_role_id" yaml:"shared_role_id" db:"shared_role_id"`
	Level           string `json:"level,omitempty" yaml:"level,omitempty" db:"level"`
	OrderIndex      int    `json:"order_index" yaml:"order_index" db:"order_index"`
	ReportsToRoleID *int64 `json:"reports_to_role_id,omitempty" yaml:"reports_to_role_id,omitempty" db:"reports_to_role_id"`
	ReportingRoles  []Role `json:"reporting_roles,omitempty" yaml:"reporting_roles,omitempty"`
}

// ReorderRecord is one row of a reorder request sent to the persistence API.
// ParentID and ParentType are only set when the item changed parent.
type ReorderRecord struct {
	ID         int64       `json:"id"`
	Type       EntityType  `json:"type"`
	OrderIndex int         `json:"order_index"`
	ParentID   *int64      `json:"parent_id,omitempty"`
	ParentType *EntityType `json:"parent_type,omitempty"`
}

// ReorderRequest is the body of POST /api/companies/{id}/tree/reorder
type ReorderRequest struct {
	Items []ReorderRecord `json:"items"`
}
