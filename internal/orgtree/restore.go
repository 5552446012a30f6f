package orgtree

import (
	"fmt"

	models "vantage/internal/domain/models/orgtree"
)

// ToCompany rebuilds a nested company hierarchy from a tree, the inverse of
// Adapt. Order indexes are rewritten from sibling positions and reporting
// roles get their manager back-reference. Entity fields other than children
// and ordering are copied from each item's source entity.
func ToCompany(tree []*TreeItem) (*models.Company, error) {
	if len(tree) != 1 {
		return nil, fmt.Errorf("tree must have exactly one root, got %d", len(tree))
	}
	root := tree[0]
	src, ok := root.Entity.(*models.Company)
	if !ok {
		return nil, fmt.Errorf("root %s does not carry a company", root.ID)
	}

	company := *src
	company.BusinessUnits = make([]models.BusinessUnit, 0, len(root.Children))
	for i, child := range root.Children {
		bu, ok := child.Entity.(*models.BusinessUnit)
		if !ok {
			return nil, entityMismatch(child, models.EntityBusinessUnit)
		}
		restored := *bu
		restored.OrderIndex = i
		regions, err := restoreRegions(child.Children)
		if err != nil {
			return nil, err
		}
		restored.Regions = regions
		company.BusinessUnits = append(company.BusinessUnits, restored)
	}
	return &company, nil
}

func restoreRegions(items []*TreeItem) ([]models.Region, error) {
	out := make([]models.Region, 0, len(items))
	for i, item := range items {
		region, ok := item.Entity.(*models.Region)
		if !ok {
			return nil, entityMismatch(item, models.EntityRegion)
		}
		restored := *region
		restored.OrderIndex = i
		sites, err := restoreSites(item.Children)
		if err != nil {
			return nil, err
		}
		restored.Sites = sites
		out = append(out, restored)
	}
	return out, nil
}

func restoreSites(items []*TreeItem) ([]models.Site, error) {
	out := make([]models.Site, 0, len(items))
	for i, item := range items {
		site, ok := item.Entity.(*models.Site)
		if !ok {
			return nil, entityMismatch(item, models.EntitySite)
		}
		restored := *site
		restored.OrderIndex = i
		groups, err := restoreAssetGroups(item.Children)
		if err != nil {
			return nil, err
		}
		restored.AssetGroups = groups
		out = append(out, restored)
	}
	return out, nil
}

func restoreAssetGroups(items []*TreeItem) ([]models.AssetGroup, error) {
	out := make([]models.AssetGroup, 0, len(items))
	for i, item := range items {
		ag, ok := item.Entity.(*models.AssetGroup)
		if !ok {
			return nil, entityMismatch(item, models.EntityAssetGroup)
		}
		restored := *ag
		restored.OrderIndex = i
		groups, err := restoreWorkGroups(item.Children)
		if err != nil {
			return nil, err
		}
		restored.WorkGroups = groups
		out = append(out, restored)
	}
	return out, nil
}

func restoreWorkGroups(items []*TreeItem) ([]models.WorkGroup, error) {
	out := make([]models.WorkGroup, 0, len(items))
	for i, item := range items {
		wg, ok := item.Entity.(*models.WorkGroup)
		if !ok {
			return nil, entityMismatch(item, models.EntityWorkGroup)
		}
		restored := *wg
		restored.OrderIndex = i
		roles, err := restoreRoles(item.Children, nil)
		if err != nil {
			return nil, err
		}
		restored.Roles = roles
		out = append(out, restored)
	}
	return out, nil
}

// restoreRoles handles both work group members (manager nil) and reporting
// roles. Reporting roles never carry reports of their own.
func restoreRoles(items []*TreeItem, manager *models.Role) ([]models.Role, error) {
	out := make([]models.Role, 0, len(items))
	for i, item := range items {
		role, ok := item.Entity.(*models.Role)
		if !ok {
			return nil, entityMismatch(item, models.EntityRole)
		}
		restored := *role
		restored.OrderIndex = i
		restored.ReportsToRoleID = nil
		restored.ReportingRoles = nil

		if manager != nil {
			if len(item.Children) > 0 {
				return nil, fmt.Errorf("reporting role %s has reports of its own", item.ID)
			}
			managerID := manager.ID
			restored.ReportsToRoleID = &managerID
		} else if len(item.Children) > 0 {
			reports, err := restoreRoles(item.Children, &restored)
			if err != nil {
				return nil, err
			}
			restored.ReportingRoles = reports
		}
		out = append(out, restored)
	}
	return out, nil
}

func entityMismatch(item *TreeItem, want models.EntityType) error {
	return fmt.Errorf("item %s does not carry a %s entity", item.ID, want)
}
