package orgtree

import (
	models "vantage/internal/domain/models/orgtree"
)

// Adapt converts a nested company hierarchy into a single-rooted tree of
// TreeItems. The input is not modified; items reference the input entities,
// except reporting roles which get a copy carrying the manager back-reference.
func Adapt(company *models.Company) []*TreeItem {
	if company == nil {
		return []*TreeItem{}
	}

	root := newItem(models.EntityCompany, company.ID, company.Name, 0, company)
	root.Children = make([]*TreeItem, 0, len(company.BusinessUnits))
	for i := range company.BusinessUnits {
		root.Children = append(root.Children, adaptBusinessUnit(&company.BusinessUnits[i]))
	}
	return []*TreeItem{root}
}

func adaptBusinessUnit(bu *models.BusinessUnit) *TreeItem {
	item := newItem(models.EntityBusinessUnit, bu.ID, bu.Name, 1, bu)
	for i := range bu.Regions {
		item.Children = append(item.Children, adaptRegion(&bu.Regions[i]))
	}
	return item
}

func adaptRegion(region *models.Region) *TreeItem {
	item := newItem(models.EntityRegion, region.ID, region.Name, 2, region)
	for i := range region.Sites {
		item.Children = append(item.Children, adaptSite(&region.Sites[i]))
	}
	return item
}

func adaptSite(site *models.Site) *TreeItem {
	item := newItem(models.EntitySite, site.ID, site.Name, 3, site)
	for i := range site.AssetGroups {
		item.Children = append(item.Children, adaptAssetGroup(&site.AssetGroups[i]))
	}
	return item
}

func adaptAssetGroup(ag *models.AssetGroup) *TreeItem {
	item := newItem(models.EntityAssetGroup, ag.ID, ag.Name, 4, ag)
	for i := range ag.WorkGroups {
		item.Children = append(item.Children, adaptWorkGroup(&ag.WorkGroups[i]))
	}
	return item
}

func adaptWorkGroup(wg *models.WorkGroup) *TreeItem {
	item := newItem(models.EntityWorkGroup, wg.ID, wg.Name, 5, wg)
	for i := range wg.Roles {
		item.Children = append(item.Children, adaptRole(&wg.Roles[i]))
	}
	return item
}

func adaptRole(role *models.Role) *TreeItem {
	item := newItem(models.EntityRole, role.ID, role.Name, 6, role)
	for i := range role.ReportingRoles {
		// Copy so the back-reference can be set without touching the input.
		// Anything nested deeper than one level is dropped.
		report := role.ReportingRoles[i]
		managerID := role.ID
		report.ReportsToRoleID = &managerID
		report.ReportingRoles = nil

		child := newItem(models.EntityRole, report.ID, report.Name, 7, &report)
		child.ReportsTo = item.ID
		item.Children = append(item.Children, child)
	}
	return item
}

func newItem(t models.EntityType, entityID int64, name string, depth int, entity any) *TreeItem {
	return &TreeItem{
		ID:         EncodeID(t, entityID),
		EntityType: t,
		EntityID:   entityID,
		Name:       name,
		Depth:      depth,
		Entity:     entity,
		Children:   []*TreeItem{},
	}
}
