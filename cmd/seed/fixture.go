package main

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	models "vantage/internal/domain/models/orgtree"
	engine "vantage/internal/orgtree"
)

//go:embed demo.yaml
var demoFixture []byte

// loadFixture reads a hierarchy fixture, or the embedded demo company when
// path is empty
func loadFixture(path string) (*models.Company, error) {
	data := demoFixture
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, err
		}
	}

	var company models.Company
	if err := yaml.Unmarshal(data, &company); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &company, nil
}

// validateFixture checks the structural rules before anything is inserted.
// Fixtures carry no IDs, so provisional ones are assigned per tier and
// shared roles are keyed by name the way CreateCompany will key them.
func validateFixture(company *models.Company) error {
	ids := make(map[models.EntityType]int64)
	next := func(t models.EntityType) int64 {
		ids[t]++
		return ids[t]
	}
	shared := make(map[string]int64)
	sharedID := func(name string) *int64 {
		if _, ok := shared[name]; !ok {
			shared[name] = int64(len(shared) + 1)
		}
		id := shared[name]
		return &id
	}

	company.ID = next(models.EntityCompany)
	for i := range company.BusinessUnits {
		bu := &company.BusinessUnits[i]
		bu.ID = next(models.EntityBusinessUnit)
		for j := range bu.Regions {
			region := &bu.Regions[j]
			region.ID = next(models.EntityRegion)
			for k := range region.Sites {
				site := &region.Sites[k]
				site.ID = next(models.EntitySite)
				for l := range site.AssetGroups {
					ag := &site.AssetGroups[l]
					ag.ID = next(models.EntityAssetGroup)
					for m := range ag.WorkGroups {
						wg := &ag.WorkGroups[m]
						wg.ID = next(models.EntityWorkGroup)
						for n := range wg.Roles {
							role := &wg.Roles[n]
							role.ID = next(models.EntityRole)
							role.SharedRoleID = sharedID(role.Name)
							for o := range role.ReportingRoles {
								report := &role.ReportingRoles[o]
								report.ID = next(models.EntityRole)
								report.SharedRoleID = sharedID(report.Name)
							}
						}
					}
				}
			}
		}
	}

	return engine.NewValidator(nil).ValidateTree(engine.Adapt(company))
}
