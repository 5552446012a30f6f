package orgtree

import (
	models "vantage/internal/domain/models/orgtree"
)

func ptr[T any](v T) *T { return &v }

func role(id int64, name string, sharedID int64, reports ...models.Role) models.Role {
	return models.Role{ID: id, Name: name, SharedRoleID: ptr(sharedID), ReportingRoles: reports}
}

// testCompany builds:
//
//	company_1 Acme
//	├── business_unit_1 Operations
//	│   ├── region_1 North
//	│   │   └── site_1 Mine A
//	│   │       ├── asset_group_1 Fixed Plant
//	│   │       │   ├── work_group_10 Crushing
//	│   │       │   │   ├── role_1 Maintenance Planner (5)
//	│   │       │   │   │   └── role_2 Fitter (6)
//	│   │       │   │   └── role_3 Operator (7)
//	│   │       │   └── work_group_11 Conveyors
//	│   │       │       └── role_4 Electrician (8)
//	│   │       └── asset_group_2 Mobile Fleet
//	│   │           ├── work_group_12 Haul
//	│   │           │   └── role_5 Maintenance Planner (5)
//	│   │           └── work_group_13 Electrical
//	│   │               ├── role_30 Supervisor (30)
//	│   │               ├── role_31 Technician (31)
//	│   │               └── role_32 Apprentice (32)
//	│   └── region_2 South
//	│       └── site_2 Mine B
//	└── business_unit_2 Corporate
func testCompany() *models.Company {
	return &models.Company{
		ID:   1,
		Name: "Acme",
		BusinessUnits: []models.BusinessUnit{
			{
				ID:   1,
				Name: "Operations",
				Regions: []models.Region{
					{
						ID:   1,
						Name: "North",
						Sites: []models.Site{{
							ID:   1,
							Name: "Mine A",
							AssetGroups: []models.AssetGroup{
								{
									ID:   1,
									Name: "Fixed Plant",
									WorkGroups: []models.WorkGroup{
										{ID: 10, Name: "Crushing", Roles: []models.Role{
											role(1, "Maintenance Planner", 5, role(2, "Fitter", 6)),
											role(3, "Operator", 7),
										}},
										{ID: 11, Name: "Conveyors", Roles: []models.Role{
											role(4, "Electrician", 8),
										}},
									},
								},
								{
									ID:   2,
									Name: "Mobile Fleet",
									WorkGroups: []models.WorkGroup{
										{ID: 12, Name: "Haul", Roles: []models.Role{
											role(5, "Maintenance Planner", 5),
										}},
										{ID: 13, Name: "Electrical", Roles: []models.Role{
											role(30, "Supervisor", 30),
											role(31, "Technician", 31),
											role(32, "Apprentice", 32),
										}},
									},
								},
							},
						}},
					},
					{
						ID:    2,
						Name:  "South",
						Sites: []models.Site{{ID: 2, Name: "Mine B"}},
					},
				},
			},
			{ID: 2, Name: "Corporate"},
		},
	}
}

func childIDs(item *TreeItem) []string {
	ids := make([]string, 0, len(item.Children))
	for _, c := range item.Children {
		ids = append(ids, c.ID)
	}
	return ids
}

func flatIDs(items []FlattenedItem) []string {
	ids := make([]string, 0, len(items))
	for _, f := range items {
		ids = append(ids, f.ID)
	}
	return ids
}
