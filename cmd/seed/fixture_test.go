package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDemoFixtureIsValid(t *testing.T) {
	company, err := loadFixture("")
	if err != nil {
		t.Fatalf("loadFixture: %v", err)
	}
	if err := validateFixture(company); err != nil {
		t.Fatalf("demo fixture invalid: %v", err)
	}

	// Shared roles are keyed by name across work groups
	planner := company.BusinessUnits[0].Regions[0].Sites[0].AssetGroups[0].WorkGroups[0].Roles[0]
	haulPlanner := company.BusinessUnits[0].Regions[0].Sites[0].AssetGroups[1].WorkGroups[0].Roles[0]
	if *planner.SharedRoleID != *haulPlanner.SharedRoleID {
		t.Errorf("shared role ids differ: %d vs %d", *planner.SharedRoleID, *haulPlanner.SharedRoleID)
	}
	if planner.ID == haulPlanner.ID {
		t.Error("role ids must be distinct")
	}
}

func TestValidateFixture_DuplicateRole(t *testing.T) {
	fixture := `name: Dup
business_units:
  - name: Ops
    regions:
      - name: North
        sites:
          - name: Mine
            asset_groups:
              - name: Plant
                work_groups:
                  - name: Crushing
                    roles:
                      - name: Planner
                      - name: Planner
`
	path := filepath.Join(t.TempDir(), "dup.yaml")
	if err := os.WriteFile(path, []byte(fixture), 0o644); err != nil {
		t.Fatal(err)
	}

	company, err := loadFixture(path)
	if err != nil {
		t.Fatalf("loadFixture: %v", err)
	}
	if err := validateFixture(company); err == nil {
		t.Fatal("expected duplicate shared role to be rejected")
	}
}

func TestParseMember(t *testing.T) {
	m, err := parseMember("6a0f3c52-8d1e-4b7a-9c2e-1f3d5a7b9c0e: Editor")
	if err != nil {
		t.Fatalf("parseMember: %v", err)
	}
	if m.role != "editor" || m.userID.String() != "6a0f3c52-8d1e-4b7a-9c2e-1f3d5a7b9c0e" {
		t.Errorf("parseMember = %+v", m)
	}

	tests := []struct {
		in      string
		wantErr string
	}{
		{"no-colon", "want USER_UUID:ROLE"},
		{"not-a-uuid:editor", "invalid user id"},
		{"6a0f3c52-8d1e-4b7a-9c2e-1f3d5a7b9c0e:owner", "unknown role"},
	}
	for _, tt := range tests {
		if _, err := parseMember(tt.in); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("parseMember(%q) error = %v, want %q", tt.in, err, tt.wantErr)
		}
	}
}
