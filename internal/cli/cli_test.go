package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vantage/internal/domain"
	models "vantage/internal/domain/models/orgtree"
	engine "vantage/internal/orgtree"
)

const fixture = "testdata/acme.yaml"

// reparentExpansion shows the work groups of both asset groups but not their roles
const reparentExpansion = "company_1,business_unit_1,region_1,site_1,asset_group_1,asset_group_2"

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRender(t *testing.T) {
	out, err := runCLI(t, "render", fixture, "--expanded", "none")
	require.NoError(t, err)
	assert.Equal(t, "Acme [company] (+2)\n", out)

	out, err = runCLI(t, "render", fixture, "--expanded", "company_1,business_unit_1", "--show-ids")
	require.NoError(t, err)
	assert.Equal(t, "Acme [company] company_1\n"+
		"├── Operations [business_unit] business_unit_1\n"+
		"│   ├── North [region] region_1 (+1)\n"+
		"│   └── South [region] region_2 (+1)\n"+
		"└── Corporate [business_unit] business_unit_2\n", out)
}

func TestRender_MissingFile(t *testing.T) {
	_, err := runCLI(t, "render", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	_, err := runCLI(t, "validate", fixture)
	require.NoError(t, err)

	bad := filepath.Join(t.TempDir(), "dup.json")
	company := &models.Company{ID: 1, Name: "Acme", BusinessUnits: []models.BusinessUnit{{
		ID: 1, Name: "Ops", Regions: []models.Region{{
			ID: 1, Name: "North", Sites: []models.Site{{
				ID: 1, Name: "Mine", AssetGroups: []models.AssetGroup{{
					ID: 1, Name: "Plant", WorkGroups: []models.WorkGroup{{
						ID: 1, Name: "Crushing", Roles: []models.Role{
							{ID: 1, Name: "Planner", SharedRoleID: ptr(int64(5))},
							{ID: 2, Name: "Planner", SharedRoleID: ptr(int64(5))},
						},
					}},
				}},
			}},
		}},
	}}}
	require.NoError(t, writeCompany(bad, company))

	_, err = runCLI(t, "validate", bad)
	assert.ErrorContains(t, err, "is invalid")
}

func TestMove_Reparent(t *testing.T) {
	out, err := runCLI(t, "move", fixture, "--active", "work_group_11", "--over", "work_group_13", "--expanded", reparentExpansion)
	require.NoError(t, err)

	var result engine.MoveResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Moved)
	assert.True(t, result.ParentChanged)
	assert.Equal(t, "asset_group_2", result.Placement.ParentID)

	parentID := int64(2)
	parentType := models.EntityAssetGroup
	assert.Equal(t, []models.ReorderRecord{
		{ID: 12, Type: models.EntityWorkGroup, OrderIndex: 0},
		{ID: 13, Type: models.EntityWorkGroup, OrderIndex: 1},
		{ID: 11, Type: models.EntityWorkGroup, OrderIndex: 2, ParentID: &parentID, ParentType: &parentType},
		{ID: 10, Type: models.EntityWorkGroup, OrderIndex: 0},
	}, result.Payload)
}

func TestMove_Rejected(t *testing.T) {
	_, err := runCLI(t, "move", fixture, "--active", "site_2", "--over", "region_2", "--offset", "-50",
		"--expanded", "company_1,business_unit_1,region_2")

	var rejected *domain.MoveRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, domain.ReasonInvalidParent, rejected.Reason)
}

func TestMove_Flags(t *testing.T) {
	_, err := runCLI(t, "move", fixture, "--active", "region_1")
	assert.ErrorContains(t, err, "--active and --over are required")

	_, err = runCLI(t, "move", fixture, "--active", "region_1", "--over", "region_2", "--indent", "0")
	assert.ErrorContains(t, err, "--indent must be positive")

	_, err = runCLI(t, "move", fixture, "--active", "region_1", "--over", "region_99")
	assert.ErrorContains(t, err, "drop over region_99")
}

func TestMove_WriteAndPush(t *testing.T) {
	var pushed models.ReorderRequest
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&pushed)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	written := filepath.Join(t.TempDir(), "moved.yaml")
	_, err := runCLI(t, "move", fixture, "--active", "work_group_11", "--over", "work_group_13",
		"--expanded", reparentExpansion, "--write", written, "--push", srv.URL, "--company", "42")
	require.NoError(t, err)

	assert.Equal(t, "/api/companies/42/tree/reorder", path)
	assert.Len(t, pushed.Items, 4)

	moved, err := readCompany(written)
	require.NoError(t, err)
	fleet := moved.BusinessUnits[0].Regions[0].Sites[0].AssetGroups[1].WorkGroups
	require.Len(t, fleet, 3)
	assert.Equal(t, int64(11), fleet[2].ID)
	assert.Equal(t, 2, fleet[2].OrderIndex)

	_, err = os.Stat(written)
	assert.NoError(t, err)
}

func TestMove_PushFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"title":"Forbidden"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := runCLI(t, "move", fixture, "--active", "work_group_11", "--over", "work_group_13",
		"--expanded", reparentExpansion, "--push", srv.URL)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func ptr[T any](v T) *T { return &v }
