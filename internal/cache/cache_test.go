package cache

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	models "vantage/internal/domain/models/orgtree"
)

func TestMemorySnapshotCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemorySnapshotCache(time.Minute)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	got, err := c.Get(ctx, 1)
	if err != nil || got != nil {
		t.Fatalf("Get() on empty cache = %v, %v", got, err)
	}

	company := &models.Company{ID: 1, Name: "Acme"}
	if err := c.Set(ctx, company); err != nil {
		t.Fatal(err)
	}
	if got, _ := c.Get(ctx, 1); got != company {
		t.Errorf("Get() = %v, want cached company", got)
	}

	if err := c.Invalidate(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if got, _ := c.Get(ctx, 1); got != nil {
		t.Errorf("Get() after Invalidate = %v, want nil", got)
	}
}

func TestMemorySnapshotCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemorySnapshotCache(time.Minute)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, &models.Company{ID: 2, Name: "Beta"})

	now = now.Add(59 * time.Second)
	if got, _ := c.Get(ctx, 2); got == nil {
		t.Error("entry expired early")
	}

	now = now.Add(2 * time.Second)
	if got, _ := c.Get(ctx, 2); got != nil {
		t.Error("entry survived its TTL")
	}
	if len(c.entries) != 0 {
		t.Errorf("expired entry not evicted, %d left", len(c.entries))
	}
}

func TestRedisSnapshotCache_Key(t *testing.T) {
	c := NewRedisSnapshotCache(nil, DefaultKeyPrefix+":dev_", time.Minute, nil)
	if got, want := c.key(42), "vantage:orgtree:snapshot:v1:dev_:{42}"; got != want {
		t.Errorf("key() = %q, want %q", got, want)
	}
}

// Runs against a live Redis when VANTAGE_TEST_REDIS_URL is set
func TestRedisSnapshotCache_RoundTrip(t *testing.T) {
	url := os.Getenv("VANTAGE_TEST_REDIS_URL")
	if url == "" {
		t.Skip("VANTAGE_TEST_REDIS_URL not set")
	}

	client, err := NewRedisClient(url)
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewRedisSnapshotCache(client, DefaultKeyPrefix+":test_", time.Minute, logger)
	if err := c.Ping(ctx); err != nil {
		t.Skipf("redis unreachable: %v", err)
	}

	sharedID := int64(5)
	company := &models.Company{
		ID:   9001,
		Name: "Acme",
		BusinessUnits: []models.BusinessUnit{{
			ID: 1, Name: "Operations",
			Regions: []models.Region{{ID: 1, Name: "North", Sites: []models.Site{}}},
		}},
	}
	company.BusinessUnits[0].Regions[0].Sites = []models.Site{{
		ID: 1, Name: "Mine A",
		AssetGroups: []models.AssetGroup{{ID: 1, Name: "Fixed Plant", WorkGroups: []models.WorkGroup{{
			ID: 10, Name: "Crushing",
			Roles: []models.Role{{ID: 1, Name: "Planner", SharedRoleID: &sharedID}},
		}}}},
	}}

	if err := c.Set(ctx, company); err != nil {
		t.Fatal(err)
	}
	defer c.Invalidate(ctx, company.ID)

	got, err := c.Get(ctx, company.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Name != "Acme" {
		t.Fatalf("Get() = %+v", got)
	}
	role := got.BusinessUnits[0].Regions[0].Sites[0].AssetGroups[0].WorkGroups[0].Roles[0]
	if role.SharedRoleID == nil || *role.SharedRoleID != sharedID {
		t.Errorf("shared role lost in round trip: %+v", role)
	}

	if err := c.Invalidate(ctx, company.ID); err != nil {
		t.Fatal(err)
	}
	if got, _ := c.Get(ctx, company.ID); got != nil {
		t.Errorf("Get() after Invalidate = %+v", got)
	}
}
