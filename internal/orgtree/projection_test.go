package orgtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProjection(t *testing.T) {
	// company_1, business_unit_1, region_1, region_2, site_2, business_unit_2
	visible := FilterVisible(Flatten(Adapt(testCompany())), map[string]bool{
		"company_1":       true,
		"business_unit_1": true,
		"region_2":        true,
	})

	tests := []struct {
		name     string
		activeID string
		overID   string
		offset   float64
		want     Projection
	}{
		{
			name:     "in place keeps parent",
			activeID: "site_2",
			overID:   "site_2",
			offset:   0,
			want:     Projection{Depth: 3, MaxDepth: 3, MinDepth: 1, ParentID: "region_2"},
		},
		{
			name:     "shallower drop under the business unit",
			activeID: "site_2",
			overID:   "region_2",
			offset:   -50,
			want:     Projection{Depth: 2, MaxDepth: 3, MinDepth: 2, ParentID: "business_unit_1"},
		},
		{
			name:     "depth capped at one below the previous item",
			activeID: "site_2",
			overID:   "region_2",
			offset:   500,
			want:     Projection{Depth: 3, MaxDepth: 3, MinDepth: 2, ParentID: "region_1"},
		},
		{
			name:     "depth floored at the next item",
			activeID: "region_1",
			overID:   "region_1",
			offset:   -500,
			want:     Projection{Depth: 2, MaxDepth: 2, MinDepth: 2, ParentID: "business_unit_1"},
		},
		{
			name:     "half an indent rounds up",
			activeID: "site_2",
			overID:   "region_2",
			offset:   -75,
			want:     Projection{Depth: 2, MaxDepth: 3, MinDepth: 2, ParentID: "business_unit_1"},
		},
		{
			name:     "scan back for the parent",
			activeID: "business_unit_2",
			overID:   "business_unit_2",
			offset:   0,
			want:     Projection{Depth: 1, MaxDepth: 4, MinDepth: 0, ParentID: "company_1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := RemoveChildrenOf(visible, tt.activeID)
			got, err := GetProjection(items, tt.activeID, tt.overID, tt.offset, 50)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetProjection_Errors(t *testing.T) {
	items := Flatten(Adapt(testCompany()))

	_, err := GetProjection(items, "missing", "site_1", 0, 50)
	assert.ErrorIs(t, err, ErrItemNotFound)

	_, err = GetProjection(items, "site_1", "missing", 0, 50)
	assert.ErrorIs(t, err, ErrItemNotFound)

	_, err = GetProjection(items, "site_1", "site_1", 0, 0)
	assert.Error(t, err)
}

func TestJSRound(t *testing.T) {
	tests := map[float64]int{
		0:    0,
		0.4:  0,
		0.5:  1,
		1.5:  2,
		-0.5: 0,
		-1.5: -1,
		-1.6: -2,
	}
	for in, want := range tests {
		assert.Equal(t, want, jsRound(in), in)
	}
}
