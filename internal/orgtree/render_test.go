package orgtree

import (
	"testing"
)

func TestRenderer_Render(t *testing.T) {
	tree := Adapt(testCompany())

	tests := []struct {
		name     string
		expanded map[string]bool
		showIDs  bool
		want     string
	}{
		{
			name:     "root only",
			expanded: map[string]bool{},
			want:     "Acme [company] (+2)",
		},
		{
			name:     "nested with continuation lines",
			expanded: map[string]bool{"company_1": true, "business_unit_1": true, "region_2": true},
			want: "Acme [company]\n" +
				"├── Operations [business_unit]\n" +
				"│   ├── North [region] (+1)\n" +
				"│   └── South [region]\n" +
				"│       └── Mine B [site]\n" +
				"└── Corporate [business_unit]",
		},
		{
			name:     "with ids",
			expanded: map[string]bool{"company_1": true},
			showIDs:  true,
			want: "Acme [company] company_1\n" +
				"├── Operations [business_unit] business_unit_1 (+2)\n" +
				"└── Corporate [business_unit] business_unit_2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewRenderer(tt.showIDs).Render(FilterVisible(Flatten(tree), tt.expanded))
			if got != tt.want {
				t.Errorf("Render() =\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestRenderer_Empty(t *testing.T) {
	if got := NewRenderer(false).Render(nil); got != "" {
		t.Errorf("Render(nil) = %q, want empty", got)
	}
}
