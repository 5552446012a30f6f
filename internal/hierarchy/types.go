package hierarchy

import (
	"fmt"

	models "vantage/internal/domain/models/orgtree"

	"gopkg.in/yaml.v3"
)

// Tier describes one level of the org hierarchy
type Tier struct {
	// Tier identifier (set during YAML unmarshaling)
	Type models.EntityType `yaml:"-" json:"type"`

	Label           string              `yaml:"label" json:"label"`
	Level           int                 `yaml:"level" json:"level"`
	MaxDepth        int                 `yaml:"max_depth" json:"max_depth"`
	Parents         []models.EntityType `yaml:"parents" json:"parents"`
	ChildCollection string              `yaml:"child_collection" json:"child_collection"`
}

// tierTable is the decoded tiers.yaml, with tiers kept in file order
type tierTable struct {
	Tiers []Tier
}

// UnmarshalYAML preserves tier order from the YAML mapping
func (t *tierTable) UnmarshalYAML(node *yaml.Node) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != "tiers" {
			continue
		}

		tiersNode := node.Content[i+1]
		if tiersNode.Kind != yaml.MappingNode {
			return fmt.Errorf("tiers must be a mapping, got kind %d", tiersNode.Kind)
		}

		// tiersNode.Content alternates: key, value, key, value...
		for j := 0; j+1 < len(tiersNode.Content); j += 2 {
			var tier Tier
			if err := tiersNode.Content[j+1].Decode(&tier); err != nil {
				return fmt.Errorf("decode tier %s: %w", tiersNode.Content[j].Value, err)
			}
			tier.Type = models.EntityType(tiersNode.Content[j].Value)
			t.Tiers = append(t.Tiers, tier)
		}
		return nil
	}

	return fmt.Errorf("missing tiers key")
}
