package orgtree

import (
	"fmt"
	"strconv"
	"strings"

	models "vantage/internal/domain/models/orgtree"
	"vantage/internal/hierarchy"
)

// EncodeID builds the tree-wide item ID for an entity, e.g. "work_group_42"
func EncodeID(t models.EntityType, entityID int64) string {
	return string(t) + "_" + strconv.FormatInt(entityID, 10)
}

// DecodeID splits an item ID back into its entity type and entity ID.
// Multi-word tags are tried before shorter ones so "work_group_5" never
// matches a shorter tag that happens to be a prefix.
func DecodeID(id string) (models.EntityType, int64, error) {
	for _, tag := range hierarchy.Default().TagsLongestFirst() {
		prefix := string(tag) + "_"
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		entityID, err := strconv.ParseInt(id[len(prefix):], 10, 64)
		if err != nil {
			return "", 0, fmt.Errorf("invalid entity id in %q: %w", id, err)
		}
		return tag, entityID, nil
	}
	return "", 0, fmt.Errorf("unknown entity type in %q", id)
}
