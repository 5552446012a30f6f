package config

import "time"

const (
	// DefaultIndentationWidth is the horizontal drag distance, in pixels,
	// that moves an item one level deeper or shallower.
	DefaultIndentationWidth = 50

	// MaxReorderRecords caps a single reorder request. A move touches at
	// most two sibling lists, so anything larger is not a drag result.
	MaxReorderRecords = 1000

	// MaxEntityNameLength is the maximum length for tier entity names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxEntityNameLength = 255

	// DefaultTreeCacheTTL bounds how stale a cached hierarchy can get when an
	// external writer bypasses the reorder endpoint.
	DefaultTreeCacheTTL = 5 * time.Minute

	// DefaultLogMaxFiles is how many server log files LOG_DIR keeps
	DefaultLogMaxFiles = 10

	// EditorSessionIdleTimeout evicts editor sessions nobody has touched
	EditorSessionIdleTimeout = 30 * time.Minute
)
