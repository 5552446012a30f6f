package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"vantage/internal/domain/models/orgtree"
	"vantage/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Companies       string
	BusinessUnits   string
	Regions         string
	Sites           string
	AssetGroups     string
	WorkGroups      string
	Roles           string
	SharedRoles     string
	CompanyMembers  string
	UserPreferences string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Companies:       fmt.Sprintf("%scompanies", prefix),
		BusinessUnits:   fmt.Sprintf("%sbusiness_units", prefix),
		Regions:         fmt.Sprintf("%sregions", prefix),
		Sites:           fmt.Sprintf("%ssites", prefix),
		AssetGroups:     fmt.Sprintf("%sasset_groups", prefix),
		WorkGroups:      fmt.Sprintf("%swork_groups", prefix),
		Roles:           fmt.Sprintf("%sroles", prefix),
		SharedRoles:     fmt.Sprintf("%sshared_roles", prefix),
		CompanyMembers:  fmt.Sprintf("%scompany_members", prefix),
		UserPreferences: fmt.Sprintf("%suser_preferences", prefix),
	}
}

// ForTier returns the table holding entities of the given tier
func (t *TableNames) ForTier(tier orgtree.EntityType) (string, bool) {
	switch tier {
	case orgtree.EntityCompany:
		return t.Companies, true
	case orgtree.EntityBusinessUnit:
		return t.BusinessUnits, true
	case orgtree.EntityRegion:
		return t.Regions, true
	case orgtree.EntitySite:
		return t.Sites, true
	case orgtree.EntityAssetGroup:
		return t.AssetGroups, true
	case orgtree.EntityWorkGroup:
		return t.WorkGroups, true
	case orgtree.EntityRole:
		return t.Roles, true
	}
	return "", false
}

// parentColumns is the foreign key column pointing at each parent tier.
// A role under a role keeps its work_group_id and sets reports_to_role_id.
var parentColumns = map[orgtree.EntityType]string{
	orgtree.EntityBusinessUnit: "company_id",
	orgtree.EntityRegion:       "business_unit_id",
	orgtree.EntitySite:         "region_id",
	orgtree.EntityAssetGroup:   "site_id",
	orgtree.EntityWorkGroup:    "asset_group_id",
	orgtree.EntityRole:         "work_group_id",
}

// CreateConnectionPool creates a new pgx connection pool with automatic PgBouncer compatibility.
//
// Supabase's transaction pooler (port 6543) does not support prepared
// statements, so on that port the pool switches to QueryExecModeCacheDescribe.
// A default_query_exec_mode parameter in the connection string takes precedence.
// Direct connections (port 5432) keep pgx's prepared statement cache.
//
// Table names are interpolated with fmt.Sprintf before the SQL reaches the
// database, so each prefix gets its own statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	// Configure pool size
	config.MaxConns = 25
	config.MinConns = 5

	// Extended protocol without prepared statements; the preferences JSONB
	// column still needs parameter type info, which rules out simple protocol
	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the appropriate query executor for the context.
// If a transaction is present in the context, it returns the transaction.
// Otherwise, it returns the provided pool.
// This enables repositories to automatically participate in transactions when they exist.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	// Check if there's a transaction in the context
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	// No transaction, use the pool
	return pool
}
