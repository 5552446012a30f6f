package main

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"vantage/internal/repository/postgres"
)

// runSchema creates tables if they don't exist
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + tables.Companies + ` (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			code TEXT,
			description TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.BusinessUnits + ` (
			id BIGSERIAL PRIMARY KEY,
			company_id BIGINT NOT NULL REFERENCES ` + tables.Companies + `(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			code TEXT,
			description TEXT,
			order_index INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Regions + ` (
			id BIGSERIAL PRIMARY KEY,
			company_id BIGINT NOT NULL REFERENCES ` + tables.Companies + `(id) ON DELETE CASCADE,
			business_unit_id BIGINT NOT NULL REFERENCES ` + tables.BusinessUnits + `(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			code TEXT,
			description TEXT,
			order_index INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Sites + ` (
			id BIGSERIAL PRIMARY KEY,
			company_id BIGINT NOT NULL REFERENCES ` + tables.Companies + `(id) ON DELETE CASCADE,
			region_id BIGINT NOT NULL REFERENCES ` + tables.Regions + `(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			code TEXT,
			description TEXT,
			lat DOUBLE PRECISION,
			lng DOUBLE PRECISION,
			order_index INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.AssetGroups + ` (
			id BIGSERIAL PRIMARY KEY,
			company_id BIGINT NOT NULL REFERENCES ` + tables.Companies + `(id) ON DELETE CASCADE,
			site_id BIGINT NOT NULL REFERENCES ` + tables.Sites + `(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			code TEXT,
			description TEXT,
			order_index INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.WorkGroups + ` (
			id BIGSERIAL PRIMARY KEY,
			company_id BIGINT NOT NULL REFERENCES ` + tables.Companies + `(id) ON DELETE CASCADE,
			asset_group_id BIGINT NOT NULL REFERENCES ` + tables.AssetGroups + `(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			code TEXT,
			description TEXT,
			order_index INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.SharedRoles + ` (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Roles + ` (
			id BIGSERIAL PRIMARY KEY,
			company_id BIGINT NOT NULL REFERENCES ` + tables.Companies + `(id) ON DELETE CASCADE,
			work_group_id BIGINT NOT NULL REFERENCES ` + tables.WorkGroups + `(id) ON DELETE CASCADE,
			shared_role_id BIGINT NOT NULL REFERENCES ` + tables.SharedRoles + `(id),
			level TEXT,
			order_index INTEGER NOT NULL DEFAULT 0,
			reports_to_role_id BIGINT REFERENCES ` + tables.Roles + `(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.CompanyMembers + ` (
			company_id BIGINT NOT NULL REFERENCES ` + tables.Companies + `(id) ON DELETE CASCADE,
			user_id UUID NOT NULL,
			role TEXT NOT NULL CHECK (role IN ('viewer', 'editor', 'admin')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (company_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.UserPreferences + ` (
			user_id UUID PRIMARY KEY,
			preferences JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	// Every tier loads per company ordered for display
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `business_units_company ON ` + tables.BusinessUnits + `(company_id, order_index)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `regions_company ON ` + tables.Regions + `(company_id, order_index)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `sites_company ON ` + tables.Sites + `(company_id, order_index)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `asset_groups_company ON ` + tables.AssetGroups + `(company_id, order_index)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `work_groups_company ON ` + tables.WorkGroups + `(company_id, order_index)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `roles_company ON ` + tables.Roles + `(company_id, order_index)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `roles_reports_to ON ` + tables.Roles + `(reports_to_role_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `company_members_user ON ` + tables.CompanyMembers + `(user_id)`,
	}

	for _, stmt := range append(statements, indexes...) {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// dropAllTables drops all tables in reverse order (to respect foreign keys)
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.UserPreferences,
		tables.CompanyMembers,
		tables.Roles,
		tables.SharedRoles,
		tables.WorkGroups,
		tables.AssetGroups,
		tables.Sites,
		tables.Regions,
		tables.BusinessUnits,
		tables.Companies,
	}

	for _, table := range tableNames {
		dropSQL := "DROP TABLE IF EXISTS " + table + " CASCADE"
		if _, err := pool.Exec(ctx, dropSQL); err != nil {
			return err
		}
		log.Printf("  ✓ Dropped %s", table)
	}
	return nil
}
