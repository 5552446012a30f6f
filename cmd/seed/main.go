package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"vantage/internal/auth"
	"vantage/internal/config"
	models "vantage/internal/domain/models/orgtree"
	engine "vantage/internal/orgtree"
	"vantage/internal/repository/postgres"
	serviceAuth "vantage/internal/service/auth"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// member is a --member flag value: USER_UUID:ROLE
type member struct {
	userID uuid.UUID
	role   string
}

// demoUsers are created through the Supabase Admin API when SUPABASE_KEY is set
var demoUsers = []struct {
	email string
	role  string
}{
	{"admin@vantage.local", "admin"},
	{"editor@vantage.local", "editor"},
	{"viewer@vantage.local", "viewer"},
}

const demoPassword = "vantage-demo"

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed a company")
	fixturePath := flag.String("fixture", "", "Hierarchy YAML to load (default: embedded demo company)")
	withDemoUsers := flag.Bool("demo-users", false, "Create demo users via the Supabase Admin API (needs SUPABASE_KEY)")
	var members []member
	flag.Func("member", "Grant USER_UUID:ROLE on the seeded company (repeatable; roles: viewer, editor, admin)", func(v string) error {
		m, err := parseMember(v)
		if err != nil {
			return err
		}
		members = append(members, m)
		return nil
	})
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables) in production environment")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *schemaOnly {
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else {
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	// Validate the fixture before touching the database
	var company *models.Company
	if !*schemaOnly {
		var err error
		company, err = loadFixture(*fixturePath)
		if err != nil {
			log.Fatalf("Failed to load fixture: %v", err)
		}
		if err := validateFixture(company); err != nil {
			log.Fatalf("Fixture is invalid:\n%v", err)
		}
		log.Printf("✅ Fixture valid: %s (%d items)", company.Name, len(engine.Flatten(engine.Adapt(company))))
	}

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Drop tables if requested
	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	// Run schema to ensure tables exist
	log.Println("📋 Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	if *withDemoUsers {
		if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
			log.Fatalf("--demo-users needs SUPABASE_URL and SUPABASE_KEY")
		}
		admin := auth.NewAdminClient(cfg.SupabaseURL, cfg.SupabaseKey)
		for _, u := range demoUsers {
			id, err := admin.EnsureUser(ctx, u.email, demoPassword, map[string]interface{}{"demo": true})
			if err != nil {
				log.Fatalf("Failed to ensure demo user %s: %v", u.email, err)
			}
			members = append(members, member{userID: id, role: u.role})
			log.Printf("👤 Demo user %s (%s): %s", u.email, u.role, id)
		}
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	hierarchyRepo := postgres.NewHierarchyRepository(repoConfig)
	membershipRepo := postgres.NewMembershipRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Company and memberships land together or not at all
	log.Printf("🏢 Creating company %q...", company.Name)
	err = txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := hierarchyRepo.CreateCompany(ctx, company); err != nil {
			return err
		}
		for _, m := range members {
			if err := membershipRepo.AddMember(ctx, m.userID, company.ID, m.role); err != nil {
				return fmt.Errorf("add member %s: %w", m.userID, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to seed company: %v", err)
	}

	log.Printf("✅ Created company %d with %d member(s)", company.ID, len(members))
	log.Println("🎉 Seeding complete!")
}

// parseMember parses USER_UUID:ROLE and checks the role is one the
// authorization policy knows
func parseMember(v string) (member, error) {
	rawID, role, ok := strings.Cut(v, ":")
	if !ok {
		return member{}, fmt.Errorf("want USER_UUID:ROLE, got %q", v)
	}
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return member{}, fmt.Errorf("invalid user id %q: %w", rawID, err)
	}
	role = strings.ToLower(strings.TrimSpace(role))
	if !serviceAuth.IsKnownRole(role) {
		return member{}, fmt.Errorf("unknown role %q", role)
	}
	return member{userID: id, role: role}, nil
}
