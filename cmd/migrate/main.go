package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	"teamperf/internal/repository"
)

const usage = "Usage: go run ./cmd/migrate [drop|up|seed|reset]"

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}
	command := os.Args[1]

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "drop":
		if os.Getenv("ENVIRONMENT") == "production" {
			log.Fatal("Refusing to drop tables in production")
		}
		if err := run(ctx, conn, repository.DropSchema); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("All tables dropped")

	case "up":
		if err := run(ctx, conn, repository.Schema); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("All tables created")

	case "seed":
		if err := seedCatalog(ctx, conn); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("Built-in catalog seeded")

	case "reset":
		if os.Getenv("ENVIRONMENT") == "production" {
			log.Fatal("Refusing to reset the database in production")
		}
		for _, step := range [][]string{repository.DropSchema, repository.Schema} {
			if err := run(ctx, conn, step); err != nil {
				log.Fatalf("Failed to reset: %v", err)
			}
		}
		if err := seedCatalog(ctx, conn); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("Database reset")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println(usage)
		os.Exit(1)
	}
}

func run(ctx context.Context, conn *pgx.Conn, statements []string) error {
	for _, query := range statements {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w\nQuery: %s", err, query)
		}
		fmt.Printf("  %s\n", summarize(query))
	}
	return nil
}

// builtinCatalog is shared by every organization
var builtinCatalog = []struct {
	Category    string
	Description string
	Activities  []string
}{
	{"Delivery", "Shipping committed work on time and to scope", []string{"Sprint commitment", "Release", "Estimation accuracy"}},
	{"Quality", "Correctness and maintainability of the work", []string{"Code review", "Test coverage", "Incident follow-up"}},
	{"Collaboration", "Working effectively with others", []string{"Pairing", "Cross-team support", "Knowledge sharing"}},
	{"Communication", "Clarity of written and spoken updates", []string{"Status updates", "Documentation", "Demo"}},
	{"Leadership", "Initiative and ownership beyond the assigned task", []string{"Mentoring", "Technical proposal", "Ownership"}},
}

// seedCatalog upserts built-in categories and activities with stable ids derived from their names
func seedCatalog(ctx context.Context, conn *pgx.Conn) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	activities := 0
	for _, c := range builtinCatalog {
		categoryID := seedID("category:" + c.Category)
		if _, err := tx.Exec(ctx, `
			INSERT INTO categories (id, organization_id, name, description)
			VALUES ($1, NULL, $2, $3)
			ON CONFLICT (id) DO UPDATE SET description = EXCLUDED.description
		`, categoryID, c.Category, c.Description); err != nil {
			return fmt.Errorf("failed to seed category %s: %w", c.Category, err)
		}

		for _, name := range c.Activities {
			if _, err := tx.Exec(ctx, `
				INSERT INTO activities (id, category_id, organization_id, team_id, name)
				VALUES ($1, $2, NULL, NULL, $3)
				ON CONFLICT (id) DO NOTHING
			`, seedID("activity:"+c.Category+":"+name), categoryID, name); err != nil {
				return fmt.Errorf("failed to seed activity %s: %w", name, err)
			}
			activities++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}
	fmt.Printf("  Seeded %d categories and %d activities\n", len(builtinCatalog), activities)
	return nil
}

func seedID(key string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))
}

func summarize(query string) string {
	query = strings.Join(strings.Fields(query), " ")
	if len(query) > 60 {
		return query[:60] + "..."
	}
	return query
}
