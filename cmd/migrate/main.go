package main

import (
	"log"
	"os"

	"noteshare-be/internal/model"
	"noteshare-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM migration...")

	// Extensions first; gen_random_uuid needs pgcrypto.
	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	models := []interface{}{
		&model.User{},
		&model.EmailVerificationToken{},
		&model.RefreshToken{},
		&model.Note{},
		&model.Collaborator{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// Derived search column and the indexes AutoMigrate cannot express.
	postMigrationSQL := []string{
		`ALTER TABLE notes ADD COLUMN IF NOT EXISTS search_vector tsvector;`,
		`UPDATE notes SET search_vector = to_tsvector('english', coalesce(title, '') || ' ' || coalesce(description, '')) WHERE search_vector IS NULL;`,
		`CREATE INDEX IF NOT EXISTS idx_notes_search_vector ON notes USING GIN (search_vector);`,
		`CREATE INDEX IF NOT EXISTS idx_notes_labels ON notes USING GIN (labels);`,
		`CREATE INDEX IF NOT EXISTS idx_collaborators_email_lower ON collaborators (LOWER(email));`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email)) WHERE deleted_at IS NULL;`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("Success: database migration completed via GORM.")
}
