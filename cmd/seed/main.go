package main

import (
	"log"
	"os"
	"time"

	"noteshare-be/internal/model"
	"noteshare-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

// Seeds a verified demo account with a few notes so a fresh environment has
// something to log in with and search against.
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

	email := getenvDefault("SEED_USER_EMAIL", "demo@noteshare.local")
	password := getenvDefault("SEED_USER_PASSWORD", "demo-password-123")

	var existing model.User
	if err := db.Where("LOWER(email) = LOWER(?)", email).First(&existing).Error; err == nil {
		color.Yellow("Demo user %s already exists, skipping", email)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Error: Failed to hash password: %v", err)
	}
	hashStr := string(hash)

	now := time.Now()
	user := model.User{
		Id:            uuid.New(),
		Email:         email,
		PasswordHash:  &hashStr,
		FullName:      "Demo User",
		EmailVerified: true,
		VerifiedAt:    &now,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("Error: Failed to create demo user: %v", err)
	}

	notes := []model.Note{
		{
			Id:          uuid.New(),
			UserId:      user.Id,
			UrlToken:    uuid.New(),
			Title:       "Welcome to NoteShare",
			Description: "This public note shows up in your catalog for anyone to read.",
			Labels:      datatypes.NewJSONSlice([]string{"welcome", "public"}),
			Visibility:  "public",
		},
		{
			Id:          uuid.New(),
			UserId:      user.Id,
			UrlToken:    uuid.New(),
			Title:       "Grocery list",
			Description: "Milk, eggs, coffee. Private notes stay between you and your collaborators.",
			Labels:      datatypes.NewJSONSlice([]string{"personal"}),
			Visibility:  "private",
		},
		{
			Id:          uuid.New(),
			UserId:      user.Id,
			UrlToken:    uuid.New(),
			Title:       "Article draft",
			Description: "Half-finished thoughts on full-text search in Postgres.",
			Labels:      datatypes.NewJSONSlice([]string{"writing", "postgres"}),
			Visibility:  "draft",
		},
	}
	for i := range notes {
		if err := db.Create(&notes[i]).Error; err != nil {
			log.Fatalf("Error: Failed to create note %q: %v", notes[i].Title, err)
		}
	}

	if err := db.Exec(
		`UPDATE notes SET search_vector = to_tsvector('english', coalesce(title, '') || ' ' || coalesce(description, '')) WHERE user_id = ?`,
		user.Id,
	).Error; err != nil {
		color.Yellow("Warn: failed to backfill search vectors: %v", err)
	}

	color.Green("Seeded demo user %s (password: %s) with %d notes", email, password, len(notes))
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
