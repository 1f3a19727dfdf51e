package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

const migrationsDir = "migrations"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Fatal("Error loading .env file")
	}

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable search_path=battle",
		os.Getenv("DATABASE_HOST"),
		os.Getenv("DATABASE_PORT"),
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("DATABASE_NAME"),
	)
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	version, err := currentVersion(db)
	if err != nil {
		log.Fatal(err)
	}
	for {
		next := version + 1
		if err := applyMigration(db, next); err != nil {
			if os.IsNotExist(err) {
				log.Printf("Up to date at version %d", version)
				return
			}
			log.Fatal(err)
		}
		version = next
	}
}

// applyMigration runs migrations/<version>.sql and records the new version.
func applyMigration(db *sql.DB, version int) error {
	script, err := os.ReadFile(fmt.Sprintf("%s/%d.sql", migrationsDir, version))
	if err != nil {
		return err
	}
	if _, err := db.Exec(string(script)); err != nil {
		return fmt.Errorf("migration %d failed: %w", version, err)
	}
	if _, err := db.Exec("UPDATE migrations SET version = $1", version); err != nil {
		return fmt.Errorf("recording version %d failed: %w", version, err)
	}
	log.Printf("Migrated to version %d", version)
	return nil
}

func currentVersion(db *sql.DB) (int, error) {
	if _, err := db.Exec("CREATE SCHEMA IF NOT EXISTS battle;"); err != nil {
		return 0, err
	}
	var version int
	err := db.QueryRow("SELECT version FROM migrations").Scan(&version)
	if err != nil {
		_, err = db.Exec(`
			CREATE TABLE IF NOT EXISTS migrations (
				version INT PRIMARY KEY
			);
			INSERT INTO migrations (version) VALUES (0);
		`)
		return 0, err
	}
	return version, nil
}
