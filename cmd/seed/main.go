package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/javiercm/go-blog-api/config"
	"github.com/javiercm/go-blog-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	username := "admin"
	email := "admin@example.com"
	password := "changeme123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (username, email, password_hash, is_superuser, permissions)
		VALUES ($1, $2, $3, TRUE, $4)
		ON CONFLICT (username) DO UPDATE SET is_superuser = TRUE
		RETURNING id
	`, username, email, hash, `{add_post,change_post,delete_post,add_comment,change_comment,delete_comment}`).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed superuser: %v", err)
	}
	fmt.Printf("seeded superuser: id=%s username=%s password=%s\n", id, username, password)
}
