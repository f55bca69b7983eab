// cmd/seedadmin/main.go — Crea/actualiza el usuario administrador inicial.
// Uso: ADMIN_USERNAME=admin ADMIN_PASSWORD=secreto go run cmd/seedadmin/main.go
package main

import (
	"fmt"
	"log"
	"os"

	"inventario/internal/config"
	"inventario/internal/infra"
	"inventario/internal/model"
	"inventario/internal/schema"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/clause"
)

func main() {
	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin1234"
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		log.Fatalf("bcrypt error: %v", err)
	}

	db, err := infra.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	// Sync first so the tool works against an empty database.
	if err := schema.Sync(db); err != nil {
		log.Fatalf("schema error: %v", err)
	}

	admin := model.Usuario{
		Username:     username,
		Nombre:       "Administrador",
		PasswordHash: string(hash),
		Rol:          "administrador",
		Activo:       true,
	}

	// OnConflict renders the right upsert for mysql and postgres alike.
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash", "nombre", "rol", "activo"}),
	}).Create(&admin)
	if result.Error != nil {
		log.Fatalf("upsert error: %v", result.Error)
	}

	fmt.Printf("✅ Usuario '%s' creado/actualizado con rol administrador\n", username)
}
