package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Usuario stores system users with role-based access.
// Rol: "consulta" | "operador" | "administrador"
type Usuario struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey"`
	Username     string    `gorm:"size:150;uniqueIndex;not null"`
	Nombre       string    `gorm:"size:100;not null"`
	PasswordHash string    `gorm:"size:100;not null"`
	Rol          string    `gorm:"type:varchar(20);not null"`
	Activo       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Usuario) TableName() string { return "usuarios" }

// BeforeCreate assigns the UUID in Go: MySQL and SQLite have no portable
// uuid-generating column default.
func (u *Usuario) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
