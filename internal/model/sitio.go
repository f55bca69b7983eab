package model

import "time"

// Sitio is a physical location or status bucket equipment is assigned to.
// Besides real obras, the seed rows act as pseudo-locations: LIBRE is the
// free pool, DEFECTUOSA the broken pile, OFICINA CENTRAL the head office.
// Sites are created and deleted, never renamed.
type Sitio struct {
	ID        uint   `gorm:"primaryKey"`
	Nombre    string `gorm:"size:255;uniqueIndex;not null"`
	CreatedAt time.Time
}

func (Sitio) TableName() string { return "sitios" }
