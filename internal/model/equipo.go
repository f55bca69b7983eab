package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de equipo admitidos.
const (
	TipoLaptop  = "Laptop"
	TipoDesktop = "Desktop"
	TipoServer  = "Server"
)

// Equipo is a tracked asset. CodigoInventario is the user-facing natural key
// (unique, printed on the physical label) but it is editable, so updates and
// deletes are always keyed by ID. The hardware columns (Ram..VersionSO) and
// UltimaConexion are normally filled by the scanner agent, the rest by hand.
type Equipo struct {
	ID               uint   `gorm:"primaryKey"`
	CodigoInventario string `gorm:"size:50;uniqueIndex;not null"`
	Serie            string `gorm:"size:100"`
	Tipo             string `gorm:"size:50;not null"`
	MarcaModelo      string `gorm:"size:100"`
	Usuario          string `gorm:"size:100"`
	Caracteristicas  string `gorm:"type:text"`
	MonitorCodigo    string `gorm:"size:50"`
	SitioID          *uint  `gorm:"index"`

	// Columns added over the life of the schema; see internal/schema.
	Ram            string `gorm:"size:50"`
	Procesador     string `gorm:"size:100"`
	Disco          string `gorm:"size:100"`
	PlacaMadre     string `gorm:"size:100"`
	Video          string `gorm:"size:100"`
	Antivirus      string `gorm:"size:100"`
	VersionSO      string `gorm:"size:100;column:version_so"`
	UltimaConexion *time.Time
	EtiquetaManual string           `gorm:"size:100"`
	Notas          string           `gorm:"type:text"`
	Empresa        string           `gorm:"size:100;index"`
	ValorCompra    *decimal.Decimal `gorm:"type:decimal(12,2)"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Sitio *Sitio `gorm:"foreignKey:SitioID"`
}

func (Equipo) TableName() string { return "equipos" }

// TipoValido reports whether t is one of the admitted equipment types.
func TipoValido(t string) bool {
	return t == TipoLaptop || t == TipoDesktop || t == TipoServer
}
