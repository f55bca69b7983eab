package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RegistrarEquipoRequest struct {
	CodigoInventario string           `json:"codigo_inventario" validate:"required,min=1,max=50"`
	Serie            string           `json:"serie"             validate:"max=100"`
	Tipo             string           `json:"tipo"              validate:"required,oneof=Laptop Desktop Server"`
	MarcaModelo      string           `json:"marca_modelo"      validate:"max=150"`
	Usuario          string           `json:"usuario"           validate:"max=150"`
	Caracteristicas  string           `json:"caracteristicas"`
	MonitorCodigo    string           `json:"monitor_codigo"    validate:"max=50"`
	SitioID          *uint            `json:"sitio_id"`
	Ram              string           `json:"ram"`
	Procesador       string           `json:"procesador"`
	Disco            string           `json:"disco"`
	PlacaMadre       string           `json:"placa_madre"`
	Video            string           `json:"video"`
	Antivirus        string           `json:"antivirus"`
	VersionSO        string           `json:"version_so"`
	EtiquetaManual   string           `json:"etiqueta_manual"`
	Notas            string           `json:"notas"`
	Empresa          string           `json:"empresa"           validate:"max=150"`
	ValorCompra      *decimal.Decimal `json:"valor_compra"`
}

type ActualizarEquipoRequest struct {
	Serie           *string          `json:"serie"           validate:"omitempty,max=100"`
	Tipo            *string          `json:"tipo"            validate:"omitempty,oneof=Laptop Desktop Server"`
	MarcaModelo     *string          `json:"marca_modelo"    validate:"omitempty,max=150"`
	Usuario         *string          `json:"usuario"         validate:"omitempty,max=150"`
	Caracteristicas *string          `json:"caracteristicas"`
	MonitorCodigo   *string          `json:"monitor_codigo"  validate:"omitempty,max=50"`
	SitioID         *uint            `json:"sitio_id"`
	Ram             *string          `json:"ram"`
	Procesador      *string          `json:"procesador"`
	Disco           *string          `json:"disco"`
	PlacaMadre      *string          `json:"placa_madre"`
	Video           *string          `json:"video"`
	Antivirus       *string          `json:"antivirus"`
	VersionSO       *string          `json:"version_so"`
	EtiquetaManual  *string          `json:"etiqueta_manual"`
	Notas           *string          `json:"notas"`
	Empresa         *string          `json:"empresa"         validate:"omitempty,max=150"`
	ValorCompra     *decimal.Decimal `json:"valor_compra"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

// FiltroEquipos filters the equipment list. Sitio matches by site name
// because the UI works with names, not ids.
type FiltroEquipos struct {
	Sitio   string `form:"sitio"`
	Empresa string `form:"empresa"`
	Tipo    string `form:"tipo"    validate:"omitempty,oneof=Laptop Desktop Server"`
	Buscar  string `form:"buscar"`
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type EquipoResponse struct {
	ID               uint             `json:"id"`
	CodigoInventario string           `json:"codigo_inventario"`
	Serie            string           `json:"serie"`
	Tipo             string           `json:"tipo"`
	MarcaModelo      string           `json:"marca_modelo"`
	Usuario          string           `json:"usuario"`
	Caracteristicas  string           `json:"caracteristicas"`
	MonitorCodigo    string           `json:"monitor_codigo"`
	SitioID          *uint            `json:"sitio_id"`
	Sitio            string           `json:"sitio"`
	Ram              string           `json:"ram"`
	Procesador       string           `json:"procesador"`
	Disco            string           `json:"disco"`
	PlacaMadre       string           `json:"placa_madre"`
	Video            string           `json:"video"`
	Antivirus        string           `json:"antivirus"`
	VersionSO        string           `json:"version_so"`
	UltimaConexion   *time.Time       `json:"ultima_conexion"`
	EtiquetaManual   string           `json:"etiqueta_manual"`
	Notas            string           `json:"notas"`
	Empresa          string           `json:"empresa"`
	ValorCompra      *decimal.Decimal `json:"valor_compra"`
}

type EquipoListResponse struct {
	Data       []EquipoResponse `json:"data"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

// ─── Tabla editable ──────────────────────────────────────────────────────────

// FilaTabla is one row of the editable inventory table as the client sends it
// back. ID zero marks a row the client added locally; those rows are not
// persisted by the table save and are reported in ResultadoTabla.Omitidas.
type FilaTabla struct {
	ID               uint             `json:"id"`
	CodigoInventario string           `json:"codigo_inventario"`
	Serie            string           `json:"serie"`
	Tipo             string           `json:"tipo"`
	MarcaModelo      string           `json:"marca_modelo"`
	Usuario          string           `json:"usuario"`
	Caracteristicas  string           `json:"caracteristicas"`
	MonitorCodigo    string           `json:"monitor_codigo"`
	Sitio            string           `json:"sitio"`
	Ram              string           `json:"ram"`
	Procesador       string           `json:"procesador"`
	Disco            string           `json:"disco"`
	PlacaMadre       string           `json:"placa_madre"`
	Video            string           `json:"video"`
	Antivirus        string           `json:"antivirus"`
	VersionSO        string           `json:"version_so"`
	EtiquetaManual   string           `json:"etiqueta_manual"`
	Notas            string           `json:"notas"`
	Empresa          string           `json:"empresa"`
	ValorCompra      *decimal.Decimal `json:"valor_compra"`
}

// FiltroTabla is the filter that was active when the client loaded the table.
// The save only deletes rows inside this scope: a table filtered to one site
// must not wipe the rest of the inventory.
type FiltroTabla struct {
	Sitio   string `json:"sitio"`
	Empresa string `json:"empresa"`
}

type GuardarTablaRequest struct {
	Filas  []FilaTabla `json:"filas" validate:"required"`
	Filtro FiltroTabla `json:"filtro"`
}

type ResultadoTabla struct {
	Actualizadas  int    `json:"actualizadas"`
	Eliminadas    int    `json:"eliminadas"`
	SinCambios    int    `json:"sin_cambios"`
	Omitidas      int    `json:"omitidas"`
	NoEncontradas []uint `json:"no_encontradas,omitempty"`
}
