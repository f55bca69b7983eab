// Package schema brings the database to the current expected shape on every
// startup. The schema evolved historically by tacking columns onto the base
// tables, so instead of a versioned migration tool there is an ordered list
// of idempotent steps: each one checks what exists before acting and is safe
// to re-run any number of times. No version marker is stored.
package schema

import (
	"fmt"

	"gorm.io/gorm"

	"inventario/internal/model"
)

// Migracion is one idempotent schema step. Steps run in slice order; the
// first failure aborts with the step's identity wrapped in the error, so a
// broken migration never gets silently skipped.
type Migracion struct {
	ID     int
	Nombre string
	Run    func(db *gorm.DB) error
}

// columnasAgregadas are the equipos columns added after the base deploy,
// in the order they appeared. Names are the model's Go field names; the
// migrator derives column name and SQL type from the model definition.
var columnasAgregadas = []string{
	"Ram",
	"Procesador",
	"Disco",
	"PlacaMadre",
	"Video",
	"Antivirus",
	"VersionSO",
	"UltimaConexion",
	"EtiquetaManual",
	"Notas",
	"Empresa",
	"ValorCompra",
}

// Migraciones is the ordered, exported migration list. Exported so each step
// can be exercised on its own in tests.
var Migraciones = []Migracion{
	{ID: 1, Nombre: "crear tablas base", Run: crearTablasBase},
	{ID: 2, Nombre: "agregar columnas de equipos", Run: agregarColumnasEquipos},
	{ID: 3, Nombre: "crear tabla usuarios", Run: crearTablaUsuarios},
	{ID: 4, Nombre: "indices secundarios", Run: crearIndicesSecundarios},
}

// Sync runs every migration in order and then seeds the fixed sites.
// Any failure is returned as-is to the caller, which treats it as fatal:
// serving requests against a half-migrated schema is worse than not starting.
func Sync(db *gorm.DB) error {
	for _, m := range Migraciones {
		if err := m.Run(db); err != nil {
			return fmt.Errorf("migración %d (%s): %w", m.ID, m.Nombre, err)
		}
	}
	return SembrarSitios(db)
}

// crearTablasBase creates sitios and equipos with the original column set.
// Later columns are added by migration 2, mirroring how the production
// schema actually grew; creating the full table here would make the
// add-column steps untestable no-ops.
//
// The DDL is per-dialect because AUTO_INCREMENT syntax differs. equipos
// references sitios with ON DELETE SET NULL: removing an obra must not
// destroy the asset rows assigned to it, they just become unassigned.
func crearTablasBase(db *gorm.DB) error {
	var ddl []string
	switch db.Dialector.Name() {
	case "mysql":
		ddl = []string{
			"CREATE TABLE IF NOT EXISTS `sitios` (" +
				"`id` INT UNSIGNED AUTO_INCREMENT PRIMARY KEY," +
				"`nombre` VARCHAR(255) NOT NULL," +
				"`created_at` DATETIME(3) NULL," +
				"UNIQUE KEY `uni_sitios_nombre` (`nombre`))",
			"CREATE TABLE IF NOT EXISTS `equipos` (" +
				"`id` INT UNSIGNED AUTO_INCREMENT PRIMARY KEY," +
				"`codigo_inventario` VARCHAR(50) NOT NULL," +
				"`serie` VARCHAR(100) NULL," +
				"`tipo` VARCHAR(50) NOT NULL," +
				"`marca_modelo` VARCHAR(100) NULL," +
				"`usuario` VARCHAR(100) NULL," +
				"`caracteristicas` TEXT NULL," +
				"`monitor_codigo` VARCHAR(50) NULL," +
				"`sitio_id` INT UNSIGNED NULL," +
				"`created_at` DATETIME(3) NULL," +
				"`updated_at` DATETIME(3) NULL," +
				"UNIQUE KEY `uni_equipos_codigo_inventario` (`codigo_inventario`)," +
				"CONSTRAINT `fk_equipos_sitio` FOREIGN KEY (`sitio_id`) " +
				"REFERENCES `sitios` (`id`) ON DELETE SET NULL)",
		}
	case "postgres":
		ddl = []string{
			`CREATE TABLE IF NOT EXISTS sitios (
				id SERIAL PRIMARY KEY,
				nombre VARCHAR(255) NOT NULL,
				created_at TIMESTAMPTZ NULL,
				CONSTRAINT uni_sitios_nombre UNIQUE (nombre))`,
			`CREATE TABLE IF NOT EXISTS equipos (
				id SERIAL PRIMARY KEY,
				codigo_inventario VARCHAR(50) NOT NULL,
				serie VARCHAR(100) NULL,
				tipo VARCHAR(50) NOT NULL,
				marca_modelo VARCHAR(100) NULL,
				usuario VARCHAR(100) NULL,
				caracteristicas TEXT NULL,
				monitor_codigo VARCHAR(50) NULL,
				sitio_id INTEGER NULL,
				created_at TIMESTAMPTZ NULL,
				updated_at TIMESTAMPTZ NULL,
				CONSTRAINT uni_equipos_codigo_inventario UNIQUE (codigo_inventario),
				CONSTRAINT fk_equipos_sitio FOREIGN KEY (sitio_id)
					REFERENCES sitios (id) ON DELETE SET NULL)`,
		}
	case "sqlite":
		ddl = []string{
			`CREATE TABLE IF NOT EXISTS sitios (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				nombre VARCHAR(255) NOT NULL UNIQUE,
				created_at DATETIME NULL)`,
			`CREATE TABLE IF NOT EXISTS equipos (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				codigo_inventario VARCHAR(50) NOT NULL UNIQUE,
				serie VARCHAR(100) NULL,
				tipo VARCHAR(50) NOT NULL,
				marca_modelo VARCHAR(100) NULL,
				usuario VARCHAR(100) NULL,
				caracteristicas TEXT NULL,
				monitor_codigo VARCHAR(50) NULL,
				sitio_id INTEGER NULL REFERENCES sitios (id) ON DELETE SET NULL,
				created_at DATETIME NULL,
				updated_at DATETIME NULL)`,
		}
	default:
		return fmt.Errorf("dialecto no soportado: %s", db.Dialector.Name())
	}

	for _, stmt := range ddl {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// agregarColumnasEquipos adds each historically-added column when missing.
// The HasColumn guard replaces the old "run ALTER TABLE and swallow the
// duplicate-column error" approach: a real failure now surfaces.
func agregarColumnasEquipos(db *gorm.DB) error {
	m := db.Migrator()
	for _, campo := range columnasAgregadas {
		if m.HasColumn(&model.Equipo{}, campo) {
			continue
		}
		if err := m.AddColumn(&model.Equipo{}, campo); err != nil {
			return fmt.Errorf("columna %s: %w", campo, err)
		}
	}
	return nil
}

func crearTablaUsuarios(db *gorm.DB) error {
	m := db.Migrator()
	if m.HasTable(&model.Usuario{}) {
		return nil
	}
	return m.CreateTable(&model.Usuario{})
}

// crearIndicesSecundarios backfills the lookup indexes the list filters use.
// CreateIndex derives names from the model tags, so HasIndex guards keep the
// step idempotent across all three dialects.
func crearIndicesSecundarios(db *gorm.DB) error {
	m := db.Migrator()
	for _, campo := range []string{"SitioID", "Empresa"} {
		if m.HasIndex(&model.Equipo{}, campo) {
			continue
		}
		if err := m.CreateIndex(&model.Equipo{}, campo); err != nil {
			return fmt.Errorf("índice %s: %w", campo, err)
		}
	}
	return nil
}
