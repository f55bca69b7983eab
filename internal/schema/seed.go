package schema

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"inventario/internal/model"
)

// SitiosSemilla are the fixed sites every installation starts with. LIBRE
// and DEFECTUOSA are status buckets rather than places; equipment parked in
// them is waiting for reassignment or repair.
var SitiosSemilla = []string{"LIBRE", "DEFECTUOSA", "OFICINA CENTRAL"}

// SembrarSitios inserts the seed sites with insert-or-ignore semantics, so
// running it after the first boot is a no-op and never disturbs user rows.
func SembrarSitios(db *gorm.DB) error {
	for _, nombre := range SitiosSemilla {
		err := db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.Sitio{Nombre: nombre}).Error
		if err != nil {
			return err
		}
	}
	return nil
}
