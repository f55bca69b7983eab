package repository

import (
	"context"

	"gorm.io/gorm"

	"inventario/internal/model"
)

// SitioRepository defines CRUD operations for Sitio.
type SitioRepository interface {
	Crear(ctx context.Context, s *model.Sitio) error
	Listar(ctx context.Context) ([]model.Sitio, error)
	ObtenerPorID(ctx context.Context, id uint) (*model.Sitio, error)
	Eliminar(ctx context.Context, id uint) error

	// MapaNombreID returns nombre -> id for every site. The table save and
	// the agent ingest resolve site names through this map instead of one
	// query per row.
	MapaNombreID(ctx context.Context) (map[string]uint, error)
}

type sitioRepository struct{ db *gorm.DB }

func NewSitioRepository(db *gorm.DB) SitioRepository {
	return &sitioRepository{db: db}
}

func (r *sitioRepository) Crear(ctx context.Context, s *model.Sitio) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sitioRepository) Listar(ctx context.Context) ([]model.Sitio, error) {
	var list []model.Sitio
	err := r.db.WithContext(ctx).Order("id desc").Find(&list).Error
	return list, err
}

func (r *sitioRepository) ObtenerPorID(ctx context.Context, id uint) (*model.Sitio, error) {
	var s model.Sitio
	err := r.db.WithContext(ctx).First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sitioRepository) Eliminar(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Sitio{}, id).Error
}

func (r *sitioRepository) MapaNombreID(ctx context.Context) (map[string]uint, error) {
	var list []model.Sitio
	if err := r.db.WithContext(ctx).Find(&list).Error; err != nil {
		return nil, err
	}
	m := make(map[string]uint, len(list))
	for _, s := range list {
		m[s.Nombre] = s.ID
	}
	return m, nil
}
