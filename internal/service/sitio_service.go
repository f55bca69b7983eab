package service

import (
	"context"

	"inventario/internal/dto"
	"inventario/internal/model"
	"inventario/internal/repository"
)

// SitioService manages the site catalog. Sites are created and deleted but
// never renamed; a rename would silently re-label every piece of equipment
// assigned to it, which auditors do not appreciate.
type SitioService interface {
	Crear(ctx context.Context, req dto.CrearSitioRequest) (*dto.SitioResponse, error)
	Listar(ctx context.Context) ([]dto.SitioResponse, error)
	Eliminar(ctx context.Context, id uint) error
}

type sitioService struct {
	repo repository.SitioRepository
}

func NewSitioService(repo repository.SitioRepository) SitioService {
	return &sitioService{repo: repo}
}

func (s *sitioService) Crear(ctx context.Context, req dto.CrearSitioRequest) (*dto.SitioResponse, error) {
	sitio := &model.Sitio{Nombre: req.Nombre}
	if err := s.repo.Crear(ctx, sitio); err != nil {
		return nil, err
	}
	return &dto.SitioResponse{ID: sitio.ID, Nombre: sitio.Nombre}, nil
}

func (s *sitioService) Listar(ctx context.Context) ([]dto.SitioResponse, error) {
	sitios, err := s.repo.Listar(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.SitioResponse, len(sitios))
	for i, st := range sitios {
		resp[i] = dto.SitioResponse{ID: st.ID, Nombre: st.Nombre}
	}
	return resp, nil
}

// Eliminar removes the site. Equipment assigned to it is kept and left
// unassigned (the FK sets sitio_id to NULL).
func (s *sitioService) Eliminar(ctx context.Context, id uint) error {
	if _, err := s.repo.ObtenerPorID(ctx, id); err != nil {
		return err
	}
	return s.repo.Eliminar(ctx, id)
}
