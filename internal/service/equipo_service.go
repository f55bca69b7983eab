package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"inventario/internal/dto"
	"inventario/internal/model"
	"inventario/internal/repository"
)

type EquipoService interface {
	Registrar(ctx context.Context, req dto.RegistrarEquipoRequest) (*dto.EquipoResponse, error)
	Obtener(ctx context.Context, id uint) (*dto.EquipoResponse, error)
	Listar(ctx context.Context, filtro dto.FiltroEquipos) (*dto.EquipoListResponse, error)
	Actualizar(ctx context.Context, id uint, req dto.ActualizarEquipoRequest) (*dto.EquipoResponse, error)
	Eliminar(ctx context.Context, id uint) error

	// Tabla loads the editable table for a filter scope; GuardarTabla
	// reconciles the edited table back into the database.
	Tabla(ctx context.Context, filtro dto.FiltroTabla) ([]dto.FilaTabla, error)
	GuardarTabla(ctx context.Context, req dto.GuardarTablaRequest) (*dto.ResultadoTabla, error)

	// AplicarReporte upserts the record a scanning agent pushed, keyed by
	// inventory code.
	AplicarReporte(ctx context.Context, rep dto.ReporteAgente) error
}

type equipoService struct {
	repo      repository.EquipoRepository
	sitioRepo repository.SitioRepository
}

func NewEquipoService(repo repository.EquipoRepository, sitioRepo repository.SitioRepository) EquipoService {
	return &equipoService{repo: repo, sitioRepo: sitioRepo}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── CRUD ──────────────────────────────────────────────────────────────────────

func (s *equipoService) Registrar(ctx context.Context, req dto.RegistrarEquipoRequest) (*dto.EquipoResponse, error) {
	e := &model.Equipo{
		CodigoInventario: req.CodigoInventario,
		Serie:            req.Serie,
		Tipo:             req.Tipo,
		MarcaModelo:      req.MarcaModelo,
		Usuario:          req.Usuario,
		Caracteristicas:  req.Caracteristicas,
		MonitorCodigo:    req.MonitorCodigo,
		SitioID:          req.SitioID,
		Ram:              req.Ram,
		Procesador:       req.Procesador,
		Disco:            req.Disco,
		PlacaMadre:       req.PlacaMadre,
		Video:            req.Video,
		Antivirus:        req.Antivirus,
		VersionSO:        req.VersionSO,
		EtiquetaManual:   req.EtiquetaManual,
		Notas:            req.Notas,
		Empresa:          req.Empresa,
		ValorCompra:      req.ValorCompra,
	}
	if err := s.repo.Crear(ctx, e); err != nil {
		return nil, err
	}
	creado, err := s.repo.ObtenerPorID(ctx, e.ID)
	if err != nil {
		return equipoToResponse(e), nil
	}
	return equipoToResponse(creado), nil
}

func (s *equipoService) Obtener(ctx context.Context, id uint) (*dto.EquipoResponse, error) {
	e, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, err
	}
	return equipoToResponse(e), nil
}

func (s *equipoService) Listar(ctx context.Context, filtro dto.FiltroEquipos) (*dto.EquipoListResponse, error) {
	if filtro.Page < 1 {
		filtro.Page = 1
	}
	if filtro.Limit < 1 {
		filtro.Limit = 50
	}
	equipos, total, err := s.repo.Listar(ctx, filtro)
	if err != nil {
		return nil, err
	}
	data := make([]dto.EquipoResponse, 0, len(equipos))
	for i := range equipos {
		data = append(data, *equipoToResponse(&equipos[i]))
	}
	return &dto.EquipoListResponse{
		Data:       data,
		Total:      total,
		Page:       filtro.Page,
		Limit:      filtro.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filtro.Limit))),
	}, nil
}

func (s *equipoService) Actualizar(ctx context.Context, id uint, req dto.ActualizarEquipoRequest) (*dto.EquipoResponse, error) {
	e, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Serie != nil {
		e.Serie = *req.Serie
	}
	if req.Tipo != nil {
		e.Tipo = *req.Tipo
	}
	if req.MarcaModelo != nil {
		e.MarcaModelo = *req.MarcaModelo
	}
	if req.Usuario != nil {
		e.Usuario = *req.Usuario
	}
	if req.Caracteristicas != nil {
		e.Caracteristicas = *req.Caracteristicas
	}
	if req.MonitorCodigo != nil {
		e.MonitorCodigo = *req.MonitorCodigo
	}
	if req.SitioID != nil {
		if *req.SitioID == 0 {
			e.SitioID = nil
		} else {
			e.SitioID = req.SitioID
		}
	}
	if req.Ram != nil {
		e.Ram = *req.Ram
	}
	if req.Procesador != nil {
		e.Procesador = *req.Procesador
	}
	if req.Disco != nil {
		e.Disco = *req.Disco
	}
	if req.PlacaMadre != nil {
		e.PlacaMadre = *req.PlacaMadre
	}
	if req.Video != nil {
		e.Video = *req.Video
	}
	if req.Antivirus != nil {
		e.Antivirus = *req.Antivirus
	}
	if req.VersionSO != nil {
		e.VersionSO = *req.VersionSO
	}
	if req.EtiquetaManual != nil {
		e.EtiquetaManual = *req.EtiquetaManual
	}
	if req.Notas != nil {
		e.Notas = *req.Notas
	}
	if req.Empresa != nil {
		e.Empresa = *req.Empresa
	}
	if req.ValorCompra != nil {
		e.ValorCompra = req.ValorCompra
	}

	e.Sitio = nil
	if err := s.repo.Actualizar(ctx, e); err != nil {
		return nil, err
	}
	actualizado, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return equipoToResponse(e), nil
	}
	return equipoToResponse(actualizado), nil
}

func (s *equipoService) Eliminar(ctx context.Context, id uint) error {
	return s.repo.Eliminar(ctx, id)
}

// ── Tabla editable ────────────────────────────────────────────────────────────

func (s *equipoService) Tabla(ctx context.Context, filtro dto.FiltroTabla) ([]dto.FilaTabla, error) {
	equipos, err := s.repo.ListarTodos(ctx, filtro.Sitio, filtro.Empresa)
	if err != nil {
		return nil, err
	}
	filas := make([]dto.FilaTabla, 0, len(equipos))
	for i := range equipos {
		filas = append(filas, equipoToFila(&equipos[i]))
	}
	return filas, nil
}

// GuardarTabla reconciles the posted table against the stored scope inside a
// single transaction: loads the scope snapshot, plans the fine-grained
// updates and the deletions, and applies both. Either everything lands or
// nothing does.
func (s *equipoService) GuardarTabla(ctx context.Context, req dto.GuardarTablaRequest) (*dto.ResultadoTabla, error) {
	sitios, err := s.sitioRepo.MapaNombreID(ctx)
	if err != nil {
		return nil, err
	}

	var plan *PlanReconciliacion
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		actuales, err := s.repo.ListarScopeTx(tx, req.Filtro)
		if err != nil {
			return err
		}

		plan, err = CalcularPlan(actuales, req.Filas, sitios)
		if err != nil {
			return err
		}

		for _, cambio := range plan.Actualizar {
			if err := s.repo.ActualizarCamposTx(tx, cambio.ID, cambio.Campos); err != nil {
				return fmt.Errorf("actualizar equipo %d: %w", cambio.ID, err)
			}
		}
		return s.repo.EliminarTx(tx, plan.Eliminar)
	})
	if txErr != nil {
		return nil, txErr
	}

	return &dto.ResultadoTabla{
		Actualizadas:  len(plan.Actualizar),
		Eliminadas:    len(plan.Eliminar),
		SinCambios:    plan.SinCambios,
		Omitidas:      plan.Omitidas,
		NoEncontradas: plan.NoEncontradas,
	}, nil
}

// ── Reporte de agente ─────────────────────────────────────────────────────────

// AplicarReporte upserts by inventory code. Unknown codes create a new record
// (agents discover machines before anyone registers them); known codes get
// their hardware columns overwritten. Either way ultima_conexion moves to now.
func (s *equipoService) AplicarReporte(ctx context.Context, rep dto.ReporteAgente) error {
	ahora := time.Now()

	existente, err := s.repo.ObtenerPorCodigo(ctx, rep.CodigoInventario)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		tipo := rep.Tipo
		if tipo == "" {
			tipo = model.TipoDesktop
		}
		nuevo := &model.Equipo{
			CodigoInventario: rep.CodigoInventario,
			Serie:            rep.Serie,
			Tipo:             tipo,
			MarcaModelo:      rep.MarcaModelo,
			Usuario:          rep.Usuario,
			Ram:              rep.Ram,
			Procesador:       rep.Procesador,
			Disco:            rep.Disco,
			PlacaMadre:       rep.PlacaMadre,
			Video:            rep.Video,
			Antivirus:        rep.Antivirus,
			VersionSO:        rep.VersionSO,
			Empresa:          rep.Empresa,
			UltimaConexion:   &ahora,
		}
		return s.repo.Crear(ctx, nuevo)
	}

	campos := map[string]interface{}{"ultima_conexion": &ahora}
	pon := func(col, v string) {
		if v != "" {
			campos[col] = v
		}
	}
	pon("serie", rep.Serie)
	pon("tipo", rep.Tipo)
	pon("marca_modelo", rep.MarcaModelo)
	pon("usuario", rep.Usuario)
	pon("ram", rep.Ram)
	pon("procesador", rep.Procesador)
	pon("disco", rep.Disco)
	pon("placa_madre", rep.PlacaMadre)
	pon("video", rep.Video)
	pon("antivirus", rep.Antivirus)
	pon("version_so", rep.VersionSO)
	pon("empresa", rep.Empresa)

	return s.repo.ActualizarCampos(ctx, existente.ID, campos)
}

// ── Mapeo a DTOs ──────────────────────────────────────────────────────────────

func equipoToResponse(e *model.Equipo) *dto.EquipoResponse {
	sitio := ""
	if e.Sitio != nil {
		sitio = e.Sitio.Nombre
	}
	return &dto.EquipoResponse{
		ID:               e.ID,
		CodigoInventario: e.CodigoInventario,
		Serie:            e.Serie,
		Tipo:             e.Tipo,
		MarcaModelo:      e.MarcaModelo,
		Usuario:          e.Usuario,
		Caracteristicas:  e.Caracteristicas,
		MonitorCodigo:    e.MonitorCodigo,
		SitioID:          e.SitioID,
		Sitio:            sitio,
		Ram:              e.Ram,
		Procesador:       e.Procesador,
		Disco:            e.Disco,
		PlacaMadre:       e.PlacaMadre,
		Video:            e.Video,
		Antivirus:        e.Antivirus,
		VersionSO:        e.VersionSO,
		UltimaConexion:   e.UltimaConexion,
		EtiquetaManual:   e.EtiquetaManual,
		Notas:            e.Notas,
		Empresa:          e.Empresa,
		ValorCompra:      e.ValorCompra,
	}
}

func equipoToFila(e *model.Equipo) dto.FilaTabla {
	sitio := ""
	if e.Sitio != nil {
		sitio = e.Sitio.Nombre
	}
	return dto.FilaTabla{
		ID:               e.ID,
		CodigoInventario: e.CodigoInventario,
		Serie:            e.Serie,
		Tipo:             e.Tipo,
		MarcaModelo:      e.MarcaModelo,
		Usuario:          e.Usuario,
		Caracteristicas:  e.Caracteristicas,
		MonitorCodigo:    e.MonitorCodigo,
		Sitio:            sitio,
		Ram:              e.Ram,
		Procesador:       e.Procesador,
		Disco:            e.Disco,
		PlacaMadre:       e.PlacaMadre,
		Video:            e.Video,
		Antivirus:        e.Antivirus,
		VersionSO:        e.VersionSO,
		EtiquetaManual:   e.EtiquetaManual,
		Notas:            e.Notas,
		Empresa:          e.Empresa,
		ValorCompra:      e.ValorCompra,
	}
}
