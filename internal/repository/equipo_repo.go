package repository

import (
	"context"

	"gorm.io/gorm"

	"inventario/internal/dto"
	"inventario/internal/model"
)

// EquipoRepository defines the data access contract for equipment records.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type EquipoRepository interface {
	Crear(ctx context.Context, e *model.Equipo) error
	ObtenerPorID(ctx context.Context, id uint) (*model.Equipo, error)
	ObtenerPorCodigo(ctx context.Context, codigo string) (*model.Equipo, error)
	Listar(ctx context.Context, filtro dto.FiltroEquipos) ([]model.Equipo, int64, error)
	ListarTodos(ctx context.Context, sitio, empresa string) ([]model.Equipo, error)
	Actualizar(ctx context.Context, e *model.Equipo) error
	ActualizarCampos(ctx context.Context, id uint, campos map[string]interface{}) error
	Eliminar(ctx context.Context, id uint) error

	// Used inside transactions — callers must pass the tx instance.
	ListarScopeTx(tx *gorm.DB, filtro dto.FiltroTabla) ([]model.Equipo, error)
	ActualizarCamposTx(tx *gorm.DB, id uint, campos map[string]interface{}) error
	EliminarTx(tx *gorm.DB, ids []uint) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type equipoRepo struct{ db *gorm.DB }

func NewEquipoRepository(db *gorm.DB) EquipoRepository { return &equipoRepo{db: db} }

func (r *equipoRepo) Crear(ctx context.Context, e *model.Equipo) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *equipoRepo) ObtenerPorID(ctx context.Context, id uint) (*model.Equipo, error) {
	var e model.Equipo
	err := r.db.WithContext(ctx).Preload("Sitio").First(&e, id).Error
	return &e, err
}

func (r *equipoRepo) ObtenerPorCodigo(ctx context.Context, codigo string) (*model.Equipo, error) {
	var e model.Equipo
	err := r.db.WithContext(ctx).Preload("Sitio").
		Where("codigo_inventario = ?", codigo).First(&e).Error
	return &e, err
}

// filtrar applies the shared sitio/empresa scope. Sitio filters by name
// through a subquery so callers never need the id.
func filtrar(q *gorm.DB, sitio, empresa string) *gorm.DB {
	if sitio != "" {
		q = q.Where("sitio_id IN (?)",
			q.Session(&gorm.Session{NewDB: true}).Model(&model.Sitio{}).Select("id").Where("nombre = ?", sitio))
	}
	if empresa != "" {
		q = q.Where("empresa = ?", empresa)
	}
	return q
}

func (r *equipoRepo) Listar(ctx context.Context, filtro dto.FiltroEquipos) ([]model.Equipo, int64, error) {
	var equipos []model.Equipo
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Equipo{})
	q = filtrar(q, filtro.Sitio, filtro.Empresa)

	if filtro.Tipo != "" {
		q = q.Where("tipo = ?", filtro.Tipo)
	}
	if filtro.Buscar != "" {
		like := "%" + filtro.Buscar + "%"
		q = q.Where("codigo_inventario LIKE ? OR serie LIKE ? OR usuario LIKE ? OR marca_modelo LIKE ?",
			like, like, like, like)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filtro.Page - 1) * filtro.Limit
	err := q.Preload("Sitio").Order("codigo_inventario ASC").
		Limit(filtro.Limit).Offset(offset).Find(&equipos).Error
	return equipos, total, err
}

// ListarTodos returns every record in the sitio/empresa scope without
// pagination. The table load and the exporters use it.
func (r *equipoRepo) ListarTodos(ctx context.Context, sitio, empresa string) ([]model.Equipo, error) {
	var equipos []model.Equipo
	q := filtrar(r.db.WithContext(ctx).Model(&model.Equipo{}), sitio, empresa)
	err := q.Preload("Sitio").Order("codigo_inventario ASC").Find(&equipos).Error
	return equipos, err
}

func (r *equipoRepo) Actualizar(ctx context.Context, e *model.Equipo) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *equipoRepo) ActualizarCampos(ctx context.Context, id uint, campos map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Equipo{}).Where("id = ?", id).Updates(campos).Error
}

func (r *equipoRepo) Eliminar(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Equipo{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListarScopeTx loads every record in the sitio/empresa scope inside an open
// transaction. The table save plans its updates and deletes against this
// snapshot so the whole reconciliation sees one consistent state.
func (r *equipoRepo) ListarScopeTx(tx *gorm.DB, filtro dto.FiltroTabla) ([]model.Equipo, error) {
	var equipos []model.Equipo
	q := filtrar(tx.Model(&model.Equipo{}), filtro.Sitio, filtro.Empresa)
	err := q.Find(&equipos).Error
	return equipos, err
}

func (r *equipoRepo) ActualizarCamposTx(tx *gorm.DB, id uint, campos map[string]interface{}) error {
	return tx.Model(&model.Equipo{}).Where("id = ?", id).Updates(campos).Error
}

func (r *equipoRepo) EliminarTx(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.Delete(&model.Equipo{}, ids).Error
}

func (r *equipoRepo) DB() *gorm.DB { return r.db }
