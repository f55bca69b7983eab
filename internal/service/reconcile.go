package service

// reconcile.go — planner for the editable inventory table.
// The client loads the table under a sitio/empresa filter, edits it offline
// and posts the whole thing back. CalcularPlan diffs that payload against the
// rows currently stored for the same scope and produces the exact set of
// column updates and deletions to apply. It touches no database: callers load
// the scope snapshot, run the plan, and apply it inside one transaction.

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"inventario/internal/dto"
	"inventario/internal/model"
)

// ErrTablaInvalida marks rejected table payloads (bad tipo, unknown site,
// missing inventory code). Handlers map it to 422.
var ErrTablaInvalida = errors.New("tabla inválida")

// CambioEquipo is one fine-grained update: only the columns that actually
// differ, keyed by column name, ready for a GORM Updates call.
type CambioEquipo struct {
	ID     uint
	Campos map[string]interface{}
}

// PlanReconciliacion is the outcome of diffing the posted table against the
// stored scope.
//
//   - Actualizar: rows whose cells changed, with the minimal column set.
//   - Eliminar: ids present in the scope but absent from the payload. The
//     user removed those rows from the table, so they go away.
//   - SinCambios: rows that came back identical.
//   - Omitidas: payload rows with id zero. The table save never inserts;
//     new equipment goes through the register endpoint.
//   - NoEncontradas: payload ids that no longer exist in the scope. Another
//     session deleted or moved them after this table was loaded; they are
//     reported back instead of resurrected.
type PlanReconciliacion struct {
	Actualizar    []CambioEquipo
	Eliminar      []uint
	SinCambios    int
	Omitidas      int
	NoEncontradas []uint
}

// CalcularPlan computes the reconciliation plan. actuales is the stored
// snapshot for the filter scope, filas the posted table, sitios the
// nombre -> id map used to resolve the site column. Rows are matched by id
// only; editing the inventory code is an ordinary cell change. When the same
// id appears twice in the payload the first occurrence wins.
func CalcularPlan(actuales []model.Equipo, filas []dto.FilaTabla, sitios map[string]uint) (*PlanReconciliacion, error) {
	porID := make(map[uint]*model.Equipo, len(actuales))
	for i := range actuales {
		porID[actuales[i].ID] = &actuales[i]
	}

	plan := &PlanReconciliacion{}
	vistos := make(map[uint]bool, len(filas))

	for i, fila := range filas {
		if fila.ID == 0 {
			plan.Omitidas++
			continue
		}
		if vistos[fila.ID] {
			continue
		}
		vistos[fila.ID] = true

		actual, ok := porID[fila.ID]
		if !ok {
			plan.NoEncontradas = append(plan.NoEncontradas, fila.ID)
			continue
		}

		campos, err := diffFila(actual, fila, sitios)
		if err != nil {
			return nil, fmt.Errorf("%w: fila %d: %v", ErrTablaInvalida, i+1, err)
		}
		if len(campos) == 0 {
			plan.SinCambios++
			continue
		}
		plan.Actualizar = append(plan.Actualizar, CambioEquipo{ID: fila.ID, Campos: campos})
	}

	for i := range actuales {
		if !vistos[actuales[i].ID] {
			plan.Eliminar = append(plan.Eliminar, actuales[i].ID)
		}
	}

	return plan, nil
}

// diffFila validates one row and returns the changed columns.
func diffFila(actual *model.Equipo, fila dto.FilaTabla, sitios map[string]uint) (map[string]interface{}, error) {
	if fila.CodigoInventario == "" {
		return nil, errors.New("código de inventario vacío")
	}
	if !model.TipoValido(fila.Tipo) {
		return nil, fmt.Errorf("tipo %q no reconocido", fila.Tipo)
	}

	var sitioID *uint
	if fila.Sitio != "" {
		id, ok := sitios[fila.Sitio]
		if !ok {
			return nil, fmt.Errorf("sitio %q no existe", fila.Sitio)
		}
		sitioID = &id
	}

	campos := map[string]interface{}{}
	cambiaStr := func(col, antes, ahora string) {
		if antes != ahora {
			campos[col] = ahora
		}
	}

	cambiaStr("codigo_inventario", actual.CodigoInventario, fila.CodigoInventario)
	cambiaStr("serie", actual.Serie, fila.Serie)
	cambiaStr("tipo", actual.Tipo, fila.Tipo)
	cambiaStr("marca_modelo", actual.MarcaModelo, fila.MarcaModelo)
	cambiaStr("usuario", actual.Usuario, fila.Usuario)
	cambiaStr("caracteristicas", actual.Caracteristicas, fila.Caracteristicas)
	cambiaStr("monitor_codigo", actual.MonitorCodigo, fila.MonitorCodigo)
	cambiaStr("ram", actual.Ram, fila.Ram)
	cambiaStr("procesador", actual.Procesador, fila.Procesador)
	cambiaStr("disco", actual.Disco, fila.Disco)
	cambiaStr("placa_madre", actual.PlacaMadre, fila.PlacaMadre)
	cambiaStr("video", actual.Video, fila.Video)
	cambiaStr("antivirus", actual.Antivirus, fila.Antivirus)
	cambiaStr("version_so", actual.VersionSO, fila.VersionSO)
	cambiaStr("etiqueta_manual", actual.EtiquetaManual, fila.EtiquetaManual)
	cambiaStr("notas", actual.Notas, fila.Notas)
	cambiaStr("empresa", actual.Empresa, fila.Empresa)

	if !mismoSitio(actual.SitioID, sitioID) {
		campos["sitio_id"] = sitioID
	}
	if !mismoDecimal(actual.ValorCompra, fila.ValorCompra) {
		campos["valor_compra"] = fila.ValorCompra
	}

	return campos, nil
}

func mismoSitio(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func mismoDecimal(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
