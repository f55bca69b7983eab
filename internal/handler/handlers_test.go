package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"inventario/internal/dto"
	"inventario/internal/model"
	"inventario/internal/repository"
	"inventario/internal/schema"
	"inventario/internal/service"
)

type mailerNulo struct{}

func (mailerNulo) SendExport(_, _, _, _, _ string, _ []byte) error { return nil }

// testStack wires the real handlers over an in-memory database, without the
// auth middleware: these tests cover binding, status codes and payloads.
func testStack(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, schema.Sync(db))

	equipoRepo := repository.NewEquipoRepository(db)
	sitioRepo := repository.NewSitioRepository(db)
	equipoSvc := service.NewEquipoService(equipoRepo, sitioRepo)
	exportSvc := service.NewExportService(equipoRepo, mailerNulo{}, nil)

	equipos := NewEquiposHandler(equipoSvc)
	sitios := NewSitiosHandler(service.NewSitioService(sitioRepo))
	export := NewExportHandler(exportSvc)
	agente := NewAgenteHandler(equipoSvc, nil)

	r := gin.New()
	r.GET("/health", Health(db, nil))
	v1 := r.Group("/v1")
	{
		v1.GET("/sitios", sitios.Listar)
		v1.POST("/sitios", sitios.Crear)
		v1.DELETE("/sitios/:id", sitios.Eliminar)

		v1.GET("/equipos", equipos.Listar)
		v1.POST("/equipos", equipos.Registrar)
		v1.GET("/equipos/tabla", equipos.Tabla)
		v1.POST("/equipos/tabla", equipos.GuardarTabla)
		v1.GET("/equipos/export", export.Exportar)
		v1.GET("/equipos/:id", equipos.Obtener)
		v1.PUT("/equipos/:id", equipos.Actualizar)
		v1.DELETE("/equipos/:id", equipos.Eliminar)
		v1.GET("/equipos/:id/acta", export.Acta)

		v1.POST("/agente/reportes", agente.Reporte)
	}
	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	w := httptest.NewRecorder()
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func registrarPC(t *testing.T, r *gin.Engine, codigo string) dto.EquipoResponse {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/v1/equipos", dto.RegistrarEquipoRequest{
		CodigoInventario: codigo,
		Tipo:             model.TipoDesktop,
		Empresa:          "ACME",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp dto.EquipoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// ── Sitios ────────────────────────────────────────────────────────────────────

func TestSitiosCrearYListar(t *testing.T) {
	r, _ := testStack(t)

	w := doJSON(t, r, http.MethodPost, "/v1/sitios", dto.CrearSitioRequest{Nombre: "OBRA NORTE"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/v1/sitios", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sitios []dto.SitioResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sitios))
	// Las tres semillas más el recién creado.
	assert.Len(t, sitios, 4)
}

func TestSitiosNombreDuplicado(t *testing.T) {
	r, _ := testStack(t)
	w := doJSON(t, r, http.MethodPost, "/v1/sitios", dto.CrearSitioRequest{Nombre: "LIBRE"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSitiosNombreVacio(t *testing.T) {
	r, _ := testStack(t)
	w := doJSON(t, r, http.MethodPost, "/v1/sitios", dto.CrearSitioRequest{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSitiosEliminar(t *testing.T) {
	r, db := testStack(t)
	require.NoError(t, db.Create(&model.Sitio{Nombre: "TEMPORAL"}).Error)
	var s model.Sitio
	require.NoError(t, db.Where("nombre = ?", "TEMPORAL").First(&s).Error)

	w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/v1/sitios/%d", s.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/v1/sitios/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ── Equipos ───────────────────────────────────────────────────────────────────

func TestEquiposRegistrar(t *testing.T) {
	r, _ := testStack(t)
	resp := registrarPC(t, r, "PC-001")
	assert.Equal(t, "PC-001", resp.CodigoInventario)
	assert.NotZero(t, resp.ID)
}

func TestEquiposRegistrarCodigoDuplicado(t *testing.T) {
	r, _ := testStack(t)
	registrarPC(t, r, "PC-001")
	w := doJSON(t, r, http.MethodPost, "/v1/equipos", dto.RegistrarEquipoRequest{
		CodigoInventario: "PC-001",
		Tipo:             model.TipoLaptop,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestEquiposRegistrarSinTipo(t *testing.T) {
	r, _ := testStack(t)
	w := doJSON(t, r, http.MethodPost, "/v1/equipos", map[string]string{
		"codigo_inventario": "PC-002",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestEquiposJSONRoto(t *testing.T) {
	r, _ := testStack(t)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/v1/equipos", bytes.NewReader([]byte(`{"tipo":`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEquiposObtenerInexistente(t *testing.T) {
	r, _ := testStack(t)
	w := doJSON(t, r, http.MethodGet, "/v1/equipos/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEquiposIDNoNumerico(t *testing.T) {
	r, _ := testStack(t)
	w := doJSON(t, r, http.MethodGet, "/v1/equipos/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEquiposListarConPaginado(t *testing.T) {
	r, _ := testStack(t)
	for i := 1; i <= 3; i++ {
		registrarPC(t, r, fmt.Sprintf("PC-%03d", i))
	}

	w := doJSON(t, r, http.MethodGet, "/v1/equipos?page=1&limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.EquipoListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.EqualValues(t, 3, resp.Total)
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, 2, resp.TotalPages)
}

func TestEquiposActualizar(t *testing.T) {
	r, _ := testStack(t)
	creado := registrarPC(t, r, "PC-001")

	w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/v1/equipos/%d", creado.ID), map[string]string{
		"usuario": "mgarcia",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.EquipoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "mgarcia", resp.Usuario)
	assert.Equal(t, "ACME", resp.Empresa)
}

func TestEquiposEliminar(t *testing.T) {
	r, _ := testStack(t)
	creado := registrarPC(t, r, "PC-001")

	w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/v1/equipos/%d", creado.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/v1/equipos/%d", creado.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ── Tabla editable ────────────────────────────────────────────────────────────

func cargarTabla(t *testing.T, r *gin.Engine, query string) []dto.FilaTabla {
	t.Helper()
	w := doJSON(t, r, http.MethodGet, "/v1/equipos/tabla"+query, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Filas []dto.FilaTabla `json:"filas"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Filas
}

func TestTablaGuardarCambios(t *testing.T) {
	r, _ := testStack(t)
	registrarPC(t, r, "PC-001")
	registrarPC(t, r, "PC-002")

	filas := cargarTabla(t, r, "")
	require.Len(t, filas, 2)
	filas[0].Usuario = "turno-noche"

	w := doJSON(t, r, http.MethodPost, "/v1/equipos/tabla", dto.GuardarTablaRequest{Filas: filas})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resultado dto.ResultadoTabla
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resultado))
	assert.Equal(t, 1, resultado.Actualizadas)
	assert.Equal(t, 1, resultado.SinCambios)
}

func TestTablaVaciaBorraElScope(t *testing.T) {
	r, _ := testStack(t)
	registrarPC(t, r, "PC-001")

	// Un array vacío explícito es una tabla válida: borra el scope entero.
	w := doJSON(t, r, http.MethodPost, "/v1/equipos/tabla",
		map[string]interface{}{"filas": []dto.FilaTabla{}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resultado dto.ResultadoTabla
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resultado))
	assert.Equal(t, 1, resultado.Eliminadas)
}

func TestTablaSinFilasEsInvalida(t *testing.T) {
	r, _ := testStack(t)
	w := doJSON(t, r, http.MethodPost, "/v1/equipos/tabla", map[string]interface{}{
		"filtro": dto.FiltroTabla{},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestTablaSitioDesconocido(t *testing.T) {
	r, _ := testStack(t)
	registrarPC(t, r, "PC-001")

	filas := cargarTabla(t, r, "")
	filas[0].Sitio = "OBRA FANTASMA"

	w := doJSON(t, r, http.MethodPost, "/v1/equipos/tabla", dto.GuardarTablaRequest{Filas: filas})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "OBRA FANTASMA")
}

func TestTablaCodigoDuplicado(t *testing.T) {
	r, _ := testStack(t)
	registrarPC(t, r, "PC-001")
	registrarPC(t, r, "PC-002")

	filas := cargarTabla(t, r, "")
	filas[1].CodigoInventario = filas[0].CodigoInventario

	w := doJSON(t, r, http.MethodPost, "/v1/equipos/tabla", dto.GuardarTablaRequest{Filas: filas})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTablaFiltradaPorQuery(t *testing.T) {
	r, _ := testStack(t)
	registrarPC(t, r, "PC-001") // empresa ACME
	w := doJSON(t, r, http.MethodPost, "/v1/equipos", dto.RegistrarEquipoRequest{
		CodigoInventario: "NB-001", Tipo: model.TipoLaptop, Empresa: "OTRA",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	filas := cargarTabla(t, r, "?empresa=OTRA")
	require.Len(t, filas, 1)
	assert.Equal(t, "NB-001", filas[0].CodigoInventario)
}

// ── Export ────────────────────────────────────────────────────────────────────

func TestExportarCSVDescarga(t *testing.T) {
	r, _ := testStack(t)
	registrarPC(t, r, "PC-001")

	w := doJSON(t, r, http.MethodGet, "/v1/equipos/export?formato=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Body.String(), "PC-001")
}

func TestExportarFormatoInvalido(t *testing.T) {
	r, _ := testStack(t)
	w := doJSON(t, r, http.MethodGet, "/v1/equipos/export?formato=doc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActaDeEntrega(t *testing.T) {
	r, _ := testStack(t)
	creado := registrarPC(t, r, "PC-001")

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/v1/equipos/%d/acta", creado.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestActaEquipoInexistente(t *testing.T) {
	r, _ := testStack(t)
	w := doJSON(t, r, http.MethodGet, "/v1/equipos/999/acta", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ── Agente ────────────────────────────────────────────────────────────────────

func TestAgenteReporteCreaEquipo(t *testing.T) {
	r, _ := testStack(t)

	w := doJSON(t, r, http.MethodPost, "/v1/agente/reportes", dto.ReporteAgente{
		CodigoInventario: "PC-ESCANEADA",
		Ram:              "16GB",
		VersionSO:        "Windows 11 Pro",
	})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "PC-ESCANEADA")

	// El equipo quedó visible por la API normal.
	lista := doJSON(t, r, http.MethodGet, "/v1/equipos?buscar=PC-ESCANEADA", nil)
	require.Equal(t, http.StatusOK, lista.Code)
	var resp dto.EquipoListResponse
	require.NoError(t, json.Unmarshal(lista.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "16GB", resp.Data[0].Ram)
	assert.NotNil(t, resp.Data[0].UltimaConexion)
}

func TestAgenteReporteSinCodigo(t *testing.T) {
	r, _ := testStack(t)
	w := doJSON(t, r, http.MethodPost, "/v1/agente/reportes", dto.ReporteAgente{Ram: "8GB"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// ── Health ────────────────────────────────────────────────────────────────────

func TestHealthSinRedis(t *testing.T) {
	r, _ := testStack(t)
	w := doJSON(t, r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"disabled"`)
	assert.Contains(t, w.Body.String(), `"db":"connected"`)
}
