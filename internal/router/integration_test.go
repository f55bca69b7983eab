//go:build integration

package router

// Integration tests against real MySQL + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v
//
// Covered flows:
//   - login → alta de sitio y equipo → tabla editable → guardado → export CSV
//   - reporte de agente encolado en Redis y aplicado por el worker pool
//   - rol consulta bloqueado para escritura
//   - borrado de sitio libera los equipos (FK ON DELETE SET NULL real)

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcMySQL "github.com/testcontainers/testcontainers-go/modules/mysql"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"inventario/internal/config"
	"inventario/internal/dto"
	"inventario/internal/infra"
	"inventario/internal/repository"
	"inventario/internal/service"
	"inventario/internal/worker"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
	cfg    *config.Config
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	// MySQL container — the production driver, so the FK behavior and the
	// duplicate-key translation run against the real engine.
	mysqlC, err := tcMySQL.Run(ctx, "mysql:8.0",
		tcMySQL.WithDatabase("inventario_test"),
		tcMySQL.WithUsername("inventario"),
		tcMySQL.WithPassword("inventario"),
	)
	testcontainers.CleanupContainer(t, mysqlC)
	require.NoError(t, err)

	dsn, err := mysqlC.ConnectionString(ctx, "parseTime=true", "charset=utf8mb4")
	require.NoError(t, err)

	// Redis container for the job queue
	redisC, err := tcRedis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, redisC)
	require.NoError(t, err)

	redisURL, err := redisC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		WorkerPoolSize:     1,
		DBDriver:           "mysql",
		DatabaseURL:        dsn,
		RedisURL:           redisURL,
		JWTSecret:          "secreto-de-integracion-32-chars!",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		AgentToken:         "token-agente-integracion",
	}

	// Connect + schema sync (create tables, historical columns, seed sites)
	db, err := infra.NewDatabase(cfg)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	// Seed the admin through the real service so the hash matches production.
	authSvc := service.NewAuthService(repository.NewUsuarioRepository(db), cfg)
	_, err = authSvc.CrearUsuario(ctx, dto.CrearUsuarioRequest{
		Username: "admin",
		Nombre:   "Admin Integracion",
		Password: "inventario2026",
		Rol:      "administrador",
	})
	require.NoError(t, err)

	dispatcher := worker.NewDispatcher(rdb)
	r, workerHandlers := New(cfg, db, rdb, dispatcher)

	poolCtx, cancel := context.WithCancel(ctx)
	t.Cleanup(cancel)
	worker.StartWorkerPool(poolCtx, rdb, cfg.WorkerPoolSize, workerHandlers)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, token: login(t, srv, "admin", "inventario2026"), cfg: cfg}
}

func login(t *testing.T, srv *httptest.Server, username, password string) string {
	t.Helper()
	resp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, dto.LoginRequest{Username: username, Password: password}), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body dto.LoginResponse
	decodeJSON(t, resp, &body)
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestIntegracion_CicloInventarioCompleto(t *testing.T) {
	env := setupTestEnv(t)

	// 1. Alta de un sitio propio
	sitioResp := do(t, env.server, "POST", "/v1/sitios",
		jsonBody(t, dto.CrearSitioRequest{Nombre: "OBRA NORTE"}), env.token)
	require.Equal(t, http.StatusCreated, sitioResp.StatusCode)
	var sitio dto.SitioResponse
	decodeJSON(t, sitioResp, &sitio)

	// 2. Alta de dos equipos
	for _, codigo := range []string{"PC-100", "PC-101"} {
		resp := do(t, env.server, "POST", "/v1/equipos",
			jsonBody(t, dto.RegistrarEquipoRequest{
				CodigoInventario: codigo,
				Tipo:             "Desktop",
				SitioID:          &sitio.ID,
				Empresa:          "CONSTRUCTORA SUR",
			}), env.token)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	// El mismo código otra vez debe chocar contra el índice único real.
	dupResp := do(t, env.server, "POST", "/v1/equipos",
		jsonBody(t, dto.RegistrarEquipoRequest{CodigoInventario: "PC-100", Tipo: "Laptop"}), env.token)
	require.Equal(t, http.StatusConflict, dupResp.StatusCode)
	dupResp.Body.Close()

	// 3. Cargar la tabla filtrada por el sitio y editar una celda
	tablaResp := do(t, env.server, "GET", "/v1/equipos/tabla?sitio=OBRA+NORTE", nil, env.token)
	require.Equal(t, http.StatusOK, tablaResp.StatusCode)
	var tabla struct {
		Filas  []dto.FilaTabla `json:"filas"`
		Filtro dto.FiltroTabla `json:"filtro"`
	}
	decodeJSON(t, tablaResp, &tabla)
	require.Len(t, tabla.Filas, 2)

	tabla.Filas[0].Usuario = "mgarcia"
	tabla.Filas[1].Sitio = "DEFECTUOSA" // moved out of scope, but stays alive

	guardarResp := do(t, env.server, "POST", "/v1/equipos/tabla",
		jsonBody(t, dto.GuardarTablaRequest{Filas: tabla.Filas, Filtro: tabla.Filtro}), env.token)
	require.Equal(t, http.StatusOK, guardarResp.StatusCode)
	var resultado dto.ResultadoTabla
	decodeJSON(t, guardarResp, &resultado)
	assert.Equal(t, 2, resultado.Actualizadas)
	assert.Equal(t, 0, resultado.Eliminadas)

	// 4. El cambio quedó persistido
	listResp := do(t, env.server, "GET", "/v1/equipos?buscar=mgarcia", nil, env.token)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	var lista dto.EquipoListResponse
	decodeJSON(t, listResp, &lista)
	require.Len(t, lista.Data, 1)
	assert.Equal(t, "PC-100", lista.Data[0].CodigoInventario)

	// 5. Export CSV descargable
	expResp := do(t, env.server, "GET", "/v1/equipos/export?formato=csv", nil, env.token)
	require.Equal(t, http.StatusOK, expResp.StatusCode)
	assert.Contains(t, expResp.Header.Get("Content-Disposition"), "attachment")
	expResp.Body.Close()
}

func TestIntegracion_ReporteDeAgentePorCola(t *testing.T) {
	env := setupTestEnv(t)

	req, err := http.NewRequest("POST", env.server.URL+"/v1/agente/reportes",
		jsonBody(t, dto.ReporteAgente{
			CodigoInventario: "PC-AGENTE",
			Ram:              "32GB",
			VersionSO:        "Windows 11 Pro",
		}))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Agent-Token", env.cfg.AgentToken)
	resp, err := env.server.Client().Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	// El reporte viaja por Redis; el worker lo aplica en segundo plano.
	require.Eventually(t, func() bool {
		lr := do(t, env.server, "GET", "/v1/equipos?buscar=PC-AGENTE", nil, env.token)
		defer lr.Body.Close()
		if lr.StatusCode != http.StatusOK {
			return false
		}
		var lista dto.EquipoListResponse
		if json.NewDecoder(lr.Body).Decode(&lista) != nil {
			return false
		}
		return lista.Total == 1 && lista.Data[0].Ram == "32GB"
	}, 15*time.Second, 250*time.Millisecond, "el worker nunca aplicó el reporte")
}

func TestIntegracion_RolConsultaNoEscribe(t *testing.T) {
	env := setupTestEnv(t)

	crearResp := do(t, env.server, "POST", "/v1/usuarios",
		jsonBody(t, dto.CrearUsuarioRequest{
			Username: "lectora",
			Nombre:   "Solo Lectura",
			Password: "lectura-segura-123",
			Rol:      "consulta",
		}), env.token)
	require.Equal(t, http.StatusCreated, crearResp.StatusCode)
	crearResp.Body.Close()

	tokenConsulta := login(t, env.server, "lectora", "lectura-segura-123")

	// Puede leer
	okResp := do(t, env.server, "GET", "/v1/equipos", nil, tokenConsulta)
	assert.Equal(t, http.StatusOK, okResp.StatusCode)
	okResp.Body.Close()

	// No puede escribir
	denResp := do(t, env.server, "POST", "/v1/equipos",
		jsonBody(t, dto.RegistrarEquipoRequest{CodigoInventario: "PC-NEGADA", Tipo: "Desktop"}), tokenConsulta)
	assert.Equal(t, http.StatusForbidden, denResp.StatusCode)
	denResp.Body.Close()

	// Tampoco administra usuarios
	usrResp := do(t, env.server, "GET", "/v1/usuarios", nil, tokenConsulta)
	assert.Equal(t, http.StatusForbidden, usrResp.StatusCode)
	usrResp.Body.Close()
}

func TestIntegracion_BorrarSitioLiberaEquipos(t *testing.T) {
	env := setupTestEnv(t)

	sitioResp := do(t, env.server, "POST", "/v1/sitios",
		jsonBody(t, dto.CrearSitioRequest{Nombre: "DEPOSITO VIEJO"}), env.token)
	require.Equal(t, http.StatusCreated, sitioResp.StatusCode)
	var sitio dto.SitioResponse
	decodeJSON(t, sitioResp, &sitio)

	eqResp := do(t, env.server, "POST", "/v1/equipos",
		jsonBody(t, dto.RegistrarEquipoRequest{
			CodigoInventario: "PC-HUERFANA",
			Tipo:             "Desktop",
			SitioID:          &sitio.ID,
		}), env.token)
	require.Equal(t, http.StatusCreated, eqResp.StatusCode)
	var equipo dto.EquipoResponse
	decodeJSON(t, eqResp, &equipo)

	delResp := do(t, env.server, "DELETE", fmt.Sprintf("/v1/sitios/%d", sitio.ID), nil, env.token)
	require.Equal(t, http.StatusNoContent, delResp.StatusCode)
	delResp.Body.Close()

	// MySQL aplica el ON DELETE SET NULL: el equipo sobrevive sin sitio.
	getResp := do(t, env.server, "GET", fmt.Sprintf("/v1/equipos/%d", equipo.ID), nil, env.token)
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	var huerfana dto.EquipoResponse
	decodeJSON(t, getResp, &huerfana)
	assert.Nil(t, huerfana.SitioID)
	assert.Empty(t, huerfana.Sitio)
}
