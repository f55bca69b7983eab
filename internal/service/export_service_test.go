package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"inventario/internal/dto"
	"inventario/internal/model"
	"inventario/internal/repository"
)

// ── Mailer de captura ─────────────────────────────────────────────────────────

type mailerCaptura struct {
	fallar   error
	para     string
	asunto   string
	archivo  string
	mimeType string
	data     []byte
}

func (m *mailerCaptura) SendExport(to, subject, _, filename, mimeType string, data []byte) error {
	if m.fallar != nil {
		return m.fallar
	}
	m.para, m.asunto, m.archivo, m.mimeType, m.data = to, subject, filename, mimeType, data
	return nil
}

var _ Mailer = (*mailerCaptura)(nil)

func nuevoExportService(t *testing.T) (ExportService, repository.EquipoRepository, *mailerCaptura) {
	t.Helper()
	db := abrirDB(t)
	repo := repository.NewEquipoRepository(db)
	mailer := &mailerCaptura{}
	return NewExportService(repo, mailer, nil), repo, mailer
}

func sembrarParaExport(t *testing.T, repo repository.EquipoRepository) {
	t.Helper()
	ctx := context.Background()
	valor := decimal.NewFromFloat(1500.00)
	require.NoError(t, repo.Crear(ctx, &model.Equipo{
		CodigoInventario: "PC-001", Tipo: model.TipoDesktop,
		Usuario: "jperez", Empresa: "ACME", ValorCompra: &valor,
	}))
	require.NoError(t, repo.Crear(ctx, &model.Equipo{
		CodigoInventario: "NB-001", Tipo: model.TipoLaptop,
		Usuario: "mgarcia", Empresa: "OTRA",
	}))
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestExportarCSV(t *testing.T) {
	svc, repo, _ := nuevoExportService(t)
	sembrarParaExport(t, repo)

	archivo, err := svc.GenerarArchivo(context.Background(), "csv", "", "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", archivo.MimeType)
	assert.True(t, strings.HasSuffix(archivo.Nombre, ".csv"))

	registros, err := csv.NewReader(bytes.NewReader(archivo.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, registros, 3) // encabezado + 2 equipos
	assert.Equal(t, columnasExport, registros[0])

	// Las filas salen ordenadas por código: NB-001 primero.
	assert.Equal(t, "NB-001", registros[1][1])
	assert.Equal(t, "PC-001", registros[2][1])
	assert.Equal(t, "1500.00", registros[2][20])
}

func TestExportarCSVEsElFormatoPorDefecto(t *testing.T) {
	svc, repo, _ := nuevoExportService(t)
	sembrarParaExport(t, repo)

	archivo, err := svc.GenerarArchivo(context.Background(), "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", archivo.MimeType)
}

func TestExportarXLSX(t *testing.T) {
	svc, repo, _ := nuevoExportService(t)
	sembrarParaExport(t, repo)

	archivo, err := svc.GenerarArchivo(context.Background(), "xlsx", "", "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(archivo.Nombre, ".xlsx"))

	f, err := excelize.OpenReader(bytes.NewReader(archivo.Data))
	require.NoError(t, err)
	defer f.Close()

	encabezado, err := f.GetCellValue("Inventario", "A1")
	require.NoError(t, err)
	assert.Equal(t, "id", encabezado)

	codigo, err := f.GetCellValue("Inventario", "B2")
	require.NoError(t, err)
	assert.Equal(t, "NB-001", codigo)
}

func TestExportarRespetaFiltro(t *testing.T) {
	svc, repo, _ := nuevoExportService(t)
	sembrarParaExport(t, repo)

	archivo, err := svc.GenerarArchivo(context.Background(), "csv", "", "ACME")
	require.NoError(t, err)

	registros, err := csv.NewReader(bytes.NewReader(archivo.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, registros, 2)
	assert.Equal(t, "PC-001", registros[1][1])
}

func TestExportarFormatoNoSoportado(t *testing.T) {
	svc, _, _ := nuevoExportService(t)
	_, err := svc.GenerarArchivo(context.Background(), "pdf", "", "")
	assert.ErrorContains(t, err, "formato de exportación no soportado")
}

func TestEnviarPorCorreoSinColaEnviaEnLinea(t *testing.T) {
	svc, repo, mailer := nuevoExportService(t)
	sembrarParaExport(t, repo)

	resp, err := svc.EnviarPorCorreo(context.Background(), dto.ExportarCorreoRequest{Para: "sistemas@acme.test"})
	require.NoError(t, err)
	assert.False(t, resp.Encolado)

	assert.Equal(t, "sistemas@acme.test", mailer.para)
	assert.Equal(t, "Inventario de equipos", mailer.asunto) // asunto por defecto
	assert.True(t, strings.HasSuffix(mailer.archivo, ".csv"))
	assert.NotEmpty(t, mailer.data)
}

func TestEnviarPorCorreoPropagaFalloDelMailer(t *testing.T) {
	svc, repo, mailer := nuevoExportService(t)
	sembrarParaExport(t, repo)
	mailer.fallar = errors.New("smtp caido")

	_, err := svc.EnviarPorCorreo(context.Background(), dto.ExportarCorreoRequest{Para: "sistemas@acme.test"})
	assert.ErrorContains(t, err, "enviar exportación")
}

func TestGenerarActaPDF(t *testing.T) {
	svc, repo, _ := nuevoExportService(t)
	sembrarParaExport(t, repo)

	equipo, err := repo.ObtenerPorCodigo(context.Background(), "PC-001")
	require.NoError(t, err)

	acta, err := svc.GenerarActa(context.Background(), equipo.ID)
	require.NoError(t, err)
	assert.Equal(t, "acta_PC-001.pdf", acta.Nombre)
	assert.Equal(t, "application/pdf", acta.MimeType)
	assert.True(t, bytes.HasPrefix(acta.Data, []byte("%PDF")))
}

func TestGenerarActaEquipoInexistente(t *testing.T) {
	svc, _, _ := nuevoExportService(t)
	_, err := svc.GenerarActa(context.Background(), 999)
	assert.Error(t, err)
}
