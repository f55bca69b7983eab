package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"inventario/internal/dto"
	"inventario/internal/infra"
	"inventario/internal/model"
	"inventario/internal/repository"
	"inventario/internal/worker"
)

const (
	mimeCSV  = "text/csv"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Mailer is the outbound mail dependency. *infra.Mailer satisfies it.
type Mailer interface {
	SendExport(to, subject, body, filename, mimeType string, data []byte) error
}

// ExportService produces downloadable snapshots of the inventory. The files
// mirror the editable table: same rows, same filter scope, same column order.
type ExportService interface {
	GenerarArchivo(ctx context.Context, formato, sitio, empresa string) (*dto.ArchivoExportado, error)
	EnviarPorCorreo(ctx context.Context, req dto.ExportarCorreoRequest) (*dto.ExportEncoladoResponse, error)
	GenerarActa(ctx context.Context, equipoID uint) (*dto.ArchivoExportado, error)
}

type exportService struct {
	repo       repository.EquipoRepository
	mailer     Mailer
	dispatcher *worker.Dispatcher
}

func NewExportService(repo repository.EquipoRepository, mailer Mailer, dispatcher *worker.Dispatcher) ExportService {
	return &exportService{repo: repo, mailer: mailer, dispatcher: dispatcher}
}

var columnasExport = []string{
	"id", "codigo_inventario", "serie", "tipo", "marca_modelo", "usuario",
	"caracteristicas", "monitor_codigo", "sitio", "ram", "procesador",
	"disco", "placa_madre", "video", "antivirus", "version_so",
	"ultima_conexion", "etiqueta_manual", "notas", "empresa", "valor_compra",
}

func (s *exportService) GenerarArchivo(ctx context.Context, formato, sitio, empresa string) (*dto.ArchivoExportado, error) {
	equipos, err := s.repo.ListarTodos(ctx, sitio, empresa)
	if err != nil {
		return nil, err
	}

	switch formato {
	case "", "csv":
		return generarCSV(equipos)
	case "xlsx":
		return generarXLSX(equipos)
	default:
		return nil, fmt.Errorf("formato de exportación no soportado: %s", formato)
	}
}

func generarCSV(equipos []model.Equipo) (*dto.ArchivoExportado, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(columnasExport); err != nil {
		return nil, err
	}
	for i := range equipos {
		if err := w.Write(filaExport(&equipos[i])); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return &dto.ArchivoExportado{
		Nombre:   nombreExport("csv"),
		MimeType: mimeCSV,
		Data:     buf.Bytes(),
	}, nil
}

func generarXLSX(equipos []model.Equipo) (*dto.ArchivoExportado, error) {
	f := excelize.NewFile()
	defer f.Close()

	const hoja = "Inventario"
	if err := f.SetSheetName("Sheet1", hoja); err != nil {
		return nil, err
	}

	encabezado := make([]interface{}, len(columnasExport))
	for i, c := range columnasExport {
		encabezado[i] = c
	}
	if err := f.SetSheetRow(hoja, "A1", &encabezado); err != nil {
		return nil, err
	}

	for i := range equipos {
		celdas := filaExport(&equipos[i])
		fila := make([]interface{}, len(celdas))
		for j, c := range celdas {
			fila[j] = c
		}
		celda, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(hoja, celda, &fila); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return &dto.ArchivoExportado{
		Nombre:   nombreExport("xlsx"),
		MimeType: mimeXLSX,
		Data:     buf.Bytes(),
	}, nil
}

func filaExport(e *model.Equipo) []string {
	sitio := ""
	if e.Sitio != nil {
		sitio = e.Sitio.Nombre
	}
	conexion := ""
	if e.UltimaConexion != nil {
		conexion = e.UltimaConexion.Format("2006-01-02 15:04:05")
	}
	valor := ""
	if e.ValorCompra != nil {
		valor = e.ValorCompra.StringFixed(2)
	}
	return []string{
		strconv.FormatUint(uint64(e.ID), 10),
		e.CodigoInventario, e.Serie, e.Tipo, e.MarcaModelo, e.Usuario,
		e.Caracteristicas, e.MonitorCodigo, sitio, e.Ram, e.Procesador,
		e.Disco, e.PlacaMadre, e.Video, e.Antivirus, e.VersionSO,
		conexion, e.EtiquetaManual, e.Notas, e.Empresa, valor,
	}
}

func nombreExport(ext string) string {
	return fmt.Sprintf("inventario_%s.%s", time.Now().Format("20060102_150405"), ext)
}

// EnviarPorCorreo mails an export. With a live queue the job is handed to the
// worker pool; without one (Redis down or not configured) the file is
// generated and sent in-request.
func (s *exportService) EnviarPorCorreo(ctx context.Context, req dto.ExportarCorreoRequest) (*dto.ExportEncoladoResponse, error) {
	if req.Formato == "" {
		req.Formato = "csv"
	}
	if req.Asunto == "" {
		req.Asunto = "Inventario de equipos"
	}

	if s.dispatcher != nil {
		payload := worker.CorreoJobPayload{
			Para:    req.Para,
			Asunto:  req.Asunto,
			Formato: req.Formato,
			Sitio:   req.Sitio,
			Empresa: req.Empresa,
		}
		if err := s.dispatcher.EnqueueExportacion(ctx, payload); err == nil {
			return &dto.ExportEncoladoResponse{Encolado: true, Detalle: "exportación encolada"}, nil
		}
		// Redis rejected the job: degrade to the synchronous path.
	}

	archivo, err := s.GenerarArchivo(ctx, req.Formato, req.Sitio, req.Empresa)
	if err != nil {
		return nil, err
	}
	cuerpo := cuerpoCorreoExport(req.Sitio, req.Empresa)
	if err := s.mailer.SendExport(req.Para, req.Asunto, cuerpo, archivo.Nombre, archivo.MimeType, archivo.Data); err != nil {
		return nil, fmt.Errorf("enviar exportación: %w", err)
	}
	return &dto.ExportEncoladoResponse{Encolado: false, Detalle: "exportación enviada"}, nil
}

func cuerpoCorreoExport(sitio, empresa string) string {
	alcance := "todo el inventario"
	switch {
	case sitio != "" && empresa != "":
		alcance = fmt.Sprintf("el sitio %s de la empresa %s", sitio, empresa)
	case sitio != "":
		alcance = "el sitio " + sitio
	case empresa != "":
		alcance = "la empresa " + empresa
	}
	return fmt.Sprintf("Se adjunta la exportación del inventario para %s, generada el %s.",
		alcance, time.Now().Format("02/01/2006 15:04"))
}

// GenerarActa renders the delivery certificate PDF for one equipment unit.
func (s *exportService) GenerarActa(ctx context.Context, equipoID uint) (*dto.ArchivoExportado, error) {
	equipo, err := s.repo.ObtenerPorID(ctx, equipoID)
	if err != nil {
		return nil, err
	}
	data, err := infra.GenerateActaPDF(equipo)
	if err != nil {
		return nil, err
	}
	return &dto.ArchivoExportado{
		Nombre:   fmt.Sprintf("acta_%s.pdf", equipo.CodigoInventario),
		MimeType: "application/pdf",
		Data:     data,
	}, nil
}
