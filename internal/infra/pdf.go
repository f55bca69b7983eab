package infra

// pdf.go — acta de entrega generation using go-pdf/fpdf.
// One A4 page per equipment unit:
//   - Title and generation date
//   - Two-column detail table (código, serie, tipo, usuario, sitio, hardware)
//   - Observations block
//   - Signature lines for the receiving user and the IT responsible
//
// The document is rendered to memory; handlers stream it with
// Content-Disposition and workers attach it to outgoing mail.

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"inventario/internal/model"
)

// GenerateActaPDF renders the delivery certificate for one equipment unit
// and returns the PDF bytes.
func GenerateActaPDF(equipo *model.Equipo) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 18, 20)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 40

	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(contentW, 9, "ACTA DE ENTREGA DE EQUIPO", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Fecha de emisión: "+time.Now().Format("02/01/2006"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.Line(20, pdf.GetY(), pageW-20, pdf.GetY())
	pdf.Ln(4)

	labelW := contentW * 0.32
	valueW := contentW * 0.68

	row := func(label, value string) {
		if value == "" {
			value = "-"
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(labelW, 7, label, "B", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(valueW, 7, value, "B", 1, "L", false, 0, "")
	}

	sitio := ""
	if equipo.Sitio != nil {
		sitio = equipo.Sitio.Nombre
	}

	row("Código de inventario", equipo.CodigoInventario)
	row("Número de serie", equipo.Serie)
	row("Tipo", equipo.Tipo)
	row("Marca y modelo", equipo.MarcaModelo)
	row("Usuario asignado", equipo.Usuario)
	row("Sitio", sitio)
	row("Empresa", equipo.Empresa)
	row("Procesador", equipo.Procesador)
	row("Memoria RAM", equipo.Ram)
	row("Disco", equipo.Disco)
	row("Sistema operativo", equipo.VersionSO)
	row("Antivirus", equipo.Antivirus)
	if equipo.MonitorCodigo != "" {
		row("Monitor asociado", equipo.MonitorCodigo)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Observaciones", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	notas := equipo.Notas
	if notas == "" {
		notas = "Sin observaciones."
	}
	pdf.MultiCell(contentW, 5, notas, "", "L", false)

	pdf.Ln(22)
	halfW := contentW / 2
	sigY := pdf.GetY()
	pdf.Line(24, sigY, 24+halfW-12, sigY)
	pdf.Line(28+halfW, sigY, 28+halfW+halfW-12, sigY)

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(halfW, 5, "Recibe: "+equipo.Usuario, "", 0, "C", false, 0, "")
	pdf.CellFormat(halfW, 5, "Entrega: Responsable de Sistemas", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: generar acta: %w", err)
	}
	return buf.Bytes(), nil
}
