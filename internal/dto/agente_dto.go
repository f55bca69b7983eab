package dto

import "encoding/json"

// ─── Agent report ────────────────────────────────────────────────────────────

// ReporteAgente is the hardware snapshot a scanning agent pushes, either by
// POST or inside a websocket frame. Only the inventory code is mandatory;
// everything else overwrites the stored record when present.
type ReporteAgente struct {
	CodigoInventario string `json:"codigo_inventario" validate:"required,min=1,max=50"`
	Serie            string `json:"serie"`
	Tipo             string `json:"tipo"        validate:"omitempty,oneof=Laptop Desktop Server"`
	MarcaModelo      string `json:"marca_modelo"`
	Usuario          string `json:"usuario"`
	Ram              string `json:"ram"`
	Procesador       string `json:"procesador"`
	Disco            string `json:"disco"`
	PlacaMadre       string `json:"placa_madre"`
	Video            string `json:"video"`
	Antivirus        string `json:"antivirus"`
	VersionSO        string `json:"version_so"`
	Empresa          string `json:"empresa"`
}

// ─── Websocket frames ────────────────────────────────────────────────────────

// MensajeAgente is the frame envelope agents exchange over the websocket.
// Known types: "registro" (agent announces itself), "reporte" (Data carries a
// ReporteAgente).
type MensajeAgente struct {
	Tipo string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// AckAgente is the server reply for each processed frame.
type AckAgente struct {
	Tipo    string `json:"type"`
	Detalle string `json:"detalle,omitempty"`
}
