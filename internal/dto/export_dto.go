package dto

type ExportarCorreoRequest struct {
	Para    string `json:"para"    validate:"required,email"`
	Asunto  string `json:"asunto"  validate:"omitempty,max=200"`
	Formato string `json:"formato" validate:"omitempty,oneof=csv xlsx"`
	Sitio   string `json:"sitio"`
	Empresa string `json:"empresa"`
}

type ExportEncoladoResponse struct {
	Encolado bool   `json:"encolado"`
	Detalle  string `json:"detalle"`
}

// ArchivoExportado is a generated export ready to stream or attach.
type ArchivoExportado struct {
	Nombre   string
	MimeType string
	Data     []byte
}
