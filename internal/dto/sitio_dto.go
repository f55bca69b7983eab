package dto

type CrearSitioRequest struct {
	Nombre string `json:"nombre" validate:"required,min=1,max=255"`
}

type SitioResponse struct {
	ID     uint   `json:"id"`
	Nombre string `json:"nombre"`
}
