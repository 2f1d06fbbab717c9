package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// ErrorResponse cuerpo de error HTTP. RequiredMultiple solo aparece en PACKAGE_MULTIPLE.
type ErrorResponse struct {
	Code             string `json:"code"`
	Message          string `json:"message"`
	RequiredMultiple int64  `json:"required_multiple,omitempty"`
}
