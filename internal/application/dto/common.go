package dto

// PageResponse metadatos de paginación en respuestas de listado.
type PageResponse struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ErrorResponse cuerpo de error HTTP. Details lleva contexto estructurado
// cuando existe (ej. producto y stock en errores de stock insuficiente).
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// StockErrorDetails contexto de un rechazo por stock insuficiente.
type StockErrorDetails struct {
	ProductID    string `json:"producto_id"`
	ProductName  string `json:"producto_nombre"`
	CurrentStock string `json:"stock_actual"`
	Delta        string `json:"ajuste_solicitado"`
}
