package dto

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageRequest ventana de un listado. Se pide una fila de más para saber si hay página siguiente.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// NewPageRequest acota limit a [1, MaxPageLimit] y offset a >= 0.
func NewPageRequest(limit, offset int) PageRequest {
	switch {
	case limit <= 0:
		limit = DefaultPageLimit
	case limit > MaxPageLimit:
		limit = MaxPageLimit
	}
	return PageRequest{Limit: limit, Offset: max(offset, 0)}
}

// Fetch filas a pedir al repositorio.
func (p PageRequest) Fetch() int { return p.Limit + 1 }

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// Paginate recorta la fila sobrante pedida con Fetch y arma los metadatos.
func Paginate[T any](p PageRequest, rows []T) ([]T, PageResponse) {
	meta := PageResponse{Limit: p.Limit, Offset: p.Offset}
	if len(rows) > p.Limit {
		rows, meta.HasMore = rows[:p.Limit], true
	}
	return rows, meta
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
