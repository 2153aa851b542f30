package entity

import "time"

// Product representa un producto del catálogo de la empresa.
// No guarda costo: el costo promedio ponderado vive en StockBalance, por bodega.
type Product struct {
	ID          string
	CompanyID   string
	SKU         string
	Name        string
	UnitMeasure string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
