package dto

import (
	"savdo/internal/core/types"
	"savdo/internal/domain/catalog"
)

// AvailabilityResponse is the current central stock of one product.
type AvailabilityResponse struct {
	ProductID string `json:"productId"`
	Available int64  `json:"available"`
}

// LowStockResponse is one product below its minimum.
type LowStockResponse struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Stock     int64  `json:"stock"`
	MinStock  int64  `json:"minStock"`
}

// FromLowStockProduct converts a catalog product.
func FromLowStockProduct(p *catalog.Product) LowStockResponse {
	return LowStockResponse{
		ProductID: p.ID.String(),
		Name:      p.Name,
		SKU:       p.SKU,
		Stock:     p.Stock,
		MinStock:  p.MinStock,
	}
}

// ConservationRow reports where one product's units currently sit.
// Total stays constant across loads and returns; only sells, sale
// creation, and purchases move it.
type ConservationRow struct {
	ProductID string `json:"productId"`
	Central   int64  `json:"central"`
	Consigned int64  `json:"consigned"`
	Total     int64  `json:"total"`
}

// ProductResponse exposes catalog fields the reports need.
type ProductResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	SKU       string      `json:"sku"`
	Stock     int64       `json:"stock"`
	CostPrice types.Money `json:"costPrice"`
	Price     types.Money `json:"price"`
	MinStock  int64       `json:"minStock"`
}

// FromProduct converts a catalog product.
func FromProduct(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		SKU:       p.SKU,
		Stock:     p.Stock,
		CostPrice: p.CostPrice,
		Price:     p.Price,
		MinStock:  p.MinStock,
	}
}
