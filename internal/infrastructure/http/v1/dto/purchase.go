package dto

import (
	"time"

	"savdo/internal/core/id"
	"savdo/internal/core/types"
	"savdo/internal/domain/ledger/purchase"
)

// ReceiveItemRequest is one received line.
type ReceiveItemRequest struct {
	ProductID string      `json:"productId" binding:"required"`
	Quantity  int64       `json:"quantity" binding:"required,min=1"`
	UnitCost  types.Money `json:"unitCost"`
}

// ReceiveRequest describes a supplier receipt.
type ReceiveRequest struct {
	SupplierName string               `json:"supplierName" binding:"required"`
	Items        []ReceiveItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes        string               `json:"notes"`
}

// ToInput converts the request into a service input.
func (r ReceiveRequest) ToInput(tenantID id.ID) (purchase.ReceiveInput, error) {
	items := make([]purchase.ReceiveItem, len(r.Items))
	for i, item := range r.Items {
		productID, err := ParseID("items.productId", item.ProductID)
		if err != nil {
			return purchase.ReceiveInput{}, err
		}
		items[i] = purchase.ReceiveItem{
			ProductID: productID,
			Quantity:  item.Quantity,
			UnitCost:  item.UnitCost,
		}
	}

	return purchase.ReceiveInput{
		TenantID:     tenantID,
		SupplierName: r.SupplierName,
		Items:        items,
		Notes:        r.Notes,
	}, nil
}

// PurchaseItemResponse is one received line.
type PurchaseItemResponse struct {
	ID        string      `json:"id"`
	ProductID string      `json:"productId"`
	Quantity  int64       `json:"quantity"`
	UnitCost  types.Money `json:"unitCost"`
	Total     types.Money `json:"total"`
}

// PurchaseResponse is a receiving event with its lines.
type PurchaseResponse struct {
	ID           string                 `json:"id"`
	SupplierName string                 `json:"supplierName"`
	TotalAmount  types.Money            `json:"totalAmount"`
	Notes        string                 `json:"notes,omitempty"`
	Items        []PurchaseItemResponse `json:"items,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
}

// FromPurchase converts a purchase aggregate.
func FromPurchase(p *purchase.Purchase) PurchaseResponse {
	resp := PurchaseResponse{
		ID:           p.ID.String(),
		SupplierName: p.SupplierName,
		TotalAmount:  p.TotalAmount,
		Notes:        p.Notes,
		CreatedAt:    p.CreatedAt,
	}
	for _, item := range p.Items {
		resp.Items = append(resp.Items, PurchaseItemResponse{
			ID:        item.ID.String(),
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			UnitCost:  item.UnitCost,
			Total:     item.Total,
		})
	}
	return resp
}

// PurchaseListQuery filters receiving history queries.
type PurchaseListQuery struct {
	FromDate *time.Time `form:"from" time_format:"2006-01-02"`
	ToDate   *time.Time `form:"to" time_format:"2006-01-02"`
	Limit    int        `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset   int        `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts query params into a repository filter.
func (q PurchaseListQuery) ToFilter() purchase.PurchaseFilter {
	filter := purchase.PurchaseFilter{
		FromDate: q.FromDate,
		ToDate:   q.ToDate,
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
	if filter.Limit == 0 {
		filter.Limit = 100
	}
	return filter
}
