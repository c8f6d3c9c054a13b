package dto

import (
	"time"

	"savdo/internal/core/id"
	"savdo/internal/core/types"
	"savdo/internal/domain/ledger/sale"
)

// SaleItemRequest is one requested order line. A zero price means the
// current catalog price applies.
type SaleItemRequest struct {
	ProductID string      `json:"productId" binding:"required"`
	Quantity  int64       `json:"quantity" binding:"required,min=1"`
	Price     types.Money `json:"price"`
}

// CreateSaleRequest describes a POS sale or portal order.
type CreateSaleRequest struct {
	CustomerID  *string           `json:"customerId"`
	Items       []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
	Discount    types.Money       `json:"discount"`
	PaidAmount  types.Money       `json:"paidAmount"`
	PaymentType string            `json:"paymentType" binding:"required,oneof=cash card debt partial"`
	Source      string            `json:"source" binding:"required,oneof=pos portal"`
	Notes       string            `json:"notes"`
}

// ToInput converts the request into a service input.
func (r CreateSaleRequest) ToInput(tenantID id.ID) (sale.CreateInput, error) {
	customerID, err := ParseOptionalID("customerId", r.CustomerID)
	if err != nil {
		return sale.CreateInput{}, err
	}

	items := make([]sale.CreateItem, len(r.Items))
	for i, item := range r.Items {
		productID, err := ParseID("items.productId", item.ProductID)
		if err != nil {
			return sale.CreateInput{}, err
		}
		items[i] = sale.CreateItem{
			ProductID: productID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	return sale.CreateInput{
		TenantID:    tenantID,
		CustomerID:  customerID,
		Items:       items,
		Discount:    r.Discount,
		PaidAmount:  r.PaidAmount,
		PaymentType: sale.PaymentType(r.PaymentType),
		Source:      sale.Source(r.Source),
		Notes:       r.Notes,
	}, nil
}

// TransitionRequest requests one status change.
type TransitionRequest struct {
	To       string  `json:"to" binding:"required"`
	DealerID *string `json:"dealerId"`
}

// ToInput converts the request into a service input.
func (r TransitionRequest) ToInput(tenantID, saleID id.ID) (sale.TransitionInput, error) {
	dealerID, err := ParseOptionalID("dealerId", r.DealerID)
	if err != nil {
		return sale.TransitionInput{}, err
	}

	return sale.TransitionInput{
		TenantID: tenantID,
		SaleID:   saleID,
		To:       sale.Status(r.To),
		DealerID: dealerID,
	}, nil
}

// SaleItemResponse is one immutable order line.
type SaleItemResponse struct {
	ID        string      `json:"id"`
	ProductID string      `json:"productId"`
	Quantity  int64       `json:"quantity"`
	Price     types.Money `json:"price"`
	Total     types.Money `json:"total"`
}

// SaleResponse is a sale with its lines.
type SaleResponse struct {
	ID          string             `json:"id"`
	CustomerID  *string            `json:"customerId,omitempty"`
	Status      string             `json:"status"`
	TotalAmount types.Money        `json:"totalAmount"`
	Discount    types.Money        `json:"discount"`
	PaidAmount  types.Money        `json:"paidAmount"`
	PaymentType string             `json:"paymentType"`
	Source      string             `json:"source"`
	Notes       string             `json:"notes,omitempty"`
	Version     int                `json:"version"`
	Items       []SaleItemResponse `json:"items,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// FromSale converts a sale aggregate.
func FromSale(s *sale.Sale) SaleResponse {
	resp := SaleResponse{
		ID:          s.ID.String(),
		Status:      string(s.Status),
		TotalAmount: s.TotalAmount,
		Discount:    s.Discount,
		PaidAmount:  s.PaidAmount,
		PaymentType: string(s.PaymentType),
		Source:      string(s.Source),
		Notes:       s.Notes,
		Version:     s.Version,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	if s.CustomerID != nil {
		cid := s.CustomerID.String()
		resp.CustomerID = &cid
	}
	for _, item := range s.Items {
		resp.Items = append(resp.Items, SaleItemResponse{
			ID:        item.ID.String(),
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			Price:     item.Price,
			Total:     item.Total,
		})
	}
	return resp
}

// SaleListQuery filters sale list queries.
type SaleListQuery struct {
	Status     string     `form:"status"`
	CustomerID string     `form:"customerId"`
	Source     string     `form:"source" binding:"omitempty,oneof=pos portal"`
	FromDate   *time.Time `form:"from" time_format:"2006-01-02"`
	ToDate     *time.Time `form:"to" time_format:"2006-01-02"`
	Limit      int        `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset     int        `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts query params into a repository filter.
func (q SaleListQuery) ToFilter() (sale.SaleFilter, error) {
	filter := sale.SaleFilter{
		FromDate: q.FromDate,
		ToDate:   q.ToDate,
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
	if filter.Limit == 0 {
		filter.Limit = 100
	}

	if q.Status != "" {
		s := sale.Status(q.Status)
		filter.Status = &s
	}
	if q.CustomerID != "" {
		customerID, err := ParseID("customerId", q.CustomerID)
		if err != nil {
			return filter, err
		}
		filter.CustomerID = &customerID
	}
	if q.Source != "" {
		s := sale.Source(q.Source)
		filter.Source = &s
	}

	return filter, nil
}
