package dto

import (
	"time"

	"savdo/internal/core/id"
	"savdo/internal/core/types"
	"savdo/internal/domain/ledger/consignment"
)

// --- Load ---

// LoadItemRequest is one requested load line.
type LoadItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,min=1"`
}

// LoadRequest describes a tenant-to-dealer load.
type LoadRequest struct {
	DealerID   string            `json:"dealerId" binding:"required"`
	Items      []LoadItemRequest `json:"items" binding:"required,min=1,dive"`
	Policy     string            `json:"policy" binding:"required,oneof=cash debt partial"`
	PaidAmount types.Money       `json:"paidAmount"`
	Method     string            `json:"method"`
	Notes      string            `json:"notes"`
}

// ToInput converts the request into a service input.
func (r LoadRequest) ToInput(tenantID id.ID) (consignment.LoadInput, error) {
	dealerID, err := ParseID("dealerId", r.DealerID)
	if err != nil {
		return consignment.LoadInput{}, err
	}

	items := make([]consignment.LoadItem, len(r.Items))
	for i, item := range r.Items {
		productID, err := ParseID("items.productId", item.ProductID)
		if err != nil {
			return consignment.LoadInput{}, err
		}
		items[i] = consignment.LoadItem{ProductID: productID, Quantity: item.Quantity}
	}

	return consignment.LoadInput{
		TenantID:   tenantID,
		DealerID:   dealerID,
		Items:      items,
		Policy:     consignment.PaymentPolicy(r.Policy),
		PaidAmount: r.PaidAmount,
		Method:     r.Method,
		Notes:      r.Notes,
	}, nil
}

// LoadResponse reports the financial outcome of a load.
type LoadResponse struct {
	TotalLoaded types.Money `json:"totalLoaded"`
	DealerDebt  types.Money `json:"dealerDebt"`
	PaymentID   *string     `json:"paymentId,omitempty"`
}

// FromLoadResult converts a service result.
func FromLoadResult(r *consignment.LoadResult) LoadResponse {
	resp := LoadResponse{
		TotalLoaded: r.TotalLoaded,
		DealerDebt:  r.DealerDebt,
	}
	if r.PaymentID != nil {
		s := r.PaymentID.String()
		resp.PaymentID = &s
	}
	return resp
}

// --- Sell ---

// SellItemRequest is one requested sell line.
type SellItemRequest struct {
	ProductID string      `json:"productId" binding:"required"`
	Quantity  int64       `json:"quantity" binding:"required,min=1"`
	Price     types.Money `json:"price" binding:"required"`
}

// SellRequest describes a dealer-to-end-customer sale.
type SellRequest struct {
	DealerID         string            `json:"dealerId" binding:"required"`
	Items            []SellItemRequest `json:"items" binding:"required,min=1,dive"`
	CustomerName     string            `json:"customerName"`
	CustomerPhone    string            `json:"customerPhone"`
	DealerCustomerID *string           `json:"dealerCustomerId"`
	PaidAmount       types.Money       `json:"paidAmount"`
	Notes            string            `json:"notes"`
}

// ToInput converts the request into a service input.
func (r SellRequest) ToInput(tenantID id.ID) (consignment.SellInput, error) {
	dealerID, err := ParseID("dealerId", r.DealerID)
	if err != nil {
		return consignment.SellInput{}, err
	}
	dealerCustomerID, err := ParseOptionalID("dealerCustomerId", r.DealerCustomerID)
	if err != nil {
		return consignment.SellInput{}, err
	}

	items := make([]consignment.SellItem, len(r.Items))
	for i, item := range r.Items {
		productID, err := ParseID("items.productId", item.ProductID)
		if err != nil {
			return consignment.SellInput{}, err
		}
		items[i] = consignment.SellItem{
			ProductID: productID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	return consignment.SellInput{
		TenantID:         tenantID,
		DealerID:         dealerID,
		Items:            items,
		CustomerName:     r.CustomerName,
		CustomerPhone:    r.CustomerPhone,
		DealerCustomerID: dealerCustomerID,
		PaidAmount:       r.PaidAmount,
		Notes:            r.Notes,
	}, nil
}

// --- Return ---

// ReturnItemRequest is one requested return line.
type ReturnItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,min=1"`
}

// ReturnRequest describes a dealer-to-tenant return.
type ReturnRequest struct {
	DealerID string              `json:"dealerId" binding:"required"`
	Items    []ReturnItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes    string              `json:"notes"`
}

// ToInput converts the request into a service input.
func (r ReturnRequest) ToInput(tenantID id.ID) (consignment.ReturnInput, error) {
	dealerID, err := ParseID("dealerId", r.DealerID)
	if err != nil {
		return consignment.ReturnInput{}, err
	}

	items := make([]consignment.ReturnItem, len(r.Items))
	for i, item := range r.Items {
		productID, err := ParseID("items.productId", item.ProductID)
		if err != nil {
			return consignment.ReturnInput{}, err
		}
		items[i] = consignment.ReturnItem{ProductID: productID, Quantity: item.Quantity}
	}

	return consignment.ReturnInput{
		TenantID: tenantID,
		DealerID: dealerID,
		Items:    items,
		Notes:    r.Notes,
	}, nil
}

// --- Inventory / History ---

// InventoryResponse is one dealer holding.
type InventoryResponse struct {
	ProductID string    `json:"productId"`
	Quantity  int64     `json:"quantity"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromInventory converts a dealer inventory row.
func FromInventory(inv *consignment.DealerInventory) InventoryResponse {
	return InventoryResponse{
		ProductID: inv.ProductID.String(),
		Quantity:  inv.Quantity,
		UpdatedAt: inv.UpdatedAt,
	}
}

// TransactionResponse is one consignment log entry.
type TransactionResponse struct {
	ID            string      `json:"id"`
	DealerID      string      `json:"dealerId"`
	Type          string      `json:"type"`
	ProductID     string      `json:"productId"`
	Quantity      int64       `json:"quantity"`
	Price         types.Money `json:"price"`
	Total         types.Money `json:"total"`
	CustomerName  string      `json:"customerName,omitempty"`
	CustomerPhone string      `json:"customerPhone,omitempty"`
	Notes         string      `json:"notes,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// FromTransaction converts a dealer transaction.
func FromTransaction(t *consignment.DealerTransaction) TransactionResponse {
	return TransactionResponse{
		ID:            t.ID.String(),
		DealerID:      t.DealerID.String(),
		Type:          string(t.Type),
		ProductID:     t.ProductID.String(),
		Quantity:      t.Quantity,
		Price:         t.Price,
		Total:         t.Total,
		CustomerName:  t.CustomerName,
		CustomerPhone: t.CustomerPhone,
		Notes:         t.Notes,
		CreatedAt:     t.CreatedAt,
	}
}

// TransactionListQuery filters the transaction log.
type TransactionListQuery struct {
	DealerID  string     `form:"dealerId"`
	ProductID string     `form:"productId"`
	Type      string     `form:"type" binding:"omitempty,oneof=load sell return"`
	FromDate  *time.Time `form:"from" time_format:"2006-01-02"`
	ToDate    *time.Time `form:"to" time_format:"2006-01-02"`
	Limit     int        `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset    int        `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts query params into a repository filter.
func (q TransactionListQuery) ToFilter() (consignment.TransactionFilter, error) {
	filter := consignment.TransactionFilter{
		FromDate: q.FromDate,
		ToDate:   q.ToDate,
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
	if filter.Limit == 0 {
		filter.Limit = 100
	}

	if q.DealerID != "" {
		dealerID, err := ParseID("dealerId", q.DealerID)
		if err != nil {
			return filter, err
		}
		filter.DealerID = &dealerID
	}
	if q.ProductID != "" {
		productID, err := ParseID("productId", q.ProductID)
		if err != nil {
			return filter, err
		}
		filter.ProductID = &productID
	}
	if q.Type != "" {
		t := consignment.TransactionType(q.Type)
		filter.Type = &t
	}

	return filter, nil
}
