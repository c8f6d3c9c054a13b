// Package purchase owns supplier receipt records that increase central
// stock and update product cost basis.
package purchase

import (
	"context"
	"time"

	"savdo/internal/core/id"
	"savdo/internal/core/types"
)

// Purchase is one receiving event.
type Purchase struct {
	TenantID     id.ID       `db:"tenant_id" json:"tenantId"`
	ID           id.ID       `db:"id" json:"id"`
	SupplierName string      `db:"supplier_name" json:"supplierName"`
	TotalAmount  types.Money `db:"total_amount" json:"totalAmount"`
	Notes        string      `db:"notes" json:"notes,omitempty"`
	CreatedAt    time.Time   `db:"created_at" json:"createdAt"`

	Items []PurchaseItem `db:"-" json:"items"`
}

// PurchaseItem is one received line. UnitCost overwrites the product's
// cost basis at the time of receipt (last-cost-wins).
type PurchaseItem struct {
	PurchaseID id.ID       `db:"purchase_id" json:"purchaseId"`
	ID         id.ID       `db:"id" json:"id"`
	ProductID  id.ID       `db:"product_id" json:"productId"`
	Quantity   int64       `db:"quantity" json:"quantity"`
	UnitCost   types.Money `db:"unit_cost" json:"unitCost"`
	Total      types.Money `db:"total" json:"total"`
}

// PurchaseFilter narrows receiving history queries.
type PurchaseFilter struct {
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}

// Repository defines persistence for receiving events.
type Repository interface {
	Create(ctx context.Context, purchase *Purchase) error
	SaveItems(ctx context.Context, purchaseID id.ID, items []PurchaseItem) error
	GetByID(ctx context.Context, tenantID, purchaseID id.ID) (*Purchase, error)
	GetItems(ctx context.Context, purchaseID id.ID) ([]PurchaseItem, error)
	List(ctx context.Context, tenantID id.ID, filter PurchaseFilter) ([]*Purchase, error)
}
