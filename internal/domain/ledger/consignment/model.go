// Package consignment owns per-(dealer, product) quantities and the
// append-only dealer transaction log.
//
// Load and return move quantity between the central warehouse and the
// dealer; sell removes it from the system into the external end customer.
// The transaction log is the audit trail for how DealerInventory and
// Dealer.Debt reached their current values.
package consignment

import (
	"context"
	"time"

	"savdo/internal/core/id"
	"savdo/internal/core/types"
)

// TransactionType enumerates the three consignment movements.
type TransactionType string

const (
	TransactionLoad   TransactionType = "load"
	TransactionSell   TransactionType = "sell"
	TransactionReturn TransactionType = "return"
)

// PaymentPolicy is how a dealer settles a load.
type PaymentPolicy string

const (
	// PolicyCash settles the full amount immediately; debt unaffected.
	PolicyCash PaymentPolicy = "cash"
	// PolicyDebt accrues the full amount to dealer debt.
	PolicyDebt PaymentPolicy = "debt"
	// PolicyPartial settles PaidAmount now, accrues the remainder.
	PolicyPartial PaymentPolicy = "partial"
)

// DealerInventory is one row per (dealer, product): stock physically held
// by the dealer, disjoint from the central warehouse count.
// Invariant: Quantity >= 0.
type DealerInventory struct {
	TenantID  id.ID     `db:"tenant_id" json:"tenantId"`
	DealerID  id.ID     `db:"dealer_id" json:"dealerId"`
	ProductID id.ID     `db:"product_id" json:"productId"`
	Quantity  int64     `db:"quantity" json:"quantity"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// DealerTransaction is one immutable entry of the consignment log.
type DealerTransaction struct {
	TenantID      id.ID           `db:"tenant_id" json:"tenantId"`
	ID            id.ID           `db:"id" json:"id"`
	DealerID      id.ID           `db:"dealer_id" json:"dealerId"`
	Type          TransactionType `db:"type" json:"type"`
	ProductID     id.ID           `db:"product_id" json:"productId"`
	Quantity      int64           `db:"quantity" json:"quantity"`
	Price         types.Money     `db:"price" json:"price"`
	Total         types.Money     `db:"total" json:"total"`
	CustomerName  string          `db:"customer_name" json:"customerName,omitempty"`
	CustomerPhone string          `db:"customer_phone" json:"customerPhone,omitempty"`
	Notes         string          `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
}

// TransactionFilter narrows dealer transaction history queries.
type TransactionFilter struct {
	DealerID  *id.ID
	ProductID *id.ID
	Type      *TransactionType
	FromDate  *time.Time
	ToDate    *time.Time
	Limit     int
	Offset    int
}

// InventoryRepository stores per-(dealer, product) quantities.
type InventoryRepository interface {
	// GetForUpdate locks and returns the inventory row, or a zero-quantity
	// row when the dealer has never held the product.
	GetForUpdate(ctx context.Context, tenantID, dealerID, productID id.ID) (*DealerInventory, error)

	// AdjustQuantity applies a signed delta, creating the row on first
	// load. The store must refuse a decrement below zero.
	AdjustQuantity(ctx context.Context, tenantID, dealerID, productID id.ID, delta int64) error

	// ListByDealer returns all non-zero holdings for a dealer.
	ListByDealer(ctx context.Context, tenantID, dealerID id.ID) ([]*DealerInventory, error)

	// TotalsByProduct sums consigned quantity per product across dealers.
	// Feeds the stock conservation report.
	TotalsByProduct(ctx context.Context, tenantID id.ID) (map[id.ID]int64, error)
}

// TransactionRepository is insert-only by construction.
type TransactionRepository interface {
	// Append inserts the transactions of one ledger operation.
	Append(ctx context.Context, txns []*DealerTransaction) error

	// List returns the transaction log for a tenant.
	List(ctx context.Context, tenantID id.ID, filter TransactionFilter) ([]*DealerTransaction, error)
}
