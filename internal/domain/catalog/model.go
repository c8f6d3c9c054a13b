// Package catalog holds the tenant-scoped master data the ledger engine
// mutates: products, dealers, dealer sub-customers, and customers.
//
// Rows are created by onboarding/catalog management (outside this engine);
// the ledger only touches their balance fields (stock, debt).
package catalog

import (
	"time"

	"savdo/internal/core/id"
	"savdo/internal/core/types"
)

// Product is a sellable item with a central warehouse stock count.
// Invariant: Stock >= 0 at all times.
type Product struct {
	TenantID  id.ID       `db:"tenant_id" json:"tenantId"`
	ID        id.ID       `db:"id" json:"id"`
	Name      string      `db:"name" json:"name"`
	SKU       string      `db:"sku" json:"sku,omitempty"`
	Stock     int64       `db:"stock" json:"stock"`
	CostPrice types.Money `db:"cost_price" json:"costPrice"`
	Price     types.Money `db:"price" json:"price"`
	MinStock  int64       `db:"min_stock" json:"minStock"`
	Version   int         `db:"version" json:"version"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time   `db:"updated_at" json:"updatedAt"`
}

// IsBelowMinStock reports whether the product needs replenishment.
func (p *Product) IsBelowMinStock() bool {
	return p.Stock < p.MinStock
}

// Dealer is a consignment partner. Debt is the non-negative balance the
// dealer owes the tenant for loaded goods not yet paid for.
type Dealer struct {
	TenantID  id.ID       `db:"tenant_id" json:"tenantId"`
	ID        id.ID       `db:"id" json:"id"`
	Name      string      `db:"name" json:"name"`
	Phone     string      `db:"phone" json:"phone,omitempty"`
	Debt      types.Money `db:"debt" json:"debt"`
	Version   int         `db:"version" json:"version"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time   `db:"updated_at" json:"updatedAt"`
}

// DealerCustomer is an end customer tracked in a dealer's own sub-ledger.
// Debt accrues when a dealer sell is not fully paid.
type DealerCustomer struct {
	TenantID  id.ID       `db:"tenant_id" json:"tenantId"`
	ID        id.ID       `db:"id" json:"id"`
	DealerID  id.ID       `db:"dealer_id" json:"dealerId"`
	Name      string      `db:"name" json:"name"`
	Phone     string      `db:"phone" json:"phone,omitempty"`
	Debt      types.Money `db:"debt" json:"debt"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time   `db:"updated_at" json:"updatedAt"`
}

// Customer buys directly from the tenant (POS or portal).
type Customer struct {
	TenantID  id.ID       `db:"tenant_id" json:"tenantId"`
	ID        id.ID       `db:"id" json:"id"`
	Name      string      `db:"name" json:"name"`
	Phone     string      `db:"phone" json:"phone,omitempty"`
	Debt      types.Money `db:"debt" json:"debt"`
	Version   int         `db:"version" json:"version"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time   `db:"updated_at" json:"updatedAt"`
}
