package catalog

import (
	"context"

	"savdo/internal/core/id"
	"savdo/internal/core/types"
)

// ProductRepository defines the product access the ledger engine needs.
// Every method is tenant-scoped; a product belonging to another tenant is
// reported as not found.
type ProductRepository interface {
	// GetByID retrieves a product without locking.
	GetByID(ctx context.Context, tenantID, productID id.ID) (*Product, error)

	// GetManyForUpdate locks and returns the given products.
	// Implementations must lock in ascending id order so concurrent
	// multi-product operations cannot deadlock each other.
	GetManyForUpdate(ctx context.Context, tenantID id.ID, productIDs []id.ID) ([]*Product, error)

	// AdjustStock applies a signed stock delta. The store must refuse a
	// decrement that would take stock below zero.
	AdjustStock(ctx context.Context, tenantID, productID id.ID, delta int64) error

	// SetCostPrice overwrites the cost basis (last-cost-wins on receipt).
	SetCostPrice(ctx context.Context, tenantID, productID id.ID, costPrice types.Money) error

	// ListBelowMinStock returns products whose stock fell below min_stock.
	ListBelowMinStock(ctx context.Context, tenantID id.ID) ([]*Product, error)
}

// DealerRepository defines dealer access for the consignment and debt ledgers.
type DealerRepository interface {
	GetByID(ctx context.Context, tenantID, dealerID id.ID) (*Dealer, error)

	// GetForUpdate locks the dealer row for a balance change.
	GetForUpdate(ctx context.Context, tenantID, dealerID id.ID) (*Dealer, error)

	// SetDebt writes the new balance computed by the service while the
	// row lock from GetForUpdate is held.
	SetDebt(ctx context.Context, tenantID, dealerID id.ID, debt types.Money) error
}

// DealerCustomerRepository tracks per-dealer sub-customer balances.
type DealerCustomerRepository interface {
	GetByID(ctx context.Context, tenantID, dealerCustomerID id.ID) (*DealerCustomer, error)
	GetForUpdate(ctx context.Context, tenantID, dealerCustomerID id.ID) (*DealerCustomer, error)
	SetDebt(ctx context.Context, tenantID, dealerCustomerID id.ID, debt types.Money) error
}

// CustomerRepository defines customer access for sales and payments.
type CustomerRepository interface {
	GetByID(ctx context.Context, tenantID, customerID id.ID) (*Customer, error)
	GetForUpdate(ctx context.Context, tenantID, customerID id.ID) (*Customer, error)
	SetDebt(ctx context.Context, tenantID, customerID id.ID, debt types.Money) error
}
