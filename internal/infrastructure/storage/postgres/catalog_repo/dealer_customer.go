package catalog_repo

import (
	"context"

	"savdo/internal/core/id"
	"savdo/internal/core/types"
	"savdo/internal/domain/catalog"
	"savdo/internal/infrastructure/storage/postgres"
)

const dealerCustomersTable = "dealer_customers"

// DealerCustomerRepo implements catalog.DealerCustomerRepository.
type DealerCustomerRepo struct {
	debtorRepo[catalog.DealerCustomer]
}

// NewDealerCustomerRepo creates a new dealer sub-customer repository.
func NewDealerCustomerRepo(txManager *postgres.TxManager) *DealerCustomerRepo {
	return &DealerCustomerRepo{newDebtorRepo[catalog.DealerCustomer](txManager, dealerCustomersTable, "dealer customer")}
}

func (r *DealerCustomerRepo) GetByID(ctx context.Context, tenantID, dealerCustomerID id.ID) (*catalog.DealerCustomer, error) {
	return r.getByID(ctx, tenantID, dealerCustomerID)
}

func (r *DealerCustomerRepo) GetForUpdate(ctx context.Context, tenantID, dealerCustomerID id.ID) (*catalog.DealerCustomer, error) {
	return r.getForUpdate(ctx, tenantID, dealerCustomerID)
}

func (r *DealerCustomerRepo) SetDebt(ctx context.Context, tenantID, dealerCustomerID id.ID, debt types.Money) error {
	return r.setDebt(ctx, tenantID, dealerCustomerID, debt)
}

// Ensure interface compliance.
var _ catalog.DealerCustomerRepository = (*DealerCustomerRepo)(nil)
