package catalog_repo

import (
	"context"

	"savdo/internal/core/id"
	"savdo/internal/core/types"
	"savdo/internal/domain/catalog"
	"savdo/internal/infrastructure/storage/postgres"
)

const customersTable = "customers"

// CustomerRepo implements catalog.CustomerRepository.
type CustomerRepo struct {
	debtorRepo[catalog.Customer]
}

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo(txManager *postgres.TxManager) *CustomerRepo {
	return &CustomerRepo{newDebtorRepo[catalog.Customer](txManager, customersTable, "customer")}
}

func (r *CustomerRepo) GetByID(ctx context.Context, tenantID, customerID id.ID) (*catalog.Customer, error) {
	return r.getByID(ctx, tenantID, customerID)
}

func (r *CustomerRepo) GetForUpdate(ctx context.Context, tenantID, customerID id.ID) (*catalog.Customer, error) {
	return r.getForUpdate(ctx, tenantID, customerID)
}

func (r *CustomerRepo) SetDebt(ctx context.Context, tenantID, customerID id.ID, debt types.Money) error {
	return r.setDebt(ctx, tenantID, customerID, debt)
}

// Ensure interface compliance.
var _ catalog.CustomerRepository = (*CustomerRepo)(nil)
