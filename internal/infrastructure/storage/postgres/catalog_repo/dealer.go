package catalog_repo

import (
	"context"

	"savdo/internal/core/id"
	"savdo/internal/core/types"
	"savdo/internal/domain/catalog"
	"savdo/internal/infrastructure/storage/postgres"
)

const dealersTable = "dealers"

// DealerRepo implements catalog.DealerRepository.
type DealerRepo struct {
	debtorRepo[catalog.Dealer]
}

// NewDealerRepo creates a new dealer repository.
func NewDealerRepo(txManager *postgres.TxManager) *DealerRepo {
	return &DealerRepo{newDebtorRepo[catalog.Dealer](txManager, dealersTable, "dealer")}
}

func (r *DealerRepo) GetByID(ctx context.Context, tenantID, dealerID id.ID) (*catalog.Dealer, error) {
	return r.getByID(ctx, tenantID, dealerID)
}

func (r *DealerRepo) GetForUpdate(ctx context.Context, tenantID, dealerID id.ID) (*catalog.Dealer, error) {
	return r.getForUpdate(ctx, tenantID, dealerID)
}

func (r *DealerRepo) SetDebt(ctx context.Context, tenantID, dealerID id.ID, debt types.Money) error {
	return r.setDebt(ctx, tenantID, dealerID, debt)
}

// Ensure interface compliance.
var _ catalog.DealerRepository = (*DealerRepo)(nil)
