package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"savdo/internal/core/apperror"
	"savdo/internal/core/id"
	"savdo/internal/domain/ledger/sale"
	"savdo/internal/infrastructure/storage/postgres"
)

const deliveriesTable = "deliveries"

// DeliveryRepo implements sale.DeliveryRepository.
type DeliveryRepo struct {
	txManager  *postgres.TxManager
	selectCols []string
}

// NewDeliveryRepo creates a new delivery repository.
func NewDeliveryRepo(txManager *postgres.TxManager) *DeliveryRepo {
	return &DeliveryRepo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[sale.Delivery](),
	}
}

// GetBySale returns the delivery record of a sale, if any.
func (r *DeliveryRepo) GetBySale(ctx context.Context, tenantID, saleID id.ID) (*sale.Delivery, error) {
	q := builder().
		Select(r.selectCols...).
		From(deliveriesTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "sale_id": saleID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var delivery sale.Delivery
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &delivery, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("delivery", saleID.String())
		}
		return nil, fmt.Errorf("get delivery: %w", err)
	}

	return &delivery, nil
}

// Create inserts a delivery record. The unique index on sale_id keeps
// deliveries one-per-sale even under concurrent transitions.
func (r *DeliveryRepo) Create(ctx context.Context, delivery *sale.Delivery) error {
	q := builder().
		Insert(deliveriesTable).
		SetMap(postgres.StructToMap(delivery))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert delivery: %w", err)
	}

	return nil
}

// Ensure interface compliance.
var _ sale.DeliveryRepository = (*DeliveryRepo)(nil)
