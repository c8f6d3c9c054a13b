// Package ledger_repo provides PostgreSQL implementations for the stock,
// consignment, debt, sale and purchase ledgers.
package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"savdo/internal/core/apperror"
	"savdo/internal/core/id"
	"savdo/internal/domain/ledger/consignment"
	"savdo/internal/infrastructure/storage/postgres"
)

const dealerInventoriesTable = "dealer_inventories"

// builder returns a squirrel builder with PostgreSQL placeholder format.
func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// InventoryRepo implements consignment.InventoryRepository.
type InventoryRepo struct {
	txManager  *postgres.TxManager
	selectCols []string
}

// NewInventoryRepo creates a new dealer inventory repository.
func NewInventoryRepo(txManager *postgres.TxManager) *InventoryRepo {
	return &InventoryRepo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[consignment.DealerInventory](),
	}
}

// GetForUpdate locks the inventory row. A dealer that has never held the
// product gets a zero-quantity row back, unlocked; the first load creates
// the real row.
func (r *InventoryRepo) GetForUpdate(ctx context.Context, tenantID, dealerID, productID id.ID) (*consignment.DealerInventory, error) {
	sql := `
		SELECT tenant_id, dealer_id, product_id, quantity, updated_at
		FROM dealer_inventories
		WHERE tenant_id = $1 AND dealer_id = $2 AND product_id = $3
		FOR UPDATE
	`

	var inv consignment.DealerInventory
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &inv, sql, tenantID, dealerID, productID); err != nil {
		if pgxscan.NotFound(err) {
			return &consignment.DealerInventory{
				TenantID:  tenantID,
				DealerID:  dealerID,
				ProductID: productID,
				Quantity:  0,
			}, nil
		}
		return nil, fmt.Errorf("lock dealer inventory: %w", err)
	}

	return &inv, nil
}

// AdjustQuantity applies a signed delta, creating the row on first load.
// The WHERE guard on the conflict update refuses a decrement below zero.
func (r *InventoryRepo) AdjustQuantity(ctx context.Context, tenantID, dealerID, productID id.ID, delta int64) error {
	sql := `
		INSERT INTO dealer_inventories (tenant_id, dealer_id, product_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id, dealer_id, product_id)
		DO UPDATE SET
			quantity = dealer_inventories.quantity + EXCLUDED.quantity,
			updated_at = EXCLUDED.updated_at
		WHERE dealer_inventories.quantity + EXCLUDED.quantity >= 0
	`

	if delta < 0 {
		// An insert of a negative quantity can only mean a take from a
		// row that does not exist yet.
		sqlUpdate := `
			UPDATE dealer_inventories
			SET quantity = quantity + $4, updated_at = $5
			WHERE tenant_id = $1 AND dealer_id = $2 AND product_id = $3
			  AND quantity + $4 >= 0
		`
		querier := r.txManager.GetQuerier(ctx)
		result, err := querier.Exec(ctx, sqlUpdate, tenantID, dealerID, productID, delta, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("adjust dealer inventory: %w", err)
		}
		if result.RowsAffected() == 0 {
			inv, err := r.currentQuantity(ctx, tenantID, dealerID, productID)
			if err != nil {
				return err
			}
			return apperror.NewInsufficientDealerStock(dealerID.String(), productID.String(), -delta, inv)
		}
		return nil
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, tenantID, dealerID, productID, delta, time.Now().UTC()); err != nil {
		return fmt.Errorf("adjust dealer inventory: %w", err)
	}

	return nil
}

func (r *InventoryRepo) currentQuantity(ctx context.Context, tenantID, dealerID, productID id.ID) (int64, error) {
	sql := `
		SELECT COALESCE(
			(SELECT quantity FROM dealer_inventories
			 WHERE tenant_id = $1 AND dealer_id = $2 AND product_id = $3),
			0
		)
	`
	var quantity int64
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, tenantID, dealerID, productID).Scan(&quantity); err != nil {
		return 0, fmt.Errorf("get dealer inventory: %w", err)
	}
	return quantity, nil
}

// ListByDealer returns all non-zero holdings for a dealer.
func (r *InventoryRepo) ListByDealer(ctx context.Context, tenantID, dealerID id.ID) ([]*consignment.DealerInventory, error) {
	q := builder().
		Select(r.selectCols...).
		From(dealerInventoriesTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "dealer_id": dealerID}).
		Where(squirrel.NotEq{"quantity": int64(0)}).
		OrderBy("product_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var holdings []*consignment.DealerInventory
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &holdings, sql, args...); err != nil {
		return nil, fmt.Errorf("select inventories: %w", err)
	}

	return holdings, nil
}

// TotalsByProduct sums consigned quantity per product across dealers.
func (r *InventoryRepo) TotalsByProduct(ctx context.Context, tenantID id.ID) (map[id.ID]int64, error) {
	sql := `
		SELECT product_id, COALESCE(SUM(quantity), 0) AS total
		FROM dealer_inventories
		WHERE tenant_id = $1
		GROUP BY product_id
	`

	querier := r.txManager.GetQuerier(ctx)
	rows, err := querier.Query(ctx, sql, tenantID)
	if err != nil {
		return nil, fmt.Errorf("query totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[id.ID]int64)
	for rows.Next() {
		var productID id.ID
		var total int64
		if err := rows.Scan(&productID, &total); err != nil {
			return nil, fmt.Errorf("scan total: %w", err)
		}
		totals[productID] = total
	}

	return totals, rows.Err()
}

// Ensure interface compliance.
var _ consignment.InventoryRepository = (*InventoryRepo)(nil)
