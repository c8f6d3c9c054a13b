package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"savdo/internal/core/apperror"
	"savdo/internal/core/id"
	"savdo/internal/domain/ledger/purchase"
	"savdo/internal/infrastructure/storage/postgres"
)

const (
	purchasesTable     = "purchases"
	purchaseItemsTable = "purchase_items"
)

// PurchaseRepo implements purchase.Repository.
type PurchaseRepo struct {
	txManager  *postgres.TxManager
	selectCols []string
	itemCols   []string
}

// NewPurchaseRepo creates a new purchase repository.
func NewPurchaseRepo(txManager *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[purchase.Purchase](),
		itemCols:   postgres.ExtractDBColumns[purchase.PurchaseItem](),
	}
}

// Create inserts the purchase header.
func (r *PurchaseRepo) Create(ctx context.Context, p *purchase.Purchase) error {
	q := builder().
		Insert(purchasesTable).
		SetMap(postgres.StructToMap(p))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}

	return nil
}

// SaveItems inserts the receipt lines.
func (r *PurchaseRepo) SaveItems(ctx context.Context, purchaseID id.ID, items []purchase.PurchaseItem) error {
	if len(items) == 0 {
		return nil
	}

	if dbTx := r.txManager.GetTx(ctx); dbTx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(items))
		for _, item := range items {
			rows = append(rows, []any{
				item.PurchaseID, item.ID, item.ProductID, item.Quantity, item.UnitCost, item.Total,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, purchaseItemsTable, r.itemCols, rows); err != nil {
			return fmt.Errorf("copy purchase items: %w", err)
		}
		return nil
	}

	q := builder().Insert(purchaseItemsTable).Columns(r.itemCols...)
	for _, item := range items {
		q = q.Values(item.PurchaseID, item.ID, item.ProductID, item.Quantity, item.UnitCost, item.Total)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert purchase items: %w", err)
	}

	return nil
}

// GetByID retrieves a purchase header.
func (r *PurchaseRepo) GetByID(ctx context.Context, tenantID, purchaseID id.ID) (*purchase.Purchase, error) {
	q := builder().
		Select(r.selectCols...).
		From(purchasesTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": purchaseID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var found purchase.Purchase
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &found, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("purchase", purchaseID.String())
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}

	return &found, nil
}

// GetItems returns the receipt lines of a purchase.
func (r *PurchaseRepo) GetItems(ctx context.Context, purchaseID id.ID) ([]purchase.PurchaseItem, error) {
	q := builder().
		Select(r.itemCols...).
		From(purchaseItemsTable).
		Where(squirrel.Eq{"purchase_id": purchaseID}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []purchase.PurchaseItem
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select purchase items: %w", err)
	}

	return items, nil
}

// List retrieves receiving history, newest first.
func (r *PurchaseRepo) List(ctx context.Context, tenantID id.ID, filter purchase.PurchaseFilter) ([]*purchase.Purchase, error) {
	q := builder().
		Select(r.selectCols...).
		From(purchasesTable).
		Where(squirrel.Eq{"tenant_id": tenantID})

	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.ToDate})
	}

	q = q.OrderBy("created_at DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var purchases []*purchase.Purchase
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &purchases, sql, args...); err != nil {
		return nil, fmt.Errorf("select purchases: %w", err)
	}

	return purchases, nil
}

// Ensure interface compliance.
var _ purchase.Repository = (*PurchaseRepo)(nil)
