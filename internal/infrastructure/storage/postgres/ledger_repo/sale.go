package ledger_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"savdo/internal/core/apperror"
	"savdo/internal/core/id"
	"savdo/internal/domain/ledger/sale"
	"savdo/internal/infrastructure/storage/postgres"
)

const (
	salesTable     = "sales"
	saleItemsTable = "sale_items"
)

// SaleRepo implements sale.Repository.
type SaleRepo struct {
	txManager  *postgres.TxManager
	selectCols []string
	itemCols   []string
}

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txManager *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[sale.Sale](),
		itemCols:   postgres.ExtractDBColumns[sale.SaleItem](),
	}
}

// Create inserts the sale header.
func (r *SaleRepo) Create(ctx context.Context, newSale *sale.Sale) error {
	q := builder().
		Insert(salesTable).
		SetMap(postgres.StructToMap(newSale))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	return nil
}

// SaveItems inserts the immutable order lines.
func (r *SaleRepo) SaveItems(ctx context.Context, saleID id.ID, items []sale.SaleItem) error {
	if len(items) == 0 {
		return nil
	}

	if dbTx := r.txManager.GetTx(ctx); dbTx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(items))
		for _, item := range items {
			rows = append(rows, []any{
				item.SaleID, item.ID, item.ProductID, item.Quantity, item.Price, item.Total,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, saleItemsTable, r.itemCols, rows); err != nil {
			return fmt.Errorf("copy sale items: %w", err)
		}
		return nil
	}

	q := builder().Insert(saleItemsTable).Columns(r.itemCols...)
	for _, item := range items {
		q = q.Values(item.SaleID, item.ID, item.ProductID, item.Quantity, item.Price, item.Total)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale items: %w", err)
	}

	return nil
}

// GetByID retrieves a sale header without locking.
func (r *SaleRepo) GetByID(ctx context.Context, tenantID, saleID id.ID) (*sale.Sale, error) {
	q := builder().
		Select(r.selectCols...).
		From(salesTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": saleID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var found sale.Sale
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &found, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sale", saleID.String())
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	return &found, nil
}

// GetForUpdate locks the sale row for a status transition.
func (r *SaleRepo) GetForUpdate(ctx context.Context, tenantID, saleID id.ID) (*sale.Sale, error) {
	sql := fmt.Sprintf(`
		SELECT %s
		FROM sales
		WHERE tenant_id = $1 AND id = $2
		FOR UPDATE
	`, strings.Join(r.selectCols, ", "))

	var found sale.Sale
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &found, sql, tenantID, saleID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sale", saleID.String())
		}
		return nil, fmt.Errorf("lock sale: %w", err)
	}

	return &found, nil
}

// GetItems returns the order lines of a sale.
func (r *SaleRepo) GetItems(ctx context.Context, saleID id.ID) ([]sale.SaleItem, error) {
	q := builder().
		Select(r.itemCols...).
		From(saleItemsTable).
		Where(squirrel.Eq{"sale_id": saleID}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []sale.SaleItem
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select sale items: %w", err)
	}

	return items, nil
}

// UpdateStatus writes the new status with an optimistic version check.
// A zero RowsAffected with an existing sale means another transition
// committed first.
func (r *SaleRepo) UpdateStatus(ctx context.Context, tenantID, saleID id.ID, status sale.Status, version int) error {
	q := builder().
		Update(salesTable).
		Set("status", status).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": saleID, "version": version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}

	if result.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, tenantID, saleID); err != nil {
			return err
		}
		return apperror.NewConcurrentModification("sale", saleID.String())
	}

	return nil
}

// List retrieves sales with filtering, newest first.
func (r *SaleRepo) List(ctx context.Context, tenantID id.ID, filter sale.SaleFilter) ([]*sale.Sale, error) {
	q := builder().
		Select(r.selectCols...).
		From(salesTable).
		Where(squirrel.Eq{"tenant_id": tenantID})

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.Source != nil {
		q = q.Where(squirrel.Eq{"source": *filter.Source})
	}
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

	var sales []*sale.Sale
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &sales, sql, args...); err != nil {
		return nil, fmt.Errorf("select sales: %w", err)
	}

	return sales, nil
}

// Ensure interface compliance.
var _ sale.Repository = (*SaleRepo)(nil)
