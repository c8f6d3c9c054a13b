package catalog_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"savdo/internal/core/apperror"
	"savdo/internal/core/id"
	"savdo/internal/core/types"
	"savdo/internal/domain/catalog"
	"savdo/internal/infrastructure/storage/postgres"
)

const productsTable = "products"

// ProductRepo implements catalog.ProductRepository.
type ProductRepo struct {
	txManager  *postgres.TxManager
	selectCols []string
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[catalog.Product](),
	}
}

// GetByID retrieves a product without locking.
func (r *ProductRepo) GetByID(ctx context.Context, tenantID, productID id.ID) (*catalog.Product, error) {
	q := builder().
		Select(r.selectCols...).
		From(productsTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": productID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p catalog.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", productID.String())
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return &p, nil
}

// GetManyForUpdate locks the given products with FOR UPDATE. The ORDER BY
// id clause makes concurrent multi-product operations acquire row locks
// in the same order, which rules out lock-order deadlocks.
func (r *ProductRepo) GetManyForUpdate(ctx context.Context, tenantID id.ID, productIDs []id.ID) ([]*catalog.Product, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	sql := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE tenant_id = $1 AND id = ANY($2)
		ORDER BY id
		FOR UPDATE
	`, strings.Join(r.selectCols, ", "))

	var products []*catalog.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &products, sql, tenantID, productIDs); err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}

	return products, nil
}

// AdjustStock applies a signed stock delta. The guard in the WHERE clause
// refuses a decrement below zero even if a caller skipped the lock-and-check
// protocol.
func (r *ProductRepo) AdjustStock(ctx context.Context, tenantID, productID id.ID, delta int64) error {
	q := builder().
		Update(productsTable).
		Set("stock", squirrel.Expr("stock + ?", delta)).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": productID}).
		Where(squirrel.Expr("stock + ? >= 0", delta))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}

	if result.RowsAffected() == 0 {
		p, err := r.GetByID(ctx, tenantID, productID)
		if err != nil {
			return err
		}
		return apperror.NewInsufficientStock(productID.String(), -delta, p.Stock)
	}

	return nil
}

// SetCostPrice overwrites the product's cost basis.
func (r *ProductRepo) SetCostPrice(ctx context.Context, tenantID, productID id.ID, costPrice types.Money) error {
	q := builder().
		Update(productsTable).
		Set("cost_price", costPrice).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set cost price: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID.String())
	}

	return nil
}

// ListBelowMinStock returns products below their replenishment threshold.
func (r *ProductRepo) ListBelowMinStock(ctx context.Context, tenantID id.ID) ([]*catalog.Product, error) {
	q := builder().
		Select(r.selectCols...).
		From(productsTable).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Expr("stock < min_stock")).
		OrderBy("name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var products []*catalog.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &products, sql, args...); err != nil {
		return nil, fmt.Errorf("select low stock: %w", err)
	}

	return products, nil
}

// Ensure interface compliance.
var _ catalog.ProductRepository = (*ProductRepo)(nil)
