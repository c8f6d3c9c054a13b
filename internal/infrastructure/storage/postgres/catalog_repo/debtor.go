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
	"savdo/internal/infrastructure/storage/postgres"
)

// debtorRepo provides the shared balance operations for the three debtor
// tables (dealers, dealer_customers, customers). The tables differ in
// columns but share the lock-read-write protocol for debt changes.
type debtorRepo[T any] struct {
	txManager  *postgres.TxManager
	table      string
	entityName string
	selectCols []string
}

func newDebtorRepo[T any](txManager *postgres.TxManager, table, entityName string) debtorRepo[T] {
	return debtorRepo[T]{
		txManager:  txManager,
		table:      table,
		entityName: entityName,
		selectCols: postgres.ExtractDBColumns[T](),
	}
}

func (r *debtorRepo[T]) getByID(ctx context.Context, tenantID, entityID id.ID) (*T, error) {
	q := builder().
		Select(r.selectCols...).
		From(r.table).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": entityID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entity T
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(r.entityName, entityID.String())
		}
		return nil, fmt.Errorf("get %s: %w", r.entityName, err)
	}

	return &entity, nil
}

func (r *debtorRepo[T]) getForUpdate(ctx context.Context, tenantID, entityID id.ID) (*T, error) {
	sql := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE tenant_id = $1 AND id = $2
		FOR UPDATE
	`, strings.Join(r.selectCols, ", "), r.table)

	var entity T
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &entity, sql, tenantID, entityID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(r.entityName, entityID.String())
		}
		return nil, fmt.Errorf("lock %s: %w", r.entityName, err)
	}

	return &entity, nil
}

// setDebt writes the balance computed by the service while the row lock
// from getForUpdate is held.
func (r *debtorRepo[T]) setDebt(ctx context.Context, tenantID, entityID id.ID, debt types.Money) error {
	q := builder().
		Update(r.table).
		Set("debt", debt).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": entityID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set %s debt: %w", r.entityName, err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, entityID.String())
	}

	return nil
}
