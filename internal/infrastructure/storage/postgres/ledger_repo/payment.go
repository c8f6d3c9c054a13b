package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"savdo/internal/core/id"
	"savdo/internal/domain/ledger/debt"
	"savdo/internal/infrastructure/storage/postgres"
)

const paymentsTable = "payments"

// PaymentRepo implements debt.PaymentRepository. Payments are immutable:
// only INSERT and SELECT ever touch the table.
type PaymentRepo struct {
	txManager  *postgres.TxManager
	selectCols []string
}

// NewPaymentRepo creates a new payment repository.
func NewPaymentRepo(txManager *postgres.TxManager) *PaymentRepo {
	return &PaymentRepo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[debt.Payment](),
	}
}

// Append inserts an immutable payment record.
func (r *PaymentRepo) Append(ctx context.Context, payment *debt.Payment) error {
	q := builder().
		Insert(paymentsTable).
		SetMap(postgres.StructToMap(payment))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	return nil
}

// List returns the payment trail for a tenant, newest first.
func (r *PaymentRepo) List(ctx context.Context, tenantID id.ID, filter debt.PaymentFilter) ([]*debt.Payment, error) {
	q := buildPaymentQuery(r.selectCols, tenantID, filter)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var payments []*debt.Payment
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &payments, sql, args...); err != nil {
		return nil, fmt.Errorf("select payments: %w", err)
	}

	return payments, nil
}

func buildPaymentQuery(cols []string, tenantID id.ID, filter debt.PaymentFilter) squirrel.SelectBuilder {
	q := builder().
		Select(cols...).
		From(paymentsTable).
		Where(squirrel.Eq{"tenant_id": tenantID})

	if filter.DebtorType != nil {
		q = q.Where(squirrel.Eq{"debtor_type": *filter.DebtorType})
	}
	if filter.DebtorID != nil {
		q = q.Where(squirrel.Eq{"debtor_id": *filter.DebtorID})
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

	return q
}

// Ensure interface compliance.
var _ debt.PaymentRepository = (*PaymentRepo)(nil)
