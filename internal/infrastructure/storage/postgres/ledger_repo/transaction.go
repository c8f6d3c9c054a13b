package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"savdo/internal/core/id"
	"savdo/internal/domain/ledger/consignment"
	"savdo/internal/infrastructure/storage/postgres"
)

const dealerTransactionsTable = "dealer_transactions"

var dealerTransactionCols = []string{
	"tenant_id", "id", "dealer_id", "type", "product_id",
	"quantity", "price", "total",
	"customer_name", "customer_phone", "notes", "created_at",
}

// TransactionRepo implements consignment.TransactionRepository.
type TransactionRepo struct {
	txManager *postgres.TxManager
}

// NewTransactionRepo creates a new dealer transaction repository.
func NewTransactionRepo(txManager *postgres.TxManager) *TransactionRepo {
	return &TransactionRepo{txManager: txManager}
}

// Append inserts the transactions of one ledger operation.
func (r *TransactionRepo) Append(ctx context.Context, txns []*consignment.DealerTransaction) error {
	if len(txns) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction. Every ledger operation
	// appends inside one, so the fallback only serves ad-hoc callers.
	if dbTx := r.txManager.GetTx(ctx); dbTx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(txns))
		for _, t := range txns {
			rows = append(rows, []any{
				t.TenantID, t.ID, t.DealerID, t.Type, t.ProductID,
				t.Quantity, t.Price, t.Total,
				t.CustomerName, t.CustomerPhone, t.Notes, t.CreatedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, dealerTransactionsTable, dealerTransactionCols, rows); err != nil {
			return fmt.Errorf("copy dealer transactions: %w", err)
		}
		return nil
	}

	q := builder().Insert(dealerTransactionsTable).Columns(dealerTransactionCols...)
	for _, t := range txns {
		q = q.Values(
			t.TenantID, t.ID, t.DealerID, t.Type, t.ProductID,
			t.Quantity, t.Price, t.Total,
			t.CustomerName, t.CustomerPhone, t.Notes, t.CreatedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert dealer transactions: %w", err)
	}

	return nil
}

// List returns the transaction log for a tenant, newest first.
func (r *TransactionRepo) List(ctx context.Context, tenantID id.ID, filter consignment.TransactionFilter) ([]*consignment.DealerTransaction, error) {
	q := buildTransactionQuery(tenantID, filter)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var txns []*consignment.DealerTransaction
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &txns, sql, args...); err != nil {
		return nil, fmt.Errorf("select dealer transactions: %w", err)
	}

	return txns, nil
}

func buildTransactionQuery(tenantID id.ID, filter consignment.TransactionFilter) squirrel.SelectBuilder {
	q := builder().
		Select(dealerTransactionCols...).
		From(dealerTransactionsTable).
		Where(squirrel.Eq{"tenant_id": tenantID})

	if filter.DealerID != nil {
		q = q.Where(squirrel.Eq{"dealer_id": *filter.DealerID})
	}
	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"type": *filter.Type})
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
var _ consignment.TransactionRepository = (*TransactionRepo)(nil)
