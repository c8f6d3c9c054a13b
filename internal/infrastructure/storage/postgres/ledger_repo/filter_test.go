package ledger_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savdo/internal/core/id"
	"savdo/internal/domain/ledger/consignment"
	"savdo/internal/domain/ledger/debt"
)

func TestBuildTransactionQuery(t *testing.T) {
	tenantID := id.New()
	dealerID := id.New()
	productID := id.New()
	sellType := consignment.TransactionSell
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		filter   consignment.TransactionFilter
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "tenant only",
			filter:   consignment.TransactionFilter{},
			wantSQL:  "SELECT tenant_id, id, dealer_id, type, product_id, quantity, price, total, customer_name, customer_phone, notes, created_at FROM dealer_transactions WHERE tenant_id = $1 ORDER BY created_at DESC",
			wantArgs: []any{tenantID},
		},
		{
			name:     "dealer and type",
			filter:   consignment.TransactionFilter{DealerID: &dealerID, Type: &sellType},
			wantSQL:  "SELECT tenant_id, id, dealer_id, type, product_id, quantity, price, total, customer_name, customer_phone, notes, created_at FROM dealer_transactions WHERE tenant_id = $1 AND dealer_id = $2 AND type = $3 ORDER BY created_at DESC",
			wantArgs: []any{tenantID, dealerID, sellType},
		},
		{
			name:     "product with date and paging",
			filter:   consignment.TransactionFilter{ProductID: &productID, FromDate: &from, Limit: 20, Offset: 40},
			wantSQL:  "SELECT tenant_id, id, dealer_id, type, product_id, quantity, price, total, customer_name, customer_phone, notes, created_at FROM dealer_transactions WHERE tenant_id = $1 AND product_id = $2 AND created_at >= $3 ORDER BY created_at DESC LIMIT 20 OFFSET 40",
			wantArgs: []any{tenantID, productID, from},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := buildTransactionQuery(tenantID, tt.filter).ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuildPaymentQuery(t *testing.T) {
	tenantID := id.New()
	debtorID := id.New()
	dealerType := debt.DebtorDealer
	cols := []string{"tenant_id", "id", "debtor_type", "debtor_id", "amount", "method", "notes", "created_at"}

	tests := []struct {
		name     string
		filter   debt.PaymentFilter
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "tenant only",
			filter:   debt.PaymentFilter{},
			wantSQL:  "SELECT tenant_id, id, debtor_type, debtor_id, amount, method, notes, created_at FROM payments WHERE tenant_id = $1 ORDER BY created_at DESC",
			wantArgs: []any{tenantID},
		},
		{
			name:     "by debtor",
			filter:   debt.PaymentFilter{DebtorType: &dealerType, DebtorID: &debtorID},
			wantSQL:  "SELECT tenant_id, id, debtor_type, debtor_id, amount, method, notes, created_at FROM payments WHERE tenant_id = $1 AND debtor_type = $2 AND debtor_id = $3 ORDER BY created_at DESC",
			wantArgs: []any{tenantID, dealerType, debtorID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := buildPaymentQuery(cols, tenantID, tt.filter).ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
