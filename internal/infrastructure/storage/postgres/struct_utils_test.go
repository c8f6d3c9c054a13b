package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"savdo/internal/core/id"
	"savdo/internal/core/types"
	"savdo/internal/domain/ledger/debt"
	"savdo/internal/domain/ledger/sale"
)

type baseRow struct {
	TenantID id.ID `db:"tenant_id"`
	ID       id.ID `db:"id"`
}

type testRow struct {
	baseRow
	Name    string `db:"name"`
	Skipped string `db:"-"`
	NoTag   string
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[testRow]()
	assert.Equal(t, []string{"tenant_id", "id", "name"}, cols)

	paymentCols := ExtractDBColumns[debt.Payment]()
	assert.Contains(t, paymentCols, "tenant_id")
	assert.Contains(t, paymentCols, "debtor_type")
	assert.Contains(t, paymentCols, "amount")
}

func TestExtractDBColumns_SkipsIgnoredFields(t *testing.T) {
	// Items is carried in memory only, never as a column.
	cols := ExtractDBColumns[sale.Sale]()
	assert.NotContains(t, cols, "-")
	assert.NotContains(t, cols, "items")
	assert.Contains(t, cols, "status")
	assert.Contains(t, cols, "version")
}

func TestStructToMap(t *testing.T) {
	tenantID := id.New()
	rowID := id.New()
	row := testRow{
		baseRow: baseRow{TenantID: tenantID, ID: rowID},
		Name:    "widget",
		Skipped: "ignored",
		NoTag:   "ignored",
	}

	m := StructToMap(row)

	assert.Equal(t, tenantID, m["tenant_id"])
	assert.Equal(t, rowID, m["id"])
	assert.Equal(t, "widget", m["name"])
	assert.Len(t, m, 3)
}

func TestStructToMap_Payment(t *testing.T) {
	p := debt.Payment{
		TenantID:   id.New(),
		ID:         id.New(),
		DebtorType: debt.DebtorDealer,
		DebtorID:   id.New(),
		Amount:     types.MustMoney("2500"),
		Method:     "cash",
		CreatedAt:  time.Now().UTC(),
	}

	m := StructToMap(&p)

	assert.Equal(t, p.ID, m["id"])
	assert.Equal(t, debt.DebtorDealer, m["debtor_type"])
	assert.Equal(t, p.Amount, m["amount"])
}
