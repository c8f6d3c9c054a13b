package consignment_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savdo/internal/core/apperror"
	"savdo/internal/core/id"
	"savdo/internal/core/types"
	"savdo/internal/domain/catalog"
	"savdo/internal/domain/ledger/consignment"
	"savdo/internal/domain/ledger/debt"
	"savdo/internal/domain/ledger/ledgertest"
	"savdo/internal/domain/ledger/stock"
)

type fixture struct {
	store    *ledgertest.Store
	svc      *consignment.Service
	tenantID id.ID
	dealer   *catalog.Dealer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := ledgertest.NewStore()
	tenantID := id.New()

	dealer := &catalog.Dealer{
		TenantID: tenantID,
		ID:       id.New(),
		Name:     "Dealer One",
		Debt:     types.Zero(),
	}
	store.Dealers[dealer.ID] = dealer

	svc := consignment.NewService(
		stock.NewService(store.ProductRepo()),
		store.InventoryRepo(),
		store.TransactionRepo(),
		store.DealerRepo(),
		store.DealerCustomerRepo(),
		store.PaymentRepo(),
		ledgertest.NewTxManager(store),
	)
	return &fixture{store: store, svc: svc, tenantID: tenantID, dealer: dealer}
}

func (f *fixture) seedProduct(price string, quantity int64) *catalog.Product {
	p := &catalog.Product{
		TenantID: f.tenantID,
		ID:       id.New(),
		Name:     "Product",
		Stock:    quantity,
		Price:    types.MustMoney(price),
	}
	f.store.Products[p.ID] = p
	return p
}

func (f *fixture) inventoryQty(productID id.ID) int64 {
	key := ledgertest.InventoryKey{DealerID: f.dealer.ID, ProductID: productID}
	if inv, ok := f.store.Inventories[key]; ok {
		return inv.Quantity
	}
	return 0
}

func TestService_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("partial payment accrues the remainder as dealer debt", func(t *testing.T) {
		f := newFixture(t)
		p := f.seedProduct("1000", 50)

		result, err := f.svc.Load(ctx, consignment.LoadInput{
			TenantID:   f.tenantID,
			DealerID:   f.dealer.ID,
			Items:      []consignment.LoadItem{{ProductID: p.ID, Quantity: 10}},
			Policy:     consignment.PolicyPartial,
			PaidAmount: types.MustMoney("6000"),
			Method:     "cash",
		})
		require.NoError(t, err)

		assert.True(t, result.TotalLoaded.Equal(types.MustMoney("10000")))
		assert.True(t, result.DealerDebt.Equal(types.MustMoney("4000")))
		require.NotNil(t, result.PaymentID)

		assert.EqualValues(t, 40, f.store.Products[p.ID].Stock)
		assert.EqualValues(t, 10, f.inventoryQty(p.ID))
		assert.True(t, f.store.Dealers[f.dealer.ID].Debt.Equal(types.MustMoney("4000")))

		require.Len(t, f.store.Transactions, 1)
		txn := f.store.Transactions[0]
		assert.Equal(t, consignment.TransactionLoad, txn.Type)
		assert.EqualValues(t, 10, txn.Quantity)
		assert.True(t, txn.Total.Equal(types.MustMoney("10000")))

		require.Len(t, f.store.Payments, 1)
		payment := f.store.Payments[0]
		assert.Equal(t, debt.DebtorDealer, payment.DebtorType)
		assert.Equal(t, f.dealer.ID, payment.DebtorID)
		assert.True(t, payment.Amount.Equal(types.MustMoney("6000")))
	})

	t.Run("cash policy records full payment and no debt", func(t *testing.T) {
		f := newFixture(t)
		p := f.seedProduct("500", 20)

		result, err := f.svc.Load(ctx, consignment.LoadInput{
			TenantID: f.tenantID,
			DealerID: f.dealer.ID,
			Items:    []consignment.LoadItem{{ProductID: p.ID, Quantity: 4}},
			Policy:   consignment.PolicyCash,
			Method:   "cash",
		})
		require.NoError(t, err)

		assert.True(t, result.DealerDebt.IsZero())
		require.Len(t, f.store.Payments, 1)
		assert.True(t, f.store.Payments[0].Amount.Equal(types.MustMoney("2000")))
		assert.True(t, f.store.Dealers[f.dealer.ID].Debt.IsZero())
	})

	t.Run("debt policy accrues the full total and records no payment", func(t *testing.T) {
		f := newFixture(t)
		p := f.seedProduct("500", 20)

		result, err := f.svc.Load(ctx, consignment.LoadInput{
			TenantID: f.tenantID,
			DealerID: f.dealer.ID,
			Items:    []consignment.LoadItem{{ProductID: p.ID, Quantity: 4}},
			Policy:   consignment.PolicyDebt,
		})
		require.NoError(t, err)

		assert.True(t, result.DealerDebt.Equal(types.MustMoney("2000")))
		assert.Nil(t, result.PaymentID)
		assert.Empty(t, f.store.Payments)
		assert.True(t, f.store.Dealers[f.dealer.ID].Debt.Equal(types.MustMoney("2000")))
	})

	t.Run("partial payment bounds", func(t *testing.T) {
		cases := []struct {
			name string
			paid string
		}{
			{"zero", "0"},
			{"negative", "-1"},
			{"equal to total", "2000"},
			{"above total", "2500"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				f := newFixture(t)
				p := f.seedProduct("500", 20)

				_, err := f.svc.Load(ctx, consignment.LoadInput{
					TenantID:   f.tenantID,
					DealerID:   f.dealer.ID,
					Items:      []consignment.LoadItem{{ProductID: p.ID, Quantity: 4}},
					Policy:     consignment.PolicyPartial,
					PaidAmount: types.MustMoney(tc.paid),
				})
				require.Error(t, err)
				assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

				assert.EqualValues(t, 20, f.store.Products[p.ID].Stock)
				assert.EqualValues(t, 0, f.inventoryQty(p.ID))
				assert.Empty(t, f.store.Transactions)
			})
		}
	})

	t.Run("insufficient central stock leaves everything untouched", func(t *testing.T) {
		f := newFixture(t)
		p1 := f.seedProduct("100", 50)
		p2 := f.seedProduct("100", 2)

		_, err := f.svc.Load(ctx, consignment.LoadInput{
			TenantID: f.tenantID,
			DealerID: f.dealer.ID,
			Items: []consignment.LoadItem{
				{ProductID: p1.ID, Quantity: 10},
				{ProductID: p2.ID, Quantity: 5},
			},
			Policy: consignment.PolicyDebt,
		})
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))

		assert.EqualValues(t, 50, f.store.Products[p1.ID].Stock)
		assert.EqualValues(t, 2, f.store.Products[p2.ID].Stock)
		assert.EqualValues(t, 0, f.inventoryQty(p1.ID))
		assert.Empty(t, f.store.Transactions)
		assert.True(t, f.store.Dealers[f.dealer.ID].Debt.IsZero())
	})

	t.Run("mid-operation failure rolls back all mutations", func(t *testing.T) {
		f := newFixture(t)
		p := f.seedProduct("1000", 50)

		f.store.FailAfterMutations = 2

		_, err := f.svc.Load(ctx, consignment.LoadInput{
			TenantID: f.tenantID,
			DealerID: f.dealer.ID,
			Items:    []consignment.LoadItem{{ProductID: p.ID, Quantity: 10}},
			Policy:   consignment.PolicyDebt,
		})
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeDatabase))

		assert.EqualValues(t, 50, f.store.Products[p.ID].Stock)
		assert.EqualValues(t, 0, f.inventoryQty(p.ID))
		assert.Empty(t, f.store.Transactions)
		assert.Empty(t, f.store.Payments)
		assert.True(t, f.store.Dealers[f.dealer.ID].Debt.IsZero())
	})

	t.Run("unknown dealer", func(t *testing.T) {
		f := newFixture(t)
		p := f.seedProduct("1000", 50)

		_, err := f.svc.Load(ctx, consignment.LoadInput{
			TenantID: f.tenantID,
			DealerID: id.New(),
			Items:    []consignment.LoadItem{{ProductID: p.ID, Quantity: 1}},
			Policy:   consignment.PolicyCash,
		})
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestService_Sell(t *testing.T) {
	ctx := context.Background()

	load := func(t *testing.T, f *fixture, p *catalog.Product, qty int64) {
		t.Helper()
		_, err := f.svc.Load(ctx, consignment.LoadInput{
			TenantID: f.tenantID,
			DealerID: f.dealer.ID,
			Items:    []consignment.LoadItem{{ProductID: p.ID, Quantity: qty}},
			Policy:   consignment.PolicyCash,
		})
		require.NoError(t, err)
	}

	t.Run("reduces dealer inventory only", func(t *testing.T) {
		f := newFixture(t)
		p := f.seedProduct("1000", 50)
		load(t, f, p, 10)

		err := f.svc.Sell(ctx, consignment.SellInput{
			TenantID:     f.tenantID,
			DealerID:     f.dealer.ID,
			Items:        []consignment.SellItem{{ProductID: p.ID, Quantity: 3, Price: types.MustMoney("1200")}},
			CustomerName: "Walk-in",
			PaidAmount:   types.MustMoney("3600"),
		})
		require.NoError(t, err)

		assert.EqualValues(t, 7, f.inventoryQty(p.ID))
		assert.EqualValues(t, 40, f.store.Products[p.ID].Stock)
		assert.True(t, f.store.Dealers[f.dealer.ID].Debt.IsZero())

		sells := filterTxns(f.store.Transactions, consignment.TransactionSell)
		require.Len(t, sells, 1)
		assert.Equal(t, "Walk-in", sells[0].CustomerName)
		assert.True(t, sells[0].Total.Equal(types.MustMoney("3600")))
	})

	t.Run("oversell is rejected and holdings stay put", func(t *testing.T) {
		f := newFixture(t)
		p := f.seedProduct("1000", 50)
		load(t, f, p, 3)

		err := f.svc.Sell(ctx, consignment.SellInput{
			TenantID: f.tenantID,
			DealerID: f.dealer.ID,
			Items:    []consignment.SellItem{{ProductID: p.ID, Quantity: 5, Price: types.MustMoney("1000")}},
		})
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientDealerStock))

		assert.EqualValues(t, 3, f.inventoryQty(p.ID))
		assert.Empty(t, filterTxns(f.store.Transactions, consignment.TransactionSell))
	})

	t.Run("unpaid remainder accrues to the dealer sub-customer", func(t *testing.T) {
		f := newFixture(t)
		p := f.seedProduct("1000", 50)
		load(t, f, p, 10)

		dc := &catalog.DealerCustomer{
			TenantID: f.tenantID,
			ID:       id.New(),
			DealerID: f.dealer.ID,
			Name:     "Regular",
			Debt:     types.MustMoney("500"),
		}
		f.store.DealerCustomers[dc.ID] = dc

		err := f.svc.Sell(ctx, consignment.SellInput{
			TenantID:         f.tenantID,
			DealerID:         f.dealer.ID,
			Items:            []consignment.SellItem{{ProductID: p.ID, Quantity: 2, Price: types.MustMoney("1500")}},
			DealerCustomerID: &dc.ID,
			PaidAmount:       types.MustMoney("1000"),
		})
		require.NoError(t, err)

		assert.True(t, f.store.DealerCustomers[dc.ID].Debt.Equal(types.MustMoney("2500")))
	})

	t.Run("sub-customer of another dealer is rejected", func(t *testing.T) {
		f := newFixture(t)
		p := f.seedProduct("1000", 50)
		load(t, f, p, 10)

		dc := &catalog.DealerCustomer{
			TenantID: f.tenantID,
			ID:       id.New(),
			DealerID: id.New(),
			Debt:     types.Zero(),
		}
		f.store.DealerCustomers[dc.ID] = dc

		err := f.svc.Sell(ctx, consignment.SellInput{
			TenantID:         f.tenantID,
			DealerID:         f.dealer.ID,
			Items:            []consignment.SellItem{{ProductID: p.ID, Quantity: 1, Price: types.MustMoney("1000")}},
			DealerCustomerID: &dc.ID,
		})
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))

		assert.EqualValues(t, 10, f.inventoryQty(p.ID))
	})
}

func TestService_Return(t *testing.T) {
	ctx := context.Background()

	t.Run("restores central stock and reduces dealer debt", func(t *testing.T) {
		f := newFixture(t)
		p := f.seedProduct("1000", 50)

		_, err := f.svc.Load(ctx, consignment.LoadInput{
			TenantID: f.tenantID,
			DealerID: f.dealer.ID,
			Items:    []consignment.LoadItem{{ProductID: p.ID, Quantity: 10}},
			Policy:   consignment.PolicyDebt,
		})
		require.NoError(t, err)
		require.True(t, f.store.Dealers[f.dealer.ID].Debt.Equal(types.MustMoney("10000")))

		err = f.svc.Return(ctx, consignment.ReturnInput{
			TenantID: f.tenantID,
			DealerID: f.dealer.ID,
			Items:    []consignment.ReturnItem{{ProductID: p.ID, Quantity: 4}},
		})
		require.NoError(t, err)

		assert.EqualValues(t, 44, f.store.Products[p.ID].Stock)
		assert.EqualValues(t, 6, f.inventoryQty(p.ID))
		assert.True(t, f.store.Dealers[f.dealer.ID].Debt.Equal(types.MustMoney("6000")))

		returns := filterTxns(f.store.Transactions, consignment.TransactionReturn)
		require.Len(t, returns, 1)
		assert.EqualValues(t, 4, returns[0].Quantity)
	})

	t.Run("debt reduction floors at zero", func(t *testing.T) {
		f := newFixture(t)
		p := f.seedProduct("1000", 50)

		_, err := f.svc.Load(ctx, consignment.LoadInput{
			TenantID:   f.tenantID,
			DealerID:   f.dealer.ID,
			Items:      []consignment.LoadItem{{ProductID: p.ID, Quantity: 10}},
			Policy:     consignment.PolicyPartial,
			PaidAmount: types.MustMoney("8000"),
		})
		require.NoError(t, err)
		require.True(t, f.store.Dealers[f.dealer.ID].Debt.Equal(types.MustMoney("2000")))

		err = f.svc.Return(ctx, consignment.ReturnInput{
			TenantID: f.tenantID,
			DealerID: f.dealer.ID,
			Items:    []consignment.ReturnItem{{ProductID: p.ID, Quantity: 5}},
		})
		require.NoError(t, err)

		assert.True(t, f.store.Dealers[f.dealer.ID].Debt.IsZero())
	})

	t.Run("returning more than held is rejected", func(t *testing.T) {
		f := newFixture(t)
		p := f.seedProduct("1000", 50)

		_, err := f.svc.Load(ctx, consignment.LoadInput{
			TenantID: f.tenantID,
			DealerID: f.dealer.ID,
			Items:    []consignment.LoadItem{{ProductID: p.ID, Quantity: 3}},
			Policy:   consignment.PolicyCash,
		})
		require.NoError(t, err)

		err = f.svc.Return(ctx, consignment.ReturnInput{
			TenantID: f.tenantID,
			DealerID: f.dealer.ID,
			Items:    []consignment.ReturnItem{{ProductID: p.ID, Quantity: 5}},
		})
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientDealerStock))

		assert.EqualValues(t, 47, f.store.Products[p.ID].Stock)
		assert.EqualValues(t, 3, f.inventoryQty(p.ID))
	})
}

// The total of central stock plus consigned holdings only changes when
// goods enter through receiving or leave through an end-customer sale.
func TestStockConservation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedProduct("1000", 100)

	totalUnits := func() int64 {
		totals, err := f.store.InventoryRepo().TotalsByProduct(ctx, f.tenantID)
		require.NoError(t, err)
		return f.store.Products[p.ID].Stock + totals[p.ID]
	}

	require.EqualValues(t, 100, totalUnits())

	_, err := f.svc.Load(ctx, consignment.LoadInput{
		TenantID: f.tenantID,
		DealerID: f.dealer.ID,
		Items:    []consignment.LoadItem{{ProductID: p.ID, Quantity: 30}},
		Policy:   consignment.PolicyDebt,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 100, totalUnits())

	err = f.svc.Return(ctx, consignment.ReturnInput{
		TenantID: f.tenantID,
		DealerID: f.dealer.ID,
		Items:    []consignment.ReturnItem{{ProductID: p.ID, Quantity: 10}},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 100, totalUnits())

	err = f.svc.Sell(ctx, consignment.SellInput{
		TenantID:   f.tenantID,
		DealerID:   f.dealer.ID,
		Items:      []consignment.SellItem{{ProductID: p.ID, Quantity: 5, Price: types.MustMoney("1000")}},
		PaidAmount: types.MustMoney("5000"),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 95, totalUnits())
}

func TestService_InventoryAndHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedProduct("1000", 50)

	_, err := f.svc.Load(ctx, consignment.LoadInput{
		TenantID: f.tenantID,
		DealerID: f.dealer.ID,
		Items:    []consignment.LoadItem{{ProductID: p.ID, Quantity: 8}},
		Policy:   consignment.PolicyCash,
	})
	require.NoError(t, err)

	holdings, err := f.svc.Inventory(ctx, f.tenantID, f.dealer.ID)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.EqualValues(t, 8, holdings[0].Quantity)

	loadType := consignment.TransactionLoad
	history, err := f.svc.History(ctx, f.tenantID, consignment.TransactionFilter{
		DealerID: &f.dealer.ID,
		Type:     &loadType,
	})
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func filterTxns(txns []*consignment.DealerTransaction, kind consignment.TransactionType) []*consignment.DealerTransaction {
	var out []*consignment.DealerTransaction
	for _, txn := range txns {
		if txn.Type == kind {
			out = append(out, txn)
		}
	}
	return out
}
