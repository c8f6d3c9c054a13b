package sale_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savdo/internal/core/apperror"
	"savdo/internal/core/id"
	"savdo/internal/core/types"
	"savdo/internal/domain/catalog"
	"savdo/internal/domain/ledger/ledgertest"
	"savdo/internal/domain/ledger/sale"
	"savdo/internal/domain/ledger/stock"
)

type fixture struct {
	store    *ledgertest.Store
	svc      *sale.Service
	tenantID id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := ledgertest.NewStore()
	svc := sale.NewService(
		store.SaleRepo(),
		store.DeliveryRepo(),
		stock.NewService(store.ProductRepo()),
		store.CustomerRepo(),
		ledgertest.NewTxManager(store),
	)
	return &fixture{store: store, svc: svc, tenantID: id.New()}
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

func (f *fixture) seedCustomer(debtAmount string) *catalog.Customer {
	c := &catalog.Customer{
		TenantID: f.tenantID,
		ID:       id.New(),
		Name:     "Customer",
		Debt:     types.MustMoney(debtAmount),
	}
	f.store.Customers[c.ID] = c
	return c
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("cash sale decrements stock and stays fully paid", func(t *testing.T) {
		f := newFixture(t)
		p := f.seedProduct("500", 50)

		created, err := f.svc.Create(ctx, sale.CreateInput{
			TenantID:    f.tenantID,
			Items:       []sale.CreateItem{{ProductID: p.ID, Quantity: 2}},
			PaidAmount:  types.MustMoney("1000"),
			PaymentType: sale.PaymentCash,
			Source:      sale.SourcePOS,
		})
		require.NoError(t, err)

		assert.Equal(t, sale.StatusPending, created.Status)
		assert.Equal(t, 1, created.Version)
		assert.True(t, created.TotalAmount.Equal(types.MustMoney("1000")))
		assert.True(t, created.UnpaidAmount().IsZero())
		assert.EqualValues(t, 48, f.store.Products[p.ID].Stock)

		stored := f.store.Sales[created.ID]
		require.NotNil(t, stored)
		assert.Equal(t, sale.StatusPending, stored.Status)
		require.Len(t, f.store.SaleItems[created.ID], 1)
	})

	t.Run("zero line price falls back to the catalog price", func(t *testing.T) {
		f := newFixture(t)
		p := f.seedProduct("750", 10)

		created, err := f.svc.Create(ctx, sale.CreateInput{
			TenantID:    f.tenantID,
			Items:       []sale.CreateItem{{ProductID: p.ID, Quantity: 2}},
			PaidAmount:  types.MustMoney("1500"),
			PaymentType: sale.PaymentCard,
			Source:      sale.SourcePOS,
		})
		require.NoError(t, err)
		assert.True(t, created.TotalAmount.Equal(types.MustMoney("1500")))
		assert.True(t, created.Items[0].Price.Equal(types.MustMoney("750")))
	})

	t.Run("debt sale accrues the full total to the customer", func(t *testing.T) {
		f := newFixture(t)
		p := f.seedProduct("500", 50)
		c := f.seedCustomer("0")

		created, err := f.svc.Create(ctx, sale.CreateInput{
			TenantID:    f.tenantID,
			CustomerID:  &c.ID,
			Items:       []sale.CreateItem{{ProductID: p.ID, Quantity: 2}},
			PaymentType: sale.PaymentDebt,
			Source:      sale.SourcePortal,
		})
		require.NoError(t, err)

		assert.True(t, created.UnpaidAmount().Equal(types.MustMoney("1000")))
		assert.True(t, f.store.Customers[c.ID].Debt.Equal(types.MustMoney("1000")))
		assert.EqualValues(t, 48, f.store.Products[p.ID].Stock)
	})

	t.Run("partial sale accrues only the remainder", func(t *testing.T) {
		f := newFixture(t)
		p := f.seedProduct("500", 50)
		c := f.seedCustomer("200")

		_, err := f.svc.Create(ctx, sale.CreateInput{
			TenantID:    f.tenantID,
			CustomerID:  &c.ID,
			Items:       []sale.CreateItem{{ProductID: p.ID, Quantity: 4}},
			PaidAmount:  types.MustMoney("1200"),
			PaymentType: sale.PaymentPartial,
			Source:      sale.SourcePOS,
		})
		require.NoError(t, err)

		assert.True(t, f.store.Customers[c.ID].Debt.Equal(types.MustMoney("1000")))
	})

	t.Run("discount reduces the total", func(t *testing.T) {
		f := newFixture(t)
		p := f.seedProduct("500", 50)

		created, err := f.svc.Create(ctx, sale.CreateInput{
			TenantID:    f.tenantID,
			Items:       []sale.CreateItem{{ProductID: p.ID, Quantity: 2}},
			Discount:    types.MustMoney("100"),
			PaidAmount:  types.MustMoney("900"),
			PaymentType: sale.PaymentCash,
			Source:      sale.SourcePOS,
		})
		require.NoError(t, err)
		assert.True(t, created.TotalAmount.Equal(types.MustMoney("900")))
	})

	t.Run("discount above the total is rejected", func(t *testing.T) {
		f := newFixture(t)
		p := f.seedProduct("500", 50)

		_, err := f.svc.Create(ctx, sale.CreateInput{
			TenantID:    f.tenantID,
			Items:       []sale.CreateItem{{ProductID: p.ID, Quantity: 1}},
			Discount:    types.MustMoney("600"),
			PaymentType: sale.PaymentDebt,
			Source:      sale.SourcePOS,
		})
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
		assert.EqualValues(t, 50, f.store.Products[p.ID].Stock)
	})

	t.Run("insufficient stock rejects the whole sale", func(t *testing.T) {
		f := newFixture(t)
		p1 := f.seedProduct("500", 50)
		p2 := f.seedProduct("300", 1)

		_, err := f.svc.Create(ctx, sale.CreateInput{
			TenantID: f.tenantID,
			Items: []sale.CreateItem{
				{ProductID: p1.ID, Quantity: 2},
				{ProductID: p2.ID, Quantity: 3},
			},
			PaymentType: sale.PaymentDebt,
			Source:      sale.SourcePOS,
		})
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))

		assert.EqualValues(t, 50, f.store.Products[p1.ID].Stock)
		assert.EqualValues(t, 1, f.store.Products[p2.ID].Stock)
		assert.Empty(t, f.store.Sales)
	})

	t.Run("debt sale without a customer is rejected", func(t *testing.T) {
		f := newFixture(t)
		p := f.seedProduct("500", 50)

		_, err := f.svc.Create(ctx, sale.CreateInput{
			TenantID:    f.tenantID,
			Items:       []sale.CreateItem{{ProductID: p.ID, Quantity: 2}},
			PaymentType: sale.PaymentDebt,
			Source:      sale.SourcePOS,
		})
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

		assert.EqualValues(t, 50, f.store.Products[p.ID].Stock)
		assert.Empty(t, f.store.Sales)
	})

	t.Run("payment type rules", func(t *testing.T) {
		cases := []struct {
			name        string
			paymentType sale.PaymentType
			paid        string
		}{
			{"cash underpaid", sale.PaymentCash, "900"},
			{"card overpaid", sale.PaymentCard, "1100"},
			{"debt with paid amount", sale.PaymentDebt, "100"},
			{"partial zero", sale.PaymentPartial, "0"},
			{"partial full", sale.PaymentPartial, "1000"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				f := newFixture(t)
				p := f.seedProduct("500", 50)
				c := f.seedCustomer("0")

				_, err := f.svc.Create(ctx, sale.CreateInput{
					TenantID:    f.tenantID,
					CustomerID:  &c.ID,
					Items:       []sale.CreateItem{{ProductID: p.ID, Quantity: 2}},
					PaidAmount:  types.MustMoney(tc.paid),
					PaymentType: tc.paymentType,
					Source:      sale.SourcePOS,
				})
				require.Error(t, err)
				assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
				assert.EqualValues(t, 50, f.store.Products[p.ID].Stock)
			})
		}
	})

	t.Run("unknown payment type and source", func(t *testing.T) {
		f := newFixture(t)
		p := f.seedProduct("500", 50)

		_, err := f.svc.Create(ctx, sale.CreateInput{
			TenantID:    f.tenantID,
			Items:       []sale.CreateItem{{ProductID: p.ID, Quantity: 1}},
			PaymentType: "check",
			Source:      sale.SourcePOS,
		})
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

		_, err = f.svc.Create(ctx, sale.CreateInput{
			TenantID:    f.tenantID,
			Items:       []sale.CreateItem{{ProductID: p.ID, Quantity: 1}},
			PaidAmount:  types.MustMoney("500"),
			PaymentType: sale.PaymentCash,
			Source:      "kiosk",
		})
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	})
}

func TestService_Transition(t *testing.T) {
	ctx := context.Background()

	createDebtSale := func(t *testing.T, f *fixture, p *catalog.Product, c *catalog.Customer) *sale.Sale {
		t.Helper()
		created, err := f.svc.Create(ctx, sale.CreateInput{
			TenantID:    f.tenantID,
			CustomerID:  &c.ID,
			Items:       []sale.CreateItem{{ProductID: p.ID, Quantity: 2}},
			PaymentType: sale.PaymentDebt,
			Source:      sale.SourcePortal,
		})
		require.NoError(t, err)
		return created
	}

	t.Run("full delivery path", func(t *testing.T) {
		f := newFixture(t)
		p := f.seedProduct("500", 50)
		c := f.seedCustomer("0")
		created := createDebtSale(t, f, p, c)
		dealerID := id.New()

		for _, to := range []sale.Status{
			sale.StatusCompleted,
			sale.StatusDelivering,
			sale.StatusShipped,
			sale.StatusDelivered,
		} {
			in := sale.TransitionInput{TenantID: f.tenantID, SaleID: created.ID, To: to}
			if to == sale.StatusDelivering {
				in.DealerID = &dealerID
			}
			updated, err := f.svc.Transition(ctx, in)
			require.NoError(t, err, "transition to %s", to)
			assert.Equal(t, to, updated.Status)
		}

		final := f.store.Sales[created.ID]
		assert.Equal(t, sale.StatusDelivered, final.Status)
		assert.Equal(t, 5, final.Version)

		delivery := f.store.Deliveries[created.ID]
		require.NotNil(t, delivery)
		assert.Equal(t, "assigned", delivery.Status)
		require.NotNil(t, delivery.DealerID)
		assert.Equal(t, dealerID, *delivery.DealerID)
	})

	t.Run("cancellation restores stock and reverses customer debt", func(t *testing.T) {
		f := newFixture(t)
		p := f.seedProduct("500", 50)
		c := f.seedCustomer("0")
		created := createDebtSale(t, f, p, c)

		require.EqualValues(t, 48, f.store.Products[p.ID].Stock)
		require.True(t, f.store.Customers[c.ID].Debt.Equal(types.MustMoney("1000")))

		updated, err := f.svc.Transition(ctx, sale.TransitionInput{
			TenantID: f.tenantID,
			SaleID:   created.ID,
			To:       sale.StatusCancelled,
		})
		require.NoError(t, err)

		assert.Equal(t, sale.StatusCancelled, updated.Status)
		assert.EqualValues(t, 50, f.store.Products[p.ID].Stock)
		assert.True(t, f.store.Customers[c.ID].Debt.IsZero())
	})

	t.Run("debt reversal floors at zero", func(t *testing.T) {
		f := newFixture(t)
		p := f.seedProduct("500", 50)
		c := f.seedCustomer("0")
		created := createDebtSale(t, f, p, c)

		// Part of the debt was already paid off.
		f.store.Customers[c.ID].Debt = types.MustMoney("400")

		_, err := f.svc.Transition(ctx, sale.TransitionInput{
			TenantID: f.tenantID,
			SaleID:   created.ID,
			To:       sale.StatusCancelled,
		})
		require.NoError(t, err)

		assert.True(t, f.store.Customers[c.ID].Debt.IsZero())
	})

	t.Run("invalid transitions", func(t *testing.T) {
		cases := []struct {
			name string
			path []sale.Status
			to   sale.Status
		}{
			{"pending to delivering", nil, sale.StatusDelivering},
			{"pending to shipped", nil, sale.StatusShipped},
			{"pending to delivered", nil, sale.StatusDelivered},
			{"shipped to cancelled", []sale.Status{sale.StatusCompleted, sale.StatusDelivering, sale.StatusShipped}, sale.StatusCancelled},
			{"delivered is terminal", []sale.Status{sale.StatusCompleted, sale.StatusDelivering, sale.StatusShipped, sale.StatusDelivered}, sale.StatusCompleted},
			{"cancelled is terminal", []sale.Status{sale.StatusCancelled}, sale.StatusCompleted},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				f := newFixture(t)
				p := f.seedProduct("500", 50)
				c := f.seedCustomer("0")
				created := createDebtSale(t, f, p, c)

				for _, step := range tc.path {
					_, err := f.svc.Transition(ctx, sale.TransitionInput{
						TenantID: f.tenantID, SaleID: created.ID, To: step,
					})
					require.NoError(t, err)
				}

				_, err := f.svc.Transition(ctx, sale.TransitionInput{
					TenantID: f.tenantID, SaleID: created.ID, To: tc.to,
				})
				require.Error(t, err)
				assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTransition))
			})
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Transition(ctx, sale.TransitionInput{
			TenantID: f.tenantID,
			SaleID:   id.New(),
			To:       "archived",
		})
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	})

	t.Run("unknown sale", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Transition(ctx, sale.TransitionInput{
			TenantID: f.tenantID,
			SaleID:   id.New(),
			To:       sale.StatusCompleted,
		})
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("cancellation failure rolls back the stock restore", func(t *testing.T) {
		f := newFixture(t)
		p := f.seedProduct("500", 50)
		c := f.seedCustomer("0")
		created := createDebtSale(t, f, p, c)

		f.store.FailAfterMutations = 1

		_, err := f.svc.Transition(ctx, sale.TransitionInput{
			TenantID: f.tenantID,
			SaleID:   created.ID,
			To:       sale.StatusCancelled,
		})
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeDatabase))

		assert.EqualValues(t, 48, f.store.Products[p.ID].Stock)
		assert.True(t, f.store.Customers[c.ID].Debt.Equal(types.MustMoney("1000")))
		assert.Equal(t, sale.StatusPending, f.store.Sales[created.ID].Status)
	})
}

func TestCanTransition(t *testing.T) {
	all := []sale.Status{
		sale.StatusPending,
		sale.StatusCompleted,
		sale.StatusDelivering,
		sale.StatusShipped,
		sale.StatusDelivered,
		sale.StatusCancelled,
	}

	allowed := map[sale.Status][]sale.Status{
		sale.StatusPending:    {sale.StatusCompleted, sale.StatusCancelled},
		sale.StatusCompleted:  {sale.StatusDelivering, sale.StatusCancelled},
		sale.StatusDelivering: {sale.StatusShipped, sale.StatusCancelled},
		sale.StatusShipped:    {sale.StatusDelivered},
		sale.StatusDelivered:  {},
		sale.StatusCancelled:  {},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, sale.CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestService_GetByID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedProduct("500", 50)

	created, err := f.svc.Create(ctx, sale.CreateInput{
		TenantID:    f.tenantID,
		Items:       []sale.CreateItem{{ProductID: p.ID, Quantity: 2}},
		PaidAmount:  types.MustMoney("1000"),
		PaymentType: sale.PaymentCash,
		Source:      sale.SourcePOS,
	})
	require.NoError(t, err)

	found, err := f.svc.GetByID(ctx, f.tenantID, created.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, p.ID, found.Items[0].ProductID)

	_, err = f.svc.GetByID(ctx, id.New(), created.ID)
	assert.True(t, apperror.IsNotFound(err))
}
