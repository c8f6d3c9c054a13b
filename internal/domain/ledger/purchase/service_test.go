package purchase_test

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
	"savdo/internal/domain/ledger/purchase"
	"savdo/internal/domain/ledger/stock"
)

func newService(store *ledgertest.Store) *purchase.Service {
	return purchase.NewService(
		store.PurchaseRepo(),
		stock.NewService(store.ProductRepo()),
		store.ProductRepo(),
		ledgertest.NewTxManager(store),
	)
}

func seedProduct(store *ledgertest.Store, tenantID id.ID, quantity int64, costPrice string) *catalog.Product {
	p := &catalog.Product{
		TenantID:  tenantID,
		ID:        id.New(),
		Name:      "Product",
		Stock:     quantity,
		CostPrice: types.MustMoney(costPrice),
		Price:     types.MustMoney("1000"),
	}
	store.Products[p.ID] = p
	return p
}

func TestService_Receive(t *testing.T) {
	ctx := context.Background()
	tenantID := id.New()

	t.Run("increments stock and overwrites the cost basis", func(t *testing.T) {
		store := ledgertest.NewStore()
		p1 := seedProduct(store, tenantID, 10, "400")
		p2 := seedProduct(store, tenantID, 0, "900")
		svc := newService(store)

		received, err := svc.Receive(ctx, purchase.ReceiveInput{
			TenantID:     tenantID,
			SupplierName: "Acme Supply",
			Items: []purchase.ReceiveItem{
				{ProductID: p1.ID, Quantity: 20, UnitCost: types.MustMoney("450")},
				{ProductID: p2.ID, Quantity: 5, UnitCost: types.MustMoney("850")},
			},
		})
		require.NoError(t, err)

		assert.EqualValues(t, 30, store.Products[p1.ID].Stock)
		assert.EqualValues(t, 5, store.Products[p2.ID].Stock)
		assert.True(t, store.Products[p1.ID].CostPrice.Equal(types.MustMoney("450")))
		assert.True(t, store.Products[p2.ID].CostPrice.Equal(types.MustMoney("850")))

		assert.True(t, received.TotalAmount.Equal(types.MustMoney("13250")))
		require.Len(t, received.Items, 2)

		stored := store.Purchases[received.ID]
		require.NotNil(t, stored)
		assert.Equal(t, "Acme Supply", stored.SupplierName)
		assert.Len(t, store.PurchaseItems[received.ID], 2)
	})

	t.Run("later receipt wins the cost basis", func(t *testing.T) {
		store := ledgertest.NewStore()
		p := seedProduct(store, tenantID, 0, "100")
		svc := newService(store)

		for _, cost := range []string{"120", "110"} {
			_, err := svc.Receive(ctx, purchase.ReceiveInput{
				TenantID: tenantID,
				Items:    []purchase.ReceiveItem{{ProductID: p.ID, Quantity: 1, UnitCost: types.MustMoney(cost)}},
			})
			require.NoError(t, err)
		}

		assert.True(t, store.Products[p.ID].CostPrice.Equal(types.MustMoney("110")))
	})

	t.Run("unknown product fails the whole receipt", func(t *testing.T) {
		store := ledgertest.NewStore()
		p := seedProduct(store, tenantID, 10, "400")
		svc := newService(store)

		_, err := svc.Receive(ctx, purchase.ReceiveInput{
			TenantID: tenantID,
			Items: []purchase.ReceiveItem{
				{ProductID: p.ID, Quantity: 5, UnitCost: types.MustMoney("400")},
				{ProductID: id.New(), Quantity: 5, UnitCost: types.MustMoney("400")},
			},
		})
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))

		assert.EqualValues(t, 10, store.Products[p.ID].Stock)
		assert.Empty(t, store.Purchases)
	})

	t.Run("input validation", func(t *testing.T) {
		store := ledgertest.NewStore()
		p := seedProduct(store, tenantID, 10, "400")
		svc := newService(store)

		cases := []struct {
			name string
			in   purchase.ReceiveInput
		}{
			{"nil tenant", purchase.ReceiveInput{
				Items: []purchase.ReceiveItem{{ProductID: p.ID, Quantity: 1, UnitCost: types.MustMoney("1")}},
			}},
			{"no items", purchase.ReceiveInput{TenantID: tenantID}},
			{"zero quantity", purchase.ReceiveInput{
				TenantID: tenantID,
				Items:    []purchase.ReceiveItem{{ProductID: p.ID, Quantity: 0, UnitCost: types.MustMoney("1")}},
			}},
			{"negative unit cost", purchase.ReceiveInput{
				TenantID: tenantID,
				Items:    []purchase.ReceiveItem{{ProductID: p.ID, Quantity: 1, UnitCost: types.MustMoney("-1")}},
			}},
			{"nil product", purchase.ReceiveInput{
				TenantID: tenantID,
				Items:    []purchase.ReceiveItem{{Quantity: 1, UnitCost: types.MustMoney("1")}},
			}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.Receive(ctx, tc.in)
				require.Error(t, err)
				assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
			})
		}
	})

	t.Run("mid-operation failure rolls back stock and cost", func(t *testing.T) {
		store := ledgertest.NewStore()
		p := seedProduct(store, tenantID, 10, "400")
		svc := newService(store)

		store.FailAfterMutations = 2

		_, err := svc.Receive(ctx, purchase.ReceiveInput{
			TenantID: tenantID,
			Items:    []purchase.ReceiveItem{{ProductID: p.ID, Quantity: 5, UnitCost: types.MustMoney("500")}},
		})
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeDatabase))

		assert.EqualValues(t, 10, store.Products[p.ID].Stock)
		assert.True(t, store.Products[p.ID].CostPrice.Equal(types.MustMoney("400")))
		assert.Empty(t, store.Purchases)
	})
}

func TestService_GetByIDAndList(t *testing.T) {
	ctx := context.Background()
	tenantID := id.New()
	store := ledgertest.NewStore()
	p := seedProduct(store, tenantID, 10, "400")
	svc := newService(store)

	received, err := svc.Receive(ctx, purchase.ReceiveInput{
		TenantID:     tenantID,
		SupplierName: "Acme Supply",
		Items:        []purchase.ReceiveItem{{ProductID: p.ID, Quantity: 3, UnitCost: types.MustMoney("400")}},
	})
	require.NoError(t, err)

	found, err := svc.GetByID(ctx, tenantID, received.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.EqualValues(t, 3, found.Items[0].Quantity)

	list, err := svc.List(ctx, tenantID, purchase.PurchaseFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.GetByID(ctx, id.New(), received.ID)
	assert.True(t, apperror.IsNotFound(err))
}
