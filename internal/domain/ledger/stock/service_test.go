package stock_test

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
	"savdo/internal/domain/ledger/stock"
)

func seedProduct(store *ledgertest.Store, tenantID id.ID, quantity int64) *catalog.Product {
	p := &catalog.Product{
		TenantID: tenantID,
		ID:       id.New(),
		Name:     "Test Product",
		SKU:      "SKU-1",
		Stock:    quantity,
		Price:    types.MustMoney("1000"),
		MinStock: 5,
	}
	store.Products[p.ID] = p
	return p
}

func TestService_Reserve(t *testing.T) {
	ctx := context.Background()
	tenantID := id.New()

	t.Run("decrements every line", func(t *testing.T) {
		store := ledgertest.NewStore()
		p1 := seedProduct(store, tenantID, 10)
		p2 := seedProduct(store, tenantID, 20)
		svc := stock.NewService(store.ProductRepo())

		products, err := svc.Reserve(ctx, tenantID, []stock.Line{
			{ProductID: p1.ID, Quantity: 3},
			{ProductID: p2.ID, Quantity: 7},
		})
		require.NoError(t, err)

		assert.Len(t, products, 2)
		assert.EqualValues(t, 7, store.Products[p1.ID].Stock)
		assert.EqualValues(t, 13, store.Products[p2.ID].Stock)
	})

	t.Run("folds duplicate lines before the sufficiency check", func(t *testing.T) {
		store := ledgertest.NewStore()
		p := seedProduct(store, tenantID, 10)
		svc := stock.NewService(store.ProductRepo())

		_, err := svc.Reserve(ctx, tenantID, []stock.Line{
			{ProductID: p.ID, Quantity: 6},
			{ProductID: p.ID, Quantity: 6},
		})
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))
		assert.EqualValues(t, 10, store.Products[p.ID].Stock)
	})

	t.Run("rejects the whole operation when one line is short", func(t *testing.T) {
		store := ledgertest.NewStore()
		p1 := seedProduct(store, tenantID, 10)
		p2 := seedProduct(store, tenantID, 2)
		svc := stock.NewService(store.ProductRepo())

		_, err := svc.Reserve(ctx, tenantID, []stock.Line{
			{ProductID: p1.ID, Quantity: 3},
			{ProductID: p2.ID, Quantity: 5},
		})
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))

		assert.EqualValues(t, 10, store.Products[p1.ID].Stock)
		assert.EqualValues(t, 2, store.Products[p2.ID].Stock)
	})

	t.Run("unknown product", func(t *testing.T) {
		store := ledgertest.NewStore()
		svc := stock.NewService(store.ProductRepo())

		_, err := svc.Reserve(ctx, tenantID, []stock.Line{
			{ProductID: id.New(), Quantity: 1},
		})
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("product of another tenant is invisible", func(t *testing.T) {
		store := ledgertest.NewStore()
		p := seedProduct(store, id.New(), 10)
		svc := stock.NewService(store.ProductRepo())

		_, err := svc.Reserve(ctx, tenantID, []stock.Line{
			{ProductID: p.ID, Quantity: 1},
		})
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("input validation", func(t *testing.T) {
		store := ledgertest.NewStore()
		p := seedProduct(store, tenantID, 10)
		svc := stock.NewService(store.ProductRepo())

		cases := []struct {
			name  string
			lines []stock.Line
		}{
			{"no lines", nil},
			{"zero quantity", []stock.Line{{ProductID: p.ID, Quantity: 0}}},
			{"negative quantity", []stock.Line{{ProductID: p.ID, Quantity: -1}}},
			{"nil product", []stock.Line{{Quantity: 1}}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.Reserve(ctx, tenantID, tc.lines)
				require.Error(t, err)
				assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
			})
		}
	})
}

func TestService_Restore(t *testing.T) {
	ctx := context.Background()
	tenantID := id.New()

	t.Run("increments every line", func(t *testing.T) {
		store := ledgertest.NewStore()
		p := seedProduct(store, tenantID, 3)
		svc := stock.NewService(store.ProductRepo())

		products, err := svc.Restore(ctx, tenantID, []stock.Line{
			{ProductID: p.ID, Quantity: 4},
		})
		require.NoError(t, err)

		assert.EqualValues(t, 7, store.Products[p.ID].Stock)
		assert.Equal(t, p.ID, products[p.ID].ID)
	})

	t.Run("unknown product", func(t *testing.T) {
		store := ledgertest.NewStore()
		svc := stock.NewService(store.ProductRepo())

		_, err := svc.Restore(ctx, tenantID, []stock.Line{
			{ProductID: id.New(), Quantity: 1},
		})
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestService_Availability(t *testing.T) {
	ctx := context.Background()
	tenantID := id.New()
	store := ledgertest.NewStore()
	p := seedProduct(store, tenantID, 42)
	svc := stock.NewService(store.ProductRepo())

	qty, err := svc.Availability(ctx, tenantID, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 42, qty)

	_, err = svc.Availability(ctx, tenantID, id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_LowStock(t *testing.T) {
	ctx := context.Background()
	tenantID := id.New()
	store := ledgertest.NewStore()
	low := seedProduct(store, tenantID, 2)
	seedProduct(store, tenantID, 50)
	svc := stock.NewService(store.ProductRepo())

	products, err := svc.LowStock(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, low.ID, products[0].ID)
}
