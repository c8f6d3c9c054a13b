package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savdo/internal/core/apperror"
	"savdo/internal/core/id"
	"savdo/internal/core/types"
	"savdo/internal/domain/ledger/consignment"
)

func TestLoadRequest_ToInput(t *testing.T) {
	tenantID := id.New()
	dealerID := id.New()
	productID := id.New()

	req := LoadRequest{
		DealerID: dealerID.String(),
		Items: []LoadItemRequest{
			{ProductID: productID.String(), Quantity: 10},
		},
		Policy:     "partial",
		PaidAmount: types.MustMoney("6000"),
		Method:     "cash",
	}

	in, err := req.ToInput(tenantID)
	require.NoError(t, err)

	assert.Equal(t, tenantID, in.TenantID)
	assert.Equal(t, dealerID, in.DealerID)
	require.Len(t, in.Items, 1)
	assert.Equal(t, productID, in.Items[0].ProductID)
	assert.Equal(t, int64(10), in.Items[0].Quantity)
	assert.Equal(t, consignment.PolicyPartial, in.Policy)
	assert.True(t, in.PaidAmount.Equal(types.MustMoney("6000")))
}

func TestLoadRequest_ToInput_RejectsBadIDs(t *testing.T) {
	tenantID := id.New()

	_, err := LoadRequest{DealerID: "nope"}.ToInput(tenantID)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = LoadRequest{
		DealerID: id.New().String(),
		Items:    []LoadItemRequest{{ProductID: "nope", Quantity: 1}},
	}.ToInput(tenantID)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestTransactionListQuery_ToFilter(t *testing.T) {
	dealerID := id.New()

	query := TransactionListQuery{
		DealerID: dealerID.String(),
		Type:     "sell",
		Offset:   40,
	}

	filter, err := query.ToFilter()
	require.NoError(t, err)

	require.NotNil(t, filter.DealerID)
	assert.Equal(t, dealerID, *filter.DealerID)
	require.NotNil(t, filter.Type)
	assert.Equal(t, consignment.TransactionSell, *filter.Type)
	assert.Nil(t, filter.ProductID)
	assert.Equal(t, 100, filter.Limit) // default
	assert.Equal(t, 40, filter.Offset)
}

func TestParseOptionalID(t *testing.T) {
	parsed, err := ParseOptionalID("dealerCustomerId", nil)
	require.NoError(t, err)
	assert.Nil(t, parsed)

	empty := ""
	parsed, err = ParseOptionalID("dealerCustomerId", &empty)
	require.NoError(t, err)
	assert.Nil(t, parsed)

	valid := id.New().String()
	parsed, err = ParseOptionalID("dealerCustomerId", &valid)
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.Equal(t, valid, parsed.String())

	bad := "nope"
	_, err = ParseOptionalID("dealerCustomerId", &bad)
	assert.Error(t, err)
}
