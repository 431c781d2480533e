package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTransaction(t *testing.T) {
	t.Run("full payload", func(t *testing.T) {
		tx, err := DecodeTransaction([]byte(`{"txn_external_id":"TX1","amount":500,"fee":"10","counterparty":"Jane"}`))
		require.NoError(t, err)
		assert.Equal(t, "TX1", tx.ExternalID)
		assert.True(t, tx.Amount.Valid)
		assert.True(t, tx.Amount.Decimal.Equal(decimal.NewFromInt(500)))
		assert.True(t, tx.Fee.Equal(decimal.NewFromInt(10)))
		require.NotNil(t, tx.Counterparty)
		assert.Equal(t, "Jane", *tx.Counterparty)
		assert.False(t, tx.BalanceAfter.Valid)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := DecodeTransaction([]byte(`{"amount":500}`))
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("not an object", func(t *testing.T) {
		for _, in := range []string{`[1,2]`, `null`, `"TX1"`, `{"txn_external_id":`} {
			_, err := DecodeTransaction([]byte(in))
			assert.ErrorIs(t, err, ErrMalformed, in)
		}
	})

	t.Run("wrong field type", func(t *testing.T) {
		_, err := DecodeTransaction([]byte(`{"txn_external_id":"TX1","amount":"lots"}`))
		assert.ErrorIs(t, err, ErrMalformed)
	})
}

func TestMerge(t *testing.T) {
	base := Transaction{
		ExternalID: "TX1",
		Amount:     decimal.NewNullDecimal(decimal.NewFromInt(500)),
	}

	t.Run("only supplied fields change", func(t *testing.T) {
		merged, err := base.Merge([]byte(`{"fee":10}`))
		require.NoError(t, err)
		assert.Equal(t, "TX1", merged.ExternalID)
		assert.True(t, merged.Amount.Decimal.Equal(decimal.NewFromInt(500)))
		assert.True(t, merged.Fee.Equal(decimal.NewFromInt(10)))
	})

	t.Run("explicit null clears optional field", func(t *testing.T) {
		merged, err := base.Merge([]byte(`{"amount":null}`))
		require.NoError(t, err)
		assert.False(t, merged.Amount.Valid)
	})

	t.Run("clearing id is rejected", func(t *testing.T) {
		_, err := base.Merge([]byte(`{"txn_external_id":""}`))
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("malformed patch", func(t *testing.T) {
		_, err := base.Merge([]byte(`not json`))
		assert.ErrorIs(t, err, ErrMalformed)
	})
}

func TestTransactionJSONShape(t *testing.T) {
	tx := Transaction{ExternalID: "TX1", Fee: decimal.NewFromInt(100)}
	raw, err := json.Marshal(tx)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, float64(100), fields["fee"])
	assert.Nil(t, fields["amount"])
	assert.Nil(t, fields["balance_after"])
	assert.Contains(t, fields, "iso_date")
}

func TestValidateNamesJSONField(t *testing.T) {
	err := Transaction{}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "txn_external_id is required")
}
