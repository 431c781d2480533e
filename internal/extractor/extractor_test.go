package extractor

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBody = "TxId: 12345... you have received 5,000 RWF from Jane Doe (0788...). Fee was 100 RWF. Your new balance: 10,000 RWF"

func TestExtractSample(t *testing.T) {
	e := New(time.UTC)
	tx := e.Extract(Message{Body: sampleBody, Address: "M-Money", Date: "1715351458724", ContactName: "(Unknown)"})

	assert.Equal(t, "12345", tx.ExternalID)
	require.True(t, tx.Amount.Valid)
	assert.True(t, tx.Amount.Decimal.Equal(decimal.NewFromInt(5000)))
	assert.True(t, tx.Fee.Equal(decimal.NewFromInt(100)))
	require.True(t, tx.BalanceAfter.Valid)
	assert.True(t, tx.BalanceAfter.Decimal.Equal(decimal.NewFromInt(10000)))
	require.NotNil(t, tx.Counterparty)
	assert.Equal(t, "Jane Doe", *tx.Counterparty)
	assert.Equal(t, "M-Money", tx.Provider)
	assert.Equal(t, "(Unknown)", tx.ContactName)
	require.NotNil(t, tx.ISODate)
	assert.Equal(t, "2024-05-10T14:30:58Z", *tx.ISODate)
}

func TestExtractTransactionID(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"txid label", "TxId: 73214484437. Your payment of 1,000 RWF to Jane Smith 12845 has been completed.", "73214484437"},
		{"financial label", "You have received 2000 RWF from Jane Smith (*********013). Financial Transaction Id: 76662021700.", "76662021700"},
		{"lowercase label", "txid: ab-12CD was processed", "ab-12CD"},
		{"first label wins", "TxId: FIRST then Financial Transaction Id: SECOND", "FIRST"},
		{"no surrounding amounts", "TxId:ZX9", "ZX9"},
		{"absent", "Yello! Umaze kugura 2000 RWF", ""},
	}

	e := New(time.UTC)
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, e.Extract(Message{Body: c.body}).ExternalID)
		})
	}
}

func TestExtractAmounts(t *testing.T) {
	e := New(time.UTC)

	t.Run("thousands separators", func(t *testing.T) {
		with := e.Extract(Message{Body: "received 1,200,000 RWF"})
		without := e.Extract(Message{Body: "received 1200000 RWF"})
		require.True(t, with.Amount.Valid)
		require.True(t, without.Amount.Valid)
		assert.True(t, with.Amount.Decimal.Equal(without.Amount.Decimal))
		assert.True(t, with.Amount.Decimal.Equal(decimal.NewFromInt(1200000)))
	})

	t.Run("fraction", func(t *testing.T) {
		tx := e.Extract(Message{Body: "paid 2,500.50 RWF"})
		assert.Equal(t, "2500.5", tx.Amount.Decimal.String())
	})

	t.Run("absent fields keep distinct defaults", func(t *testing.T) {
		tx := e.Extract(Message{Body: "Hello, this is not a payment."})
		assert.False(t, tx.Amount.Valid)
		assert.False(t, tx.BalanceAfter.Valid)
		assert.True(t, tx.Fee.IsZero())
		assert.Nil(t, tx.Counterparty)
	})

	t.Run("zero amount is present", func(t *testing.T) {
		tx := e.Extract(Message{Body: "You sent 0 RWF"})
		require.True(t, tx.Amount.Valid)
		assert.True(t, tx.Amount.Decimal.IsZero())
	})

	t.Run("fee with colon", func(t *testing.T) {
		tx := e.Extract(Message{Body: "*165*S*10000 RWF transferred to Samuel Carter (250791666666). Fee was: 100 RWF. New balance: 28300 RWF."})
		assert.True(t, tx.Fee.Equal(decimal.NewFromInt(100)))
		assert.True(t, tx.BalanceAfter.Decimal.Equal(decimal.NewFromInt(28300)))
		require.NotNil(t, tx.Counterparty)
		assert.Equal(t, "Samuel Carter", *tx.Counterparty)
	})

	t.Run("balance without space", func(t *testing.T) {
		tx := e.Extract(Message{Body: "Your new balance:2000 RWF."})
		assert.True(t, tx.BalanceAfter.Decimal.Equal(decimal.NewFromInt(2000)))
	})
}

func TestParseAmount(t *testing.T) {
	d, ok := parseAmount("10,000")
	require.True(t, ok)
	assert.True(t, d.Equal(decimal.NewFromInt(10000)))

	_, ok = parseAmount("1.2.3")
	assert.False(t, ok)
}

func TestNormalizeTimestamp(t *testing.T) {
	e := New(time.FixedZone("CAT", 2*60*60))

	iso, err := e.NormalizeTimestamp("1715351458724")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-10T16:30:58+02:00", iso)

	_, err = e.NormalizeTimestamp("")
	assert.ErrorIs(t, err, ErrNoTimestamp)

	_, err = e.NormalizeTimestamp("yesterday")
	assert.ErrorIs(t, err, ErrBadTimestamp)

	tx := e.Extract(Message{Body: sampleBody, Date: "yesterday"})
	assert.Nil(t, tx.ISODate)
	assert.Equal(t, "yesterday", tx.RawDate)
	assert.Equal(t, "12345", tx.ExternalID)
}

func TestExtractAllFallbackIDs(t *testing.T) {
	e := New(time.UTC)
	txs := e.ExtractAll([]Message{
		{Body: "no id here"},
		{Body: sampleBody},
		{Body: "still no id 300 RWF"},
		{Body: "TxId: LOCAL-4 collides with the sequence"},
		{Body: "another message without id"},
	})

	require.Len(t, txs, 5)
	assert.Equal(t, "LOCAL-1", txs[0].ExternalID)
	assert.Equal(t, "12345", txs[1].ExternalID)
	assert.Equal(t, "LOCAL-3", txs[2].ExternalID)
	assert.Equal(t, "LOCAL-4", txs[3].ExternalID)
	assert.Equal(t, "LOCAL-5", txs[4].ExternalID)

	seen := map[string]bool{}
	for _, tx := range txs {
		if strings.HasPrefix(tx.ExternalID, LocalIDPrefix) {
			assert.False(t, seen[tx.ExternalID], "duplicate fallback id %s", tx.ExternalID)
		}
		seen[tx.ExternalID] = true
	}
}

func TestExtractAllRenumbersTakenFallback(t *testing.T) {
	e := New(time.UTC)
	txs := e.ExtractAll([]Message{
		{Body: "TxId: LOCAL-2"},
		{Body: "no id"},
	})
	require.Len(t, txs, 2)
	assert.Equal(t, "LOCAL-2", txs[0].ExternalID)
	assert.Equal(t, "LOCAL-2-2", txs[1].ExternalID)
}

func TestExtractAllResetsPerBatch(t *testing.T) {
	e := New(time.UTC)
	first := e.ExtractAll([]Message{{Body: "a"}})
	second := e.ExtractAll([]Message{{Body: "b"}})
	assert.Equal(t, "LOCAL-1", first[0].ExternalID)
	assert.Equal(t, "LOCAL-1", second[0].ExternalID)
}
