// Package extractor turns mobile-money SMS notifications into transaction
// records. Every field is recognised by its own rule, so a message that only
// mentions an amount still yields a record with the other fields defaulted.
package extractor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/punchamoorthee/momoledger/internal/domain"
	"github.com/shopspring/decimal"
)

// LocalIDPrefix marks identifiers synthesized for messages without a TxId.
const LocalIDPrefix = "LOCAL-"

var (
	ErrNoTimestamp  = errors.New("timestamp missing")
	ErrBadTimestamp = errors.New("timestamp is not a millisecond epoch")
)

// Message is one SMS as exported by the phone backup tool.
type Message struct {
	Body         string `xml:"body,attr"`
	Address      string `xml:"address,attr"`
	Date         string `xml:"date,attr"`
	DateSent     string `xml:"date_sent,attr"`
	ReadableDate string `xml:"readable_date,attr"`
	ContactName  string `xml:"contact_name,attr"`
}

type Extractor struct {
	loc *time.Location
}

// New returns an Extractor that renders timestamps in loc. A nil loc means
// time.Local.
func New(loc *time.Location) *Extractor {
	if loc == nil {
		loc = time.Local
	}
	return &Extractor{loc: loc}
}

// Extract builds a record from a single message. ExternalID is left empty
// when the body carries no transaction id; ExtractAll fills it in.
func (e *Extractor) Extract(m Message) domain.Transaction {
	tx := domain.Transaction{
		Body:         strings.TrimSpace(m.Body),
		Provider:     m.Address,
		RawDate:      m.Date,
		DateSent:     m.DateSent,
		ReadableDate: m.ReadableDate,
		ContactName:  m.ContactName,
	}

	if id, ok := findTxID(m.Body); ok {
		tx.ExternalID = id
	}
	if v, ok := findAmount(m.Body); ok {
		tx.Amount = decimal.NewNullDecimal(v)
	}
	if v, ok := findFee(m.Body); ok {
		tx.Fee = v
	}
	if v, ok := findBalance(m.Body); ok {
		tx.BalanceAfter = decimal.NewNullDecimal(v)
	}
	if name, ok := findCounterparty(m.Body); ok {
		tx.Counterparty = &name
	}
	if iso, err := e.NormalizeTimestamp(m.Date); err == nil {
		tx.ISODate = &iso
	}
	return tx
}

// ExtractAll extracts every message in order and assigns LOCAL-<n> ids, n
// being the 1-based position in the batch, to records without one.
func (e *Extractor) ExtractAll(msgs []Message) []domain.Transaction {
	txs := make([]domain.Transaction, 0, len(msgs))
	seen := make(map[string]struct{}, len(msgs))
	for _, m := range msgs {
		tx := e.Extract(m)
		if tx.ExternalID == "" {
			tx.ExternalID = fallbackID(len(txs)+1, seen)
		}
		seen[tx.ExternalID] = struct{}{}
		txs = append(txs, tx)
	}
	return txs
}

func fallbackID(n int, seen map[string]struct{}) string {
	id := fmt.Sprintf("%s%d", LocalIDPrefix, n)
	for k := 2; ; k++ {
		if _, taken := seen[id]; !taken {
			return id
		}
		id = fmt.Sprintf("%s%d-%d", LocalIDPrefix, n, k)
	}
}

// NormalizeTimestamp converts a millisecond epoch string to RFC 3339.
func (e *Extractor) NormalizeTimestamp(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrNoTimestamp
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrBadTimestamp, raw)
	}
	return time.UnixMilli(ms).In(e.loc).Format(time.RFC3339), nil
}
