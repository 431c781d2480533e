package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	ErrMalformed = errors.New("malformed transaction payload")
	ErrInvalid   = errors.New("invalid transaction")
)

var validate = validator.New()

func init() {
	// Amounts are written as JSON numbers, matching files produced by the SMS export tooling.
	decimal.MarshalJSONWithoutQuotes = true

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Transaction is one mobile-money movement, either extracted from an SMS or
// posted by an API client. ExternalID is unique across the store.
type Transaction struct {
	ExternalID   string              `json:"txn_external_id" validate:"required"`
	Body         string              `json:"body"`
	Provider     string              `json:"provider"`
	RawDate      string              `json:"raw_date"`
	DateSent     string              `json:"date_sent"`
	ReadableDate string              `json:"readable_date"`
	ContactName  string              `json:"contact_name"`
	ISODate      *string             `json:"iso_date"`
	Amount       decimal.NullDecimal `json:"amount"`
	Fee          decimal.Decimal     `json:"fee"`
	BalanceAfter decimal.NullDecimal `json:"balance_after"`
	Counterparty *string             `json:"counterparty"`
}

// Validate checks field presence only.
func (t Transaction) Validate() error {
	if err := validate.Struct(t); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s is %s", ErrInvalid, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// DecodeTransaction parses a JSON object into a validated Transaction.
func DecodeTransaction(data []byte) (Transaction, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return Transaction{}, fmt.Errorf("%w: expected a JSON object", ErrMalformed)
	}

	var tx Transaction
	if err := json.Unmarshal(data, &tx); err != nil {
		return Transaction{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := tx.Validate(); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

// Merge overlays the keys present in patch onto t and returns the result.
// Keys absent from patch keep their current value; an explicit null clears
// an optional field.
func (t Transaction) Merge(patch []byte) (Transaction, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil || fields == nil {
		return t, fmt.Errorf("%w: expected a JSON object", ErrMalformed)
	}

	current, err := json.Marshal(t)
	if err != nil {
		return t, fmt.Errorf("encode current record: %w", err)
	}
	merged := make(map[string]json.RawMessage)
	if err := json.Unmarshal(current, &merged); err != nil {
		return t, fmt.Errorf("decode current record: %w", err)
	}
	for k, v := range fields {
		merged[k] = v
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return t, fmt.Errorf("encode merged record: %w", err)
	}
	var out Transaction
	if err := json.Unmarshal(raw, &out); err != nil {
		return t, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := out.Validate(); err != nil {
		return t, err
	}
	return out, nil
}
