package extractor

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// number matches digits with optional thousands separators and fraction.
const number = `(\d[\d,]*(?:\.\d+)?)`

var (
	txIDPattern         = regexp.MustCompile(`(?i)(?:TxId:|Financial Transaction Id:)\s*([A-Za-z0-9-]+)`)
	amountPattern       = regexp.MustCompile(`(?i)` + number + `\s*RWF`)
	feePattern          = regexp.MustCompile(`(?i)Fee was:?\s*` + number + `\s*RWF`)
	balancePattern      = regexp.MustCompile(`(?i)new balance[:\s]*` + number + `\s*RWF`)
	counterpartyPattern = regexp.MustCompile(`(?i)\b(?:to|from)\s+([A-Za-z][A-Za-z\s]*?)\s*(?:\(|\d)`)
)

// textRule finds a string field in a message body.
type textRule func(body string) (string, bool)

// amountRule finds a money field in a message body.
type amountRule func(body string) (decimal.Decimal, bool)

func matchText(re *regexp.Regexp) textRule {
	return func(body string) (string, bool) {
		m := re.FindStringSubmatch(body)
		if m == nil {
			return "", false
		}
		v := strings.TrimSpace(m[1])
		return v, v != ""
	}
}

func matchAmount(re *regexp.Regexp) amountRule {
	return func(body string) (decimal.Decimal, bool) {
		m := re.FindStringSubmatch(body)
		if m == nil {
			return decimal.Decimal{}, false
		}
		return parseAmount(m[1])
	}
}

// parseAmount reads "1,200,000.50" style numbers. A value that does not parse
// is reported as absent.
func parseAmount(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

var (
	findTxID         = matchText(txIDPattern)
	findCounterparty = matchText(counterpartyPattern)
	findAmount       = matchAmount(amountPattern)
	findFee          = matchAmount(feePattern)
	findBalance      = matchAmount(balancePattern)
)
