// Package money holds the numeric normalization shared by every write path:
// income amounts, allocation percentages, and budget percentages are all
// cleaned through Parse before any validation runs.
package money

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Parse extracts a non-negative decimal from free-form user input.
// Everything except digits and the decimal point is stripped before
// parsing ("$1,200.00" parses as 1200). Unparseable input and negative
// results both come back as zero.
func Parse(raw string) decimal.Decimal {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Raw is a JSON field that accepts either a string or a number, preserving
// the textual form for Parse
type Raw string

// UnmarshalJSON implements json.Unmarshaler
func (r *Raw) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = Raw(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*r = Raw(n.String())
		return nil
	}
	return fmt.Errorf("money: value must be a string or number, got %s", string(data))
}

// Decimal parses the raw value with Parse
func (r Raw) Decimal() decimal.Decimal {
	return Parse(string(r))
}
