package commission

import (
	"strings"

	"github.com/shopspring/decimal"
)

type RuleType string

const (
	RuleFixed   RuleType = "fixed"
	RulePercent RuleType = "percent"
)

// Rule is a tenant-configured affiliate commission.
type Rule struct {
	Type  RuleType
	Value decimal.Decimal
}

// ParseRuleType reads the stored config value. Only "fixed" is a fixed
// amount; anything else is a percentage.
func ParseRuleType(s string) RuleType {
	if strings.EqualFold(strings.TrimSpace(s), string(RuleFixed)) {
		return RuleFixed
	}
	return RulePercent
}

var hundred = decimal.NewFromInt(100)

// Calculate returns the affiliate's cut of price, clamped to [0, price]
// and rounded to cents.
func Calculate(price decimal.Decimal, rule Rule) decimal.Decimal {
	if price.IsNegative() {
		price = decimal.Zero
	}

	var amount decimal.Decimal
	switch rule.Type {
	case RulePercent:
		amount = price.Mul(rule.Value).Div(hundred)
	default:
		amount = rule.Value
	}

	if amount.IsNegative() {
		amount = decimal.Zero
	}
	if amount.GreaterThan(price) {
		amount = price
	}
	return amount.Round(2)
}
