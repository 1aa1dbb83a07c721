package pagarme

import (
	"strings"

	"vendas-platform/services/sale"
)

// NormalizeStatus maps a Pagar.me charge/order status to the canonical sale
// status, case-insensitively. Anything other than paid or canceled means
// the sale is still awaiting payment.
func NormalizeStatus(status string) sale.Status {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "paid":
		return sale.StatusPaid
	case "canceled", "canceled_by_merchant":
		return sale.StatusCancelled
	default:
		return sale.StatusAwaitingPayment
	}
}
