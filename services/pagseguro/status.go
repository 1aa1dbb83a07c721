package pagseguro

import (
	"strconv"
	"strings"

	"vendas-platform/services/sale"
)

// PagSeguro transaction status codes with a canonical meaning.
const (
	codePaid      = 3
	codeCancelled = 7
)

// NormalizeStatus maps a PagSeguro status to the canonical sale status.
// 3 is paid and 7 is cancelled; any other parseable code is passed through.
// Missing or unparseable values stay awaiting payment. The code is read
// from the leading integer of the value, so "3", " 3 " and 3.0 agree.
func NormalizeStatus(s Status) sale.Status {
	if !s.Valid {
		return sale.StatusAwaitingPayment
	}

	code, ok := leadingInt(s.Raw)
	if !ok {
		return sale.StatusAwaitingPayment
	}

	switch code {
	case codePaid:
		return sale.StatusPaid
	case codeCancelled:
		return sale.StatusCancelled
	default:
		return sale.Status(code)
	}
}

func leadingInt(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
