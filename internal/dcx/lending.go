package dcx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// smallLendThreshold is the balance below which lending is skipped unless
// explicitly requested; dust earns nothing and clutters the funding book.
var smallLendThreshold = decimal.NewFromFloat(0.001)

// LendRequest is the payload for a funding lend order.
type LendRequest struct {
	Currency string
	Duration int
	Amount   decimal.Decimal
}

// Lend places a single funding lend order.
func (c *Client) Lend(ctx context.Context, req LendRequest) (json.RawMessage, error) {
	body := map[string]any{
		"currency_short_name": req.Currency,
		"duration":            req.Duration,
		"amount":              json.Number(req.Amount.String()),
	}
	return c.Post(ctx, "/exchange/v1/funding/lend", body)
}

// LendOrders fetches funding orders, optionally filtered to a status
// ("open", "closed", ...). Records keep their raw shape: the command just
// pretty-prints them.
func (c *Client) LendOrders(ctx context.Context, status string) ([]map[string]any, error) {
	raw, err := c.Post(ctx, "/exchange/v1/funding/fetch_orders", nil)
	if err != nil {
		return nil, err
	}

	var orders []map[string]any
	if err := json.Unmarshal(raw, &orders); err != nil {
		return nil, fmt.Errorf("unmarshal funding orders: %w", err)
	}

	if status == "" {
		return orders, nil
	}
	filtered := orders[:0]
	for _, o := range orders {
		if s, _ := o["status"].(string); s == status {
			filtered = append(filtered, o)
		}
	}
	return filtered, nil
}

// LendDecision says whether a balance should be lent, and if not, why.
type LendDecision struct {
	Lend   bool
	Reason string
}

// DecideLend applies the lend filter rules to one balance record:
// INR is never lent, zero balances are skipped, dust is skipped unless
// ignoreSmall is off, and a non-empty currency allowlist restricts the rest.
func DecideLend(b Balance, currencies []string, ignoreSmall bool) LendDecision {
	if b.Currency == quoteCurrency {
		return LendDecision{Reason: "quote currency is not lendable"}
	}
	if b.Balance.IsZero() {
		return LendDecision{Reason: "zero balance"}
	}
	if ignoreSmall && b.Balance.LessThan(smallLendThreshold) {
		return LendDecision{Reason: fmt.Sprintf("balance %s is very small", b.Balance)}
	}
	if len(currencies) > 0 && !containsString(currencies, b.Currency) {
		return LendDecision{Reason: "not requested"}
	}
	return LendDecision{Lend: true}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
