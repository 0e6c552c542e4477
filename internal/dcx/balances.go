package dcx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Balance is one account balance record. Balance is the tradeable
// (unlocked) component; LockedBalance is tied up in open orders and must
// never be counted as spendable.
type Balance struct {
	Currency      string          `json:"currency"`
	Balance       decimal.Decimal `json:"balance"`
	LockedBalance decimal.Decimal `json:"locked_balance"`
}

func (b Balance) IsZero() bool {
	return b.Balance.IsZero() && b.LockedBalance.IsZero()
}

// Balances fetches every balance record for the account.
func (c *Client) Balances(ctx context.Context) ([]Balance, error) {
	raw, err := c.Post(ctx, "/exchange/v1/users/balances", nil)
	if err != nil {
		return nil, err
	}

	var balances []Balance
	if err := json.Unmarshal(raw, &balances); err != nil {
		return nil, fmt.Errorf("unmarshal balances: %w", err)
	}
	return balances, nil
}

// AvailableFunds returns the tradeable balance of currency. Locked funds
// back open orders, so only the unlocked component counts. A currency
// missing from the account reads as zero; a failed fetch is an error and
// the caller must abort whatever needed the number.
func (c *Client) AvailableFunds(ctx context.Context, currency string) (decimal.Decimal, error) {
	balances, err := c.Balances(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return availableIn(balances, currency), nil
}

func availableIn(balances []Balance, currency string) decimal.Decimal {
	for _, b := range balances {
		if b.Currency == currency {
			return b.Balance
		}
	}
	return decimal.Zero
}
