package dcx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// PublicTrade is one entry from the public trade_history feed.
type PublicTrade struct {
	Price    decimal.Decimal `json:"p"`
	Quantity decimal.Decimal `json:"q"`
}

// RecentTrades fetches up to limit recent trades for pair from the public
// host. Used for last-traded-price valuation of balances.
func (c *Client) RecentTrades(ctx context.Context, pair string, limit int) ([]PublicTrade, error) {
	url := c.publicURL(fmt.Sprintf("/market_data/trade_history?pair=%s&limit=%d", pair, limit))
	raw, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	var trades []PublicTrade
	if err := json.Unmarshal(raw, &trades); err != nil {
		return nil, fmt.Errorf("unmarshal trade history: %w", err)
	}
	return trades, nil
}

// Fill is one executed trade of this account.
type Fill struct {
	Symbol    string          `json:"symbol"`
	Side      string          `json:"side"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	FeeAmount decimal.Decimal `json:"fee_amount"`
}

// TradeHistory fetches up to limit fills for the account.
func (c *Client) TradeHistory(ctx context.Context, limit int) ([]Fill, error) {
	raw, err := c.Post(ctx, fmt.Sprintf("/exchange/v1/orders/trade_history?limit=%d", limit), nil)
	if err != nil {
		return nil, err
	}

	var fills []Fill
	if err := json.Unmarshal(raw, &fills); err != nil {
		return nil, fmt.Errorf("unmarshal fills: %w", err)
	}
	return fills, nil
}

// AggregateSpend sums what each symbol cost to acquire: for every buy
// fill, quantity*price plus the fee. Sells do not reduce the figure; the
// total is money put in, not current P&L.
func AggregateSpend(fills []Fill) (map[string]decimal.Decimal, decimal.Decimal) {
	perSymbol := make(map[string]decimal.Decimal)
	total := decimal.Zero

	for _, f := range fills {
		if _, ok := perSymbol[f.Symbol]; !ok {
			perSymbol[f.Symbol] = decimal.Zero
		}
		if f.Side != "buy" {
			continue
		}
		spent := f.Quantity.Mul(f.Price).Add(f.FeeAmount)
		perSymbol[f.Symbol] = perSymbol[f.Symbol].Add(spent)
		total = total.Add(spent)
	}

	return perSymbol, total
}
