package dcx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"
)

// quoteCurrency is the fiat currency every allocation runs against. The
// exchange calls it base_currency in markets_details.
const quoteCurrency = "INR"

// Market is one tradable instrument from /exchange/v1/markets_details.
// The exchange mixes strings and numbers for numeric fields, so decoding
// goes through a typed schema: precisions are integers, sizes and prices
// are decimals, everything else passes through as strings.
type Market struct {
	CoinDCXName             string          `json:"coindcx_name"`
	Symbol                  string          `json:"symbol"`
	Pair                    string          `json:"pair"`
	Status                  string          `json:"status"`
	BaseCurrencyShortName   string          `json:"base_currency_short_name"`
	TargetCurrencyShortName string          `json:"target_currency_short_name"`
	BaseCurrencyPrecision   Precision       `json:"base_currency_precision"`
	TargetCurrencyPrecision Precision       `json:"target_currency_precision"`
	MinQuantity             decimal.Decimal `json:"min_quantity"`
	MaxQuantity             decimal.Decimal `json:"max_quantity"`
	MinPrice                decimal.Decimal `json:"min_price"`
	MaxPrice                decimal.Decimal `json:"max_price"`
	MinNotional             decimal.Decimal `json:"min_notional"`
	Step                    decimal.Decimal `json:"step"`
}

// Precision is a decimal-place count that the exchange may send as either
// a JSON number or a quoted string.
type Precision int

func (p *Precision) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("parse precision %q: %w", data, err)
	}
	*p = Precision(n)
	return nil
}

// Catalog fetches and filters the instrument catalog. The count of
// INR-quoted instruments is captured once, on the first successful fetch,
// and never recomputed; it is informational only.
type Catalog struct {
	client *Client

	countOnce   sync.Once
	maxINRCoins int
}

func NewCatalog(client *Client) *Catalog {
	return &Catalog{client: client}
}

// ListINRMarkets returns every instrument quoted in INR.
func (cat *Catalog) ListINRMarkets(ctx context.Context) ([]Market, error) {
	raw, err := cat.client.Get(ctx, cat.client.apiBaseURL+"/exchange/v1/markets_details")
	if err != nil {
		return nil, err
	}

	var all []Market
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, fmt.Errorf("unmarshal markets details: %w", err)
	}

	inr := make([]Market, 0, len(all))
	for _, m := range all {
		if m.BaseCurrencyShortName == quoteCurrency {
			inr = append(inr, m)
		}
	}

	cat.countOnce.Do(func() { cat.maxINRCoins = len(inr) })

	return inr, nil
}

// MaxINRCoins is the INR instrument count snapshotted by the first
// successful ListINRMarkets call; zero before that.
func (cat *Catalog) MaxINRCoins() int {
	return cat.maxINRCoins
}
