package dcx

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/kshitijsachdeva/dcxctl/internal/telemetry"
	"github.com/shopspring/decimal"
)

// MarketSymbol derives the order-placement symbol from a pair identifier:
// the exchange prefix and the currency separator are stripped, so
// "I-BTC_INR" becomes "BTCINR".
func MarketSymbol(pair string) string {
	if i := strings.Index(pair, "-"); i >= 0 {
		pair = pair[i+1:]
	}
	return strings.ReplaceAll(pair, "_", "")
}

// PlaceLimitBuy creates a limit buy order. Price and quantity go on the
// wire as JSON numbers, already rounded to the market's precisions by the
// caller. The client logs the request verbatim before sending; the raw
// response comes back for the caller's audit trail.
func (c *Client) PlaceLimitBuy(ctx context.Context, market string, price, quantity decimal.Decimal) (json.RawMessage, error) {
	body := map[string]any{
		"side":            "buy",
		"order_type":      "limit_order",
		"market":          market,
		"price_per_unit":  json.Number(price.String()),
		"total_quantity":  json.Number(quantity.String()),
		"client_order_id": uuid.NewString(),
	}

	resp, err := c.Post(ctx, "/exchange/v1/orders/create", body)
	if err != nil {
		telemetry.Metrics.OrderErrors.Inc()
		return nil, err
	}

	telemetry.Metrics.OrdersSent.Inc()
	return resp, nil
}
