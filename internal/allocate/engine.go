package allocate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kshitijsachdeva/dcxctl/internal/dcx"
	"github.com/kshitijsachdeva/dcxctl/internal/telemetry"
	"github.com/shopspring/decimal"
)

// Ports the engine needs from the exchange client. Everything is
// sequential and blocking; one failed call aborts only the step that
// needed it.
type CatalogSource interface {
	ListINRMarkets(ctx context.Context) ([]dcx.Market, error)
	MaxINRCoins() int
}

type FundsProbe interface {
	AvailableFunds(ctx context.Context, currency string) (decimal.Decimal, error)
}

type PriceSampler interface {
	RepresentativeBidPrice(ctx context.Context, pair string) (decimal.Decimal, error)
}

type OrderPlacer interface {
	PlaceLimitBuy(ctx context.Context, market string, price, quantity decimal.Decimal) (json.RawMessage, error)
}

// WeightFunc returns the allocation weight for a pair. Equal weighting is
// a constant 1.0; nothing in the engine assumes uniformity.
type WeightFunc func(pair string) decimal.Decimal

func EqualWeight(string) decimal.Decimal { return decimal.NewFromInt(1) }

// Result is the outcome of one submitted order. Response is nil when the
// order call returned no data.
type Result struct {
	Pair     string
	Market   string
	Price    decimal.Decimal
	Quantity decimal.Decimal
	Response json.RawMessage
	Err      error
}

// Engine turns the available INR funds into an equal-weight basket of
// limit buy orders across every eligible INR instrument.
type Engine struct {
	catalog CatalogSource
	funds   FundsProbe
	prices  PriceSampler
	orders  OrderPlacer
	weight  WeightFunc
}

func NewEngine(catalog CatalogSource, funds FundsProbe, prices PriceSampler, orders OrderPlacer, weight WeightFunc) *Engine {
	if weight == nil {
		weight = EqualWeight
	}
	return &Engine{catalog: catalog, funds: funds, prices: prices, orders: orders, weight: weight}
}

// BuyAll runs the whole allocation: probe funds, list instruments, sample
// a reference bid per instrument, size in two passes, then submit orders
// cheapest-first. Instruments without bid depth or whose quantity rounds
// to zero are dropped and their funds reclaimed for the rest. An empty
// surviving set ends the run with no orders and no error.
func (e *Engine) BuyAll(ctx context.Context, doNotBuy []string) ([]Result, error) {
	funds, err := e.funds.AvailableFunds(ctx, "INR")
	if err != nil {
		return nil, fmt.Errorf("could not get funds avail for buying: %w", err)
	}
	telemetry.Infof("Funds avail for buying: %s", funds)

	markets, err := e.catalog.ListINRMarkets(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get market details for INR coins: %w", err)
	}

	if n := e.catalog.MaxINRCoins(); n > 0 {
		telemetry.Infof("Total number of coins with base currency INR: %d", n)
		telemetry.Infof("Min amount that can be spent per coin: INR %s", funds.Div(decimal.NewFromInt(int64(n))))
	}

	lines := e.seed(ctx, markets, doNotBuy)
	telemetry.Infof("Initial number of coins to buy: %d", len(lines))
	if len(lines) == 0 {
		telemetry.Warnf("No eligible coins, nothing to buy")
		return nil, nil
	}

	kept, dropped := SizeLines(funds, lines)
	for _, l := range dropped {
		telemetry.Infof("Total quantity is 0 for %s, not buying!", l.Pair)
	}
	telemetry.Infof("Modified number of coins to buy: %d", len(kept))
	if len(kept) == 0 {
		telemetry.Warnf("Every coin sized to zero quantity, nothing to buy")
		return nil, nil
	}
	telemetry.Infof("Modified min amount that can be spent per coin: INR %s",
		funds.Div(decimal.NewFromInt(int64(len(kept)))))

	return e.submit(ctx, Finalize(kept)), nil
}

// seed samples a reference bid for every instrument not excluded by the
// caller. A book with no bids or a failed fetch drops the instrument
// before it ever enters the plan.
func (e *Engine) seed(ctx context.Context, markets []dcx.Market, doNotBuy []string) []*Line {
	excluded := make(map[string]bool, len(doNotBuy))
	for _, p := range doNotBuy {
		excluded[p] = true
	}

	var lines []*Line
	for _, m := range markets {
		if excluded[m.Pair] {
			continue
		}

		price, err := e.prices.RepresentativeBidPrice(ctx, m.Pair)
		if errors.Is(err, dcx.ErrNoLiquidity) {
			telemetry.Infof("No bidding data for %s, skipping this coin!", m.Pair)
			telemetry.Metrics.CoinsSkipped.Inc()
			continue
		}
		if err != nil {
			telemetry.Infof("No orderbook data fetched for %s, skipping this coin!", m.Pair)
			telemetry.Metrics.CoinsSkipped.Inc()
			continue
		}

		lines = append(lines, &Line{
			Pair:      m.Pair,
			Precision: int32(m.TargetCurrencyPrecision),
			Weight:    e.weight(m.Pair),
			Price:     price,
		})
	}
	return lines
}

// submit places one limit buy per line, in the order given. Orders are
// independent: a failure is logged and the loop moves on, nothing already
// sent is recalled.
func (e *Engine) submit(ctx context.Context, lines []*Line) []Result {
	results := make([]Result, 0, len(lines))
	for _, l := range lines {
		market := dcx.MarketSymbol(l.Pair)
		resp, err := e.orders.PlaceLimitBuy(ctx, market, l.Price, l.Quantity)
		if err != nil {
			telemetry.Errorf("Order for %s (market %s) got no data: %v", l.Pair, market, err)
		} else {
			telemetry.Infof("Order response for %s: %s", l.Pair, resp)
		}
		results = append(results, Result{
			Pair:     l.Pair,
			Market:   market,
			Price:    l.Price,
			Quantity: l.Quantity,
			Response: resp,
			Err:      err,
		})
	}
	return results
}
