package allocate

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/kshitijsachdeva/dcxctl/internal/dcx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	markets []dcx.Market
	err     error
}

func (f *fakeCatalog) ListINRMarkets(context.Context) ([]dcx.Market, error) {
	return f.markets, f.err
}

func (f *fakeCatalog) MaxINRCoins() int { return len(f.markets) }

type fakeFunds struct {
	funds decimal.Decimal
	err   error
}

func (f *fakeFunds) AvailableFunds(context.Context, string) (decimal.Decimal, error) {
	return f.funds, f.err
}

type fakePrices struct {
	prices  map[string]string
	errs    map[string]error
	sampled []string
}

func (f *fakePrices) RepresentativeBidPrice(_ context.Context, pair string) (decimal.Decimal, error) {
	f.sampled = append(f.sampled, pair)
	if err, ok := f.errs[pair]; ok {
		return decimal.Zero, err
	}
	return decimal.NewFromString(f.prices[pair])
}

type orderCall struct {
	market   string
	price    decimal.Decimal
	quantity decimal.Decimal
}

type fakeOrders struct {
	calls   []orderCall
	failFor map[string]error
}

func (f *fakeOrders) PlaceLimitBuy(_ context.Context, market string, price, quantity decimal.Decimal) (json.RawMessage, error) {
	f.calls = append(f.calls, orderCall{market: market, price: price, quantity: quantity})
	if err, ok := f.failFor[market]; ok {
		return nil, err
	}
	return json.RawMessage(`{"orders":[{"status":"open"}]}`), nil
}

func inrMarket(pair string, precision int) dcx.Market {
	return dcx.Market{
		Pair:                    pair,
		BaseCurrencyShortName:   "INR",
		TargetCurrencyPrecision: dcx.Precision(precision),
	}
}

func TestBuyAll(t *testing.T) {
	catalog := &fakeCatalog{markets: []dcx.Market{
		inrMarket("I-AAA_INR", 2),
		inrMarket("I-BBB_INR", 0), // too expensive, drops in sizing
		inrMarket("I-CCC_INR", 1),
		inrMarket("I-DDD_INR", 2), // excluded by caller
		inrMarket("I-EEE_INR", 2), // no bid depth
		inrMarket("I-FFF_INR", 2), // order book fetch fails
	}}
	prices := &fakePrices{
		prices: map[string]string{
			"I-AAA_INR": "2",
			"I-BBB_INR": "100000",
			"I-CCC_INR": "10",
		},
		errs: map[string]error{
			"I-EEE_INR": dcx.ErrNoLiquidity,
			"I-FFF_INR": errors.New("connection refused"),
		},
	}
	orders := &fakeOrders{}

	engine := NewEngine(catalog, &fakeFunds{funds: decimal.NewFromInt(1000)}, prices, orders, nil)
	results, err := engine.BuyAll(context.Background(), []string{"I-DDD_INR"})
	require.NoError(t, err)

	t.Run("excluded pair is never sampled", func(t *testing.T) {
		assert.NotContains(t, prices.sampled, "I-DDD_INR")
	})

	t.Run("cheapest instrument ordered first", func(t *testing.T) {
		require.Len(t, orders.calls, 2)
		assert.Equal(t, "AAAINR", orders.calls[0].market)
		assert.Equal(t, "CCCINR", orders.calls[1].market)
	})

	t.Run("funds reclaimed from the dropped coin", func(t *testing.T) {
		// 1000 split over two survivors: 500 each.
		assert.True(t, orders.calls[0].quantity.Equal(decimal.NewFromInt(250)),
			"got %s", orders.calls[0].quantity)
		assert.True(t, orders.calls[1].quantity.Equal(decimal.NewFromInt(50)),
			"got %s", orders.calls[1].quantity)
	})

	t.Run("results mirror submissions", func(t *testing.T) {
		require.Len(t, results, 2)
		assert.Equal(t, "I-AAA_INR", results[0].Pair)
		assert.NoError(t, results[0].Err)
		assert.NotNil(t, results[0].Response)
	})
}

func TestBuyAllOrderFailureDoesNotStopTheRun(t *testing.T) {
	catalog := &fakeCatalog{markets: []dcx.Market{
		inrMarket("I-AAA_INR", 2),
		inrMarket("I-CCC_INR", 1),
	}}
	prices := &fakePrices{prices: map[string]string{
		"I-AAA_INR": "2",
		"I-CCC_INR": "10",
	}}
	orders := &fakeOrders{failFor: map[string]error{
		"AAAINR": errors.New("503"),
	}}

	engine := NewEngine(catalog, &fakeFunds{funds: decimal.NewFromInt(1000)}, prices, orders, nil)
	results, err := engine.BuyAll(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, orders.calls, 2, "second order still placed after the first failed")
	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.Nil(t, results[0].Response)
	assert.NoError(t, results[1].Err)
}

func TestBuyAllNoEligibleCoins(t *testing.T) {
	t.Run("all skipped at seeding", func(t *testing.T) {
		catalog := &fakeCatalog{markets: []dcx.Market{inrMarket("I-AAA_INR", 2)}}
		prices := &fakePrices{errs: map[string]error{"I-AAA_INR": dcx.ErrNoLiquidity}}
		orders := &fakeOrders{}

		engine := NewEngine(catalog, &fakeFunds{funds: decimal.NewFromInt(1000)}, prices, orders, nil)
		results, err := engine.BuyAll(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, results)
		assert.Empty(t, orders.calls)
	})

	t.Run("all sized to zero", func(t *testing.T) {
		catalog := &fakeCatalog{markets: []dcx.Market{inrMarket("I-AAA_INR", 0)}}
		prices := &fakePrices{prices: map[string]string{"I-AAA_INR": "100000"}}
		orders := &fakeOrders{}

		engine := NewEngine(catalog, &fakeFunds{funds: decimal.NewFromInt(10)}, prices, orders, nil)
		results, err := engine.BuyAll(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, results)
		assert.Empty(t, orders.calls)
	})

	t.Run("empty catalog", func(t *testing.T) {
		engine := NewEngine(&fakeCatalog{}, &fakeFunds{funds: decimal.NewFromInt(1000)}, &fakePrices{}, &fakeOrders{}, nil)
		results, err := engine.BuyAll(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestBuyAllAbortsWhenProbesFail(t *testing.T) {
	t.Run("funds probe fails", func(t *testing.T) {
		engine := NewEngine(&fakeCatalog{}, &fakeFunds{err: errors.New("no data")}, &fakePrices{}, &fakeOrders{}, nil)
		_, err := engine.BuyAll(context.Background(), nil)
		assert.Error(t, err)
	})

	t.Run("catalog fails", func(t *testing.T) {
		engine := NewEngine(&fakeCatalog{err: errors.New("no data")}, &fakeFunds{funds: decimal.NewFromInt(100)}, &fakePrices{}, &fakeOrders{}, nil)
		_, err := engine.BuyAll(context.Background(), nil)
		assert.Error(t, err)
	})
}

func TestBuyAllIdempotent(t *testing.T) {
	run := func() []Result {
		catalog := &fakeCatalog{markets: []dcx.Market{
			inrMarket("I-AAA_INR", 3),
			inrMarket("I-BBB_INR", 1),
			inrMarket("I-CCC_INR", 0),
		}}
		prices := &fakePrices{prices: map[string]string{
			"I-AAA_INR": "3.17",
			"I-BBB_INR": "41.5",
			"I-CCC_INR": "997",
		}}
		engine := NewEngine(catalog, &fakeFunds{funds: decimal.RequireFromString("98765.43")}, prices, &fakeOrders{}, nil)
		results, err := engine.BuyAll(context.Background(), nil)
		require.NoError(t, err)
		return results
	}

	a, b := run(), run()
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Pair, b[i].Pair)
		assert.Equal(t, a[i].Quantity.String(), b[i].Quantity.String())
		assert.Equal(t, a[i].Price.String(), b[i].Price.String())
	}
}
