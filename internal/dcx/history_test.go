package dcx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateSpend(t *testing.T) {
	fills := []Fill{
		{Symbol: "BTCINR", Side: "buy", Quantity: mustDec(t, "0.01"), Price: mustDec(t, "5000000"), FeeAmount: mustDec(t, "50")},
		{Symbol: "BTCINR", Side: "buy", Quantity: mustDec(t, "0.02"), Price: mustDec(t, "4900000"), FeeAmount: mustDec(t, "98")},
		{Symbol: "ADAINR", Side: "buy", Quantity: mustDec(t, "100"), Price: mustDec(t, "24"), FeeAmount: mustDec(t, "2.4")},
		{Symbol: "ADAINR", Side: "sell", Quantity: mustDec(t, "50"), Price: mustDec(t, "30"), FeeAmount: mustDec(t, "1.5")},
	}

	perSymbol, total := AggregateSpend(fills)

	// 0.01*5000000+50 + 0.02*4900000+98 = 50050 + 98098 = 148148
	require.Contains(t, perSymbol, "BTCINR")
	assert.True(t, perSymbol["BTCINR"].Equal(mustDec(t, "148148")))

	// Sells do not reduce spend.
	assert.True(t, perSymbol["ADAINR"].Equal(mustDec(t, "2402.4")))

	assert.True(t, total.Equal(mustDec(t, "150550.4")))
}

func TestAggregateSpendEmpty(t *testing.T) {
	perSymbol, total := AggregateSpend(nil)
	assert.Empty(t, perSymbol)
	assert.True(t, total.IsZero())
}

func TestMarketSymbol(t *testing.T) {
	assert.Equal(t, "BTCINR", MarketSymbol("I-BTC_INR"))
	assert.Equal(t, "ADAINR", MarketSymbol("I-ADA_INR"))
	assert.Equal(t, "BTCUSDT", MarketSymbol("B-BTC_USDT"))
	assert.Equal(t, "BTCINR", MarketSymbol("BTC_INR"), "no prefix still strips separator")
}
