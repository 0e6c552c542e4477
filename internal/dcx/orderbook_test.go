package dcx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOrderBookPreservesNativeOrder(t *testing.T) {
	// Prices deliberately not sorted: the decoder must keep the order the
	// exchange sent, not impose its own.
	raw := []byte(`{"bids":{"100":"1","99":"2","101":"0.5"},"asks":{"102":1.5}}`)

	book, err := decodeOrderBook(raw)
	require.NoError(t, err)

	require.Len(t, book.Bids, 3)
	assert.True(t, book.Bids[0].Price.Equal(mustDec(t, "100")))
	assert.True(t, book.Bids[1].Price.Equal(mustDec(t, "99")))
	assert.True(t, book.Bids[2].Price.Equal(mustDec(t, "101")))
	assert.True(t, book.Bids[1].Quantity.Equal(mustDec(t, "2")))

	require.Len(t, book.Asks, 1)
	assert.True(t, book.Asks[0].Quantity.Equal(mustDec(t, "1.5")))
}

func TestReferenceBidIndexRule(t *testing.T) {
	t.Run("two or more levels picks the second", func(t *testing.T) {
		book, err := decodeOrderBook([]byte(`{"bids":{"100":"1","99":"2"},"asks":{}}`))
		require.NoError(t, err)

		price, err := book.ReferenceBid()
		require.NoError(t, err)
		assert.True(t, price.Equal(mustDec(t, "99")))
	})

	t.Run("single level picks it", func(t *testing.T) {
		book, err := decodeOrderBook([]byte(`{"bids":{"100":"1"},"asks":{}}`))
		require.NoError(t, err)

		price, err := book.ReferenceBid()
		require.NoError(t, err)
		assert.True(t, price.Equal(mustDec(t, "100")))
	})

	t.Run("empty bids is no liquidity", func(t *testing.T) {
		book, err := decodeOrderBook([]byte(`{"bids":{},"asks":{"5":"1"}}`))
		require.NoError(t, err)

		_, err = book.ReferenceBid()
		assert.ErrorIs(t, err, ErrNoLiquidity)
	})
}

func TestRepresentativeBidPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/market_data/orderbook", r.URL.Path)
		assert.Equal(t, "I-ADA_INR", r.URL.Query().Get("pair"))
		w.Write([]byte(`{"bids":{"23.91":"10","23.90":"55"},"asks":{}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL)
	price, err := c.RepresentativeBidPrice(context.Background(), "I-ADA_INR")
	require.NoError(t, err)
	assert.True(t, price.Equal(mustDec(t, "23.90")))
}
