package dcx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kshitijsachdeva/dcxctl/internal/telemetry"
	"github.com/shopspring/decimal"
)

// ErrNoLiquidity means the book has no bid depth for the pair. Callers
// skip the pair; this is not a transport or API failure.
var ErrNoLiquidity = errors.New("no bid depth")

// BookLevel is one price level of an order book side.
type BookLevel struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// OrderBook holds both sides of a book for one pair. Levels keep the
// exchange's native key order: the representative-price index rule below
// depends on it, so the JSON object cannot be decoded into a Go map.
type OrderBook struct {
	Pair string
	Bids []BookLevel
	Asks []BookLevel
}

// FetchOrderBook retrieves the current book for pair from the public host.
func (c *Client) FetchOrderBook(ctx context.Context, pair string) (*OrderBook, error) {
	raw, err := c.Get(ctx, c.publicURL("/market_data/orderbook?pair="+pair))
	if err != nil {
		return nil, err
	}

	book, err := decodeOrderBook(raw)
	if err != nil {
		return nil, fmt.Errorf("decode order book for %s: %w", pair, err)
	}
	book.Pair = pair

	telemetry.Metrics.BooksSampled.Inc()
	return book, nil
}

// RepresentativeBidPrice samples the book for pair and picks the reference
// price for order sizing: the second bid level when the book has two or
// more, otherwise the only one. Skipping the top of book damps the effect
// of a single thin quote; this exact index rule is deliberate, not an
// approximation of an average.
func (c *Client) RepresentativeBidPrice(ctx context.Context, pair string) (decimal.Decimal, error) {
	book, err := c.FetchOrderBook(ctx, pair)
	if err != nil {
		return decimal.Zero, err
	}
	return book.ReferenceBid()
}

// ReferenceBid applies the index rule to an already-fetched book.
func (b *OrderBook) ReferenceBid() (decimal.Decimal, error) {
	switch {
	case len(b.Bids) == 0:
		return decimal.Zero, ErrNoLiquidity
	case len(b.Bids) >= 2:
		return b.Bids[1].Price, nil
	default:
		return b.Bids[0].Price, nil
	}
}

// decodeOrderBook walks the JSON token stream by hand so bid and ask
// levels come out in the order the exchange sent them.
func decodeOrderBook(raw json.RawMessage) (*OrderBook, error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	book := &OrderBook{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		side, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}

		levels, err := decodeSide(dec)
		if err != nil {
			return nil, fmt.Errorf("side %q: %w", side, err)
		}

		switch side {
		case "bids":
			book.Bids = levels
		case "asks":
			book.Asks = levels
		default:
			// unknown side, levels already consumed
		}
	}

	return book, expectDelim(dec, '}')
}

func decodeSide(dec *json.Decoder) ([]BookLevel, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	var levels []BookLevel
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected level key %v", tok)
		}
		price, err := decimal.NewFromString(key)
		if err != nil {
			return nil, fmt.Errorf("parse price %q: %w", key, err)
		}

		qty, err := decodeQuantity(dec)
		if err != nil {
			return nil, fmt.Errorf("quantity at %s: %w", key, err)
		}

		levels = append(levels, BookLevel{Price: price, Quantity: qty})
	}

	return levels, expectDelim(dec, '}')
}

// decodeQuantity accepts a quantity sent as either a JSON number or a
// numeric string.
func decodeQuantity(dec *json.Decoder) (decimal.Decimal, error) {
	tok, err := dec.Token()
	if err != nil {
		return decimal.Zero, err
	}
	switch v := tok.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		return decimal.NewFromString(v)
	default:
		return decimal.Zero, fmt.Errorf("unexpected quantity token %v", tok)
	}
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
