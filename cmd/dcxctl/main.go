package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/kshitijsachdeva/dcxctl/internal/allocate"
	"github.com/kshitijsachdeva/dcxctl/internal/config"
	"github.com/kshitijsachdeva/dcxctl/internal/dcx"
	"github.com/kshitijsachdeva/dcxctl/internal/display"
	"github.com/kshitijsachdeva/dcxctl/internal/telemetry"
	"github.com/shopspring/decimal"
)

const usageTpl = `dcxctl — CoinDCX command line client

please run with a subcommand:
	lend:          lend all currencies with a usable balance
	lend-status:   show active lending orders
	balances:      show non-zero balances valued in INR
	order-book:    show the order book for a pair
	market-data:   show all INR-quoted markets
	buy:           buy every INR coin with equal-weight allocation
	trade_history: aggregate money spent per symbol
`

func main() {
	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usageTpl)
		os.Exit(1)
	}

	app := newApp(cfg)
	ctx := context.Background()

	var err error
	switch os.Args[1] {
	case "lend":
		err = app.runLend(ctx, os.Args[2:])
	case "lend-status":
		err = app.runLendStatus(ctx)
	case "balances":
		err = app.runBalances(ctx)
	case "order-book":
		err = app.runOrderBook(ctx, os.Args[2:])
	case "market-data":
		err = app.runMarketData(ctx)
	case "buy":
		err = app.runBuy(ctx, os.Args[2:])
	case "trade_history":
		err = app.runTradeHistory(ctx)
	default:
		fmt.Fprint(os.Stderr, usageTpl)
		os.Exit(1)
	}

	if err != nil {
		telemetry.Errorf("%v", err)
		os.Exit(1)
	}
}

type app struct {
	cfg     *config.Config
	client  *dcx.Client
	catalog *dcx.Catalog
}

func newApp(cfg *config.Config) *app {
	signer := dcx.NewSigner(cfg.APIKey, cfg.APISecret)
	client := dcx.NewClient(cfg.APIBaseURL, cfg.PublicBaseURL, signer)
	return &app{
		cfg:     cfg,
		client:  client,
		catalog: dcx.NewCatalog(client),
	}
}

func (a *app) requireCreds() error {
	if a.cfg.APIKey == "" || a.cfg.APISecret == "" {
		return fmt.Errorf("credentials missing — set COINDCX_API_KEY and COINDCX_API_SECRET in .env")
	}
	return nil
}

func (a *app) runLend(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("lend", flag.ExitOnError)
	currenciesArg := fs.String("currencies", "", "comma-separated short currency names to lend (default: all)")
	duration := fs.Int("duration", 7, "duration to lend (days)")
	notIgnoreSmall := fs.Bool("not-ignore-small-amounts", false, "also lend balances below 0.001")
	fs.Parse(args)

	if err := a.requireCreds(); err != nil {
		return err
	}

	var currencies []string
	if *currenciesArg != "" {
		currencies = strings.Split(*currenciesArg, ",")
	}

	balances, err := a.client.Balances(ctx)
	if err != nil {
		return fmt.Errorf("could not fetch balances, lending aborted: %w", err)
	}

	for _, b := range balances {
		d := dcx.DecideLend(b, currencies, !*notIgnoreSmall)
		if !d.Lend {
			if !b.Balance.IsZero() {
				telemetry.Infof("Not lending %q: %s", b.Currency, d.Reason)
			}
			continue
		}

		req := dcx.LendRequest{Currency: b.Currency, Duration: *duration, Amount: b.Balance}
		telemetry.Infof("Lending request sent for: %s amount=%s duration=%d", req.Currency, req.Amount, req.Duration)
		resp, err := a.client.Lend(ctx, req)
		if err != nil {
			continue
		}
		printIndented(resp)
	}
	return nil
}

func (a *app) runLendStatus(ctx context.Context) error {
	if err := a.requireCreds(); err != nil {
		return err
	}

	open, err := a.client.LendOrders(ctx, "open")
	if err != nil {
		return err
	}

	telemetry.Plainf("Lending that are still active:")
	data, err := json.MarshalIndent(open, "", "  ")
	if err != nil {
		return err
	}
	telemetry.Plainf("%s", data)
	return nil
}

func (a *app) runBalances(ctx context.Context) error {
	if err := a.requireCreds(); err != nil {
		return err
	}

	balances, err := a.client.Balances(ctx)
	if err != nil {
		return err
	}

	var rows []display.BalanceRow
	total := decimal.Zero
	for _, b := range balances {
		if b.IsZero() {
			continue
		}

		price, ok := a.lastPriceINR(ctx, b.Currency)
		if !ok {
			rows = append(rows, display.BalanceRow{Currency: b.Currency, Balance: b.Balance, Locked: b.LockedBalance})
			continue
		}

		value := price.Mul(b.Balance.Add(b.LockedBalance))
		total = total.Add(value)
		rows = append(rows, display.BalanceRow{Currency: b.Currency, Balance: b.Balance, Locked: b.LockedBalance, InINR: value})
	}

	display.Balances(os.Stdout, rows, total)
	return nil
}

// lastPriceINR values a currency via the last public trade of its INR
// pair. INR itself is worth 1 even when the pair has no trades.
func (a *app) lastPriceINR(ctx context.Context, currency string) (decimal.Decimal, bool) {
	pair := fmt.Sprintf("I-%s_INR", currency)
	trades, err := a.client.RecentTrades(ctx, pair, 1)
	if err != nil {
		return decimal.Zero, false
	}
	if len(trades) == 0 {
		if currency == "INR" {
			return decimal.NewFromInt(1), true
		}
		return decimal.Zero, false
	}
	return trades[0].Price, true
}

func (a *app) runOrderBook(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("order-book", flag.ExitOnError)
	pair := fs.String("pair", "I-BTC_INR", "pair to show the order book for")
	fs.Parse(args)

	book, err := a.client.FetchOrderBook(ctx, *pair)
	if err != nil {
		return fmt.Errorf("could not get the order book for pair %s: %w", *pair, err)
	}

	display.OrderBook(os.Stdout, book)
	return nil
}

func (a *app) runMarketData(ctx context.Context) error {
	markets, err := a.catalog.ListINRMarkets(ctx)
	if err != nil {
		return fmt.Errorf("market details API returned nothing: %w", err)
	}

	display.Markets(os.Stdout, markets)
	telemetry.Plainf("Total INR markets: %d", a.catalog.MaxINRCoins())
	return nil
}

func (a *app) runBuy(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("buy", flag.ExitOnError)
	doNotBuyArg := fs.String("do-not-buy", "", "comma-separated pairs to exclude from buying")
	fs.Parse(args)

	if err := a.requireCreds(); err != nil {
		return err
	}

	var doNotBuy []string
	if *doNotBuyArg != "" {
		doNotBuy = strings.Split(*doNotBuyArg, ",")
	}

	weight := allocate.EqualWeight
	if a.cfg.AllocConfigPath != "" {
		ac, err := config.LoadAllocConfig(a.cfg.AllocConfigPath)
		if err != nil {
			return err
		}
		doNotBuy = append(doNotBuy, ac.Exclude...)
		weight = func(pair string) decimal.Decimal {
			return decimal.NewFromFloat(ac.Weight(pair))
		}
	}

	engine := allocate.NewEngine(a.catalog, a.client, a.client, a.client, weight)
	results, err := engine.BuyAll(ctx, doNotBuy)
	if err != nil {
		return err
	}

	if len(results) > 0 {
		display.BuyResults(os.Stdout, results)
	}

	telemetry.Infof("Done  orders=%d  errors=%d  skipped=%d  req_p50=%s  req_p99=%s",
		telemetry.Metrics.OrdersSent.Value(),
		telemetry.Metrics.OrderErrors.Value(),
		telemetry.Metrics.CoinsSkipped.Value(),
		telemetry.Metrics.RequestLatency.P50(),
		telemetry.Metrics.RequestLatency.P99(),
	)
	return nil
}

func (a *app) runTradeHistory(ctx context.Context) error {
	if err := a.requireCreds(); err != nil {
		return err
	}

	fills, err := a.client.TradeHistory(ctx, 5000)
	if err != nil {
		return fmt.Errorf("trade history returned nothing, not proceeding: %w", err)
	}

	perSymbol, total := dcx.AggregateSpend(fills)
	symbols := make([]string, 0, len(perSymbol))
	for s := range perSymbol {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	display.Spend(os.Stdout, perSymbol, symbols, total)
	return nil
}

func printIndented(raw json.RawMessage) {
	var buf any
	if err := json.Unmarshal(raw, &buf); err != nil {
		telemetry.Plainf("%s", raw)
		return
	}
	data, _ := json.MarshalIndent(buf, "", "  ")
	telemetry.Plainf("%s", data)
}
