package display

import (
	"io"
	"strconv"

	"github.com/kshitijsachdeva/dcxctl/internal/allocate"
	"github.com/kshitijsachdeva/dcxctl/internal/dcx"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
)

func newTable(w io.Writer, heads []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(heads)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	return table
}

// BalanceRow is one line of the balances report: a balance record plus
// its last-traded-price valuation in INR.
type BalanceRow struct {
	Currency string
	Balance  decimal.Decimal
	Locked   decimal.Decimal
	InINR    decimal.Decimal
}

func Balances(w io.Writer, rows []BalanceRow, total decimal.Decimal) {
	table := newTable(w, []string{"Currency", "Balance", "Locked", "Value (INR)"})
	for _, r := range rows {
		table.Append([]string{r.Currency, r.Balance.String(), r.Locked.String(), r.InINR.StringFixed(2)})
	}
	table.Append([]string{"TOTAL", "", "", total.StringFixed(2)})
	table.Render()
}

func Markets(w io.Writer, markets []dcx.Market) {
	table := newTable(w, []string{"Pair", "Market", "Qty Precision", "Min Qty", "Min Notional", "Status"})
	for _, m := range markets {
		table.Append([]string{
			m.Pair,
			m.Symbol,
			strconv.Itoa(int(m.TargetCurrencyPrecision)),
			m.MinQuantity.String(),
			m.MinNotional.String(),
			m.Status,
		})
	}
	table.Render()
}

func OrderBook(w io.Writer, book *dcx.OrderBook) {
	table := newTable(w, []string{"Side", "Price", "Quantity"})
	for _, l := range book.Asks {
		table.Append([]string{"ask", l.Price.String(), l.Quantity.String()})
	}
	for _, l := range book.Bids {
		table.Append([]string{"bid", l.Price.String(), l.Quantity.String()})
	}
	table.Render()
}

func BuyResults(w io.Writer, results []allocate.Result) {
	table := newTable(w, []string{"Pair", "Market", "Price", "Quantity", "Status"})
	for _, r := range results {
		status := "sent"
		if r.Err != nil {
			status = "no data"
		}
		table.Append([]string{r.Pair, r.Market, r.Price.String(), r.Quantity.String(), status})
	}
	table.Render()
}

func Spend(w io.Writer, perSymbol map[string]decimal.Decimal, symbols []string, total decimal.Decimal) {
	table := newTable(w, []string{"Symbol", "Amount Spent (INR)"})
	for _, s := range symbols {
		table.Append([]string{s, perSymbol[s].StringFixed(2)})
	}
	table.Append([]string{"TOTAL", total.StringFixed(2)})
	table.Render()
}
