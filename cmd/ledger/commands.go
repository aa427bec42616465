package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"ledger/internal/analytics"
	"ledger/internal/core"
	"ledger/internal/ledger"
	"ledger/internal/services"
)

type (
	app struct {
		svc *services.LedgerService
		out io.Writer
	}

	command struct {
		summary string
		run     func(a *app, ctx context.Context, args []string) error
	}
)

var commands map[string]command

func init() {
	commands = map[string]command{
		"add":            {"record a transaction", (*app).add},
		"list":           {"show all transactions", (*app).list},
		"delete":         {"delete transactions by id", (*app).delete},
		"clean":          {"drop incomplete and duplicate records", (*app).clean},
		"monthly":        {"total per month", (*app).monthly},
		"month":          {"transactions in a month number (1-12)", (*app).month},
		"categories":     {"total per category", (*app).categories},
		"stats":          {"mean, median and standard deviation of amounts", (*app).stats},
		"sorted":         {"transactions by amount, highest first", (*app).sorted},
		"range":          {"transactions between two dates, inclusive", (*app).dateRange},
		"cumulative":     {"running total in date order", (*app).cumulative},
		"budget":         {"compare category totals with limits", (*app).budget},
		"moving-average": {"moving average of amounts in date order", (*app).movingAverage},
		"percentages":    {"share of the total per category", (*app).percentages},
	}
}

func (a *app) run(ctx context.Context, name string, args []string) error {
	cmd, ok := commands[name]
	if !ok {
		usage(a.out)
		return fmt.Errorf("unknown command %q", name)
	}
	return cmd.run(a, ctx, args)
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func (a *app) snapshot(ctx context.Context) core.Transactions {
	txs, report := a.svc.Snapshot(ctx)
	if report.Skipped > 0 {
		fmt.Fprintf(a.out, "note: skipped %d malformed rows\n", report.Skipped)
	}
	return txs
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := newFlagSet("add", a.out)
	title := fs.String("title", "", "transaction title")
	kind := fs.String("kind", "", "expense or income")
	amount := fs.String("amount", "", "amount, sign is applied from -kind")
	date := fs.String("date", "", "date as YYYY-MM-DD")
	category := fs.String("category", "", "category label (defaults to -kind)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := core.ValidateTitle(*title); err != nil {
		return err
	}
	k, err := core.ParseKind(*kind)
	if err != nil {
		return err
	}
	value, ok := core.ParseAmount(*amount)
	if !ok {
		return fmt.Errorf("%w: please enter a number", core.ErrInvalidAmount)
	}
	if !core.IsValidDate(*date) {
		return core.ErrInvalidDate
	}
	cat := strings.TrimSpace(*category)
	if cat == "" {
		cat = string(k)
	}

	tx, err := a.svc.Add(ctx, strings.TrimSpace(*title), k.SignAmount(value), *date, cat)
	if errors.Is(err, ledger.ErrNotPersisted) {
		return fmt.Errorf("transaction %s was not saved: %w", tx.ID, err)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Transaction %s added.\n", tx.ID)
	return nil
}

func (a *app) list(ctx context.Context, args []string) error {
	txs := a.snapshot(ctx)
	if len(txs) == 0 {
		fmt.Fprintln(a.out, "No transactions available.")
		return nil
	}
	return a.printTransactions(txs)
}

func (a *app) delete(ctx context.Context, args []string) error {
	fs := newFlagSet("delete", a.out)
	id := fs.String("id", "", "transaction id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.svc.Delete(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Transaction %s deleted.\n", strings.TrimSpace(*id))
	return nil
}

func (a *app) clean(ctx context.Context, args []string) error {
	removed, err := a.svc.Clean(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Cleaned data: removed %d rows.\n", removed)
	return nil
}

func (a *app) monthly(ctx context.Context, args []string) error {
	summary := analytics.MonthlySummary(a.snapshot(ctx))
	if len(summary) == 0 {
		fmt.Fprintln(a.out, "No data available.")
		return nil
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MONTH\tTOTAL")
	for _, m := range summary {
		fmt.Fprintf(w, "%s\t%s\n", m.Month, money(m.Total))
	}
	return w.Flush()
}

func (a *app) month(ctx context.Context, args []string) error {
	fs := newFlagSet("month", a.out)
	raw := fs.String("month", "", "month number 1-12")
	if err := fs.Parse(args); err != nil {
		return err
	}
	m, err := core.ParseMonth(*raw)
	if err != nil {
		return err
	}
	txs := analytics.FilterByMonth(a.snapshot(ctx), m)
	if len(txs) == 0 {
		fmt.Fprintf(a.out, "No transactions found for month %d.\n", m)
		return nil
	}
	return a.printTransactions(txs)
}

func (a *app) categories(ctx context.Context, args []string) error {
	totals := analytics.TotalsByCategory(a.snapshot(ctx))
	if len(totals) == 0 {
		fmt.Fprintln(a.out, "No data available.")
		return nil
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tTOTAL")
	for _, c := range analytics.Categories(totals) {
		fmt.Fprintf(w, "%s\t%s\n", c, money(totals[c]))
	}
	return w.Flush()
}

func (a *app) stats(ctx context.Context, args []string) error {
	txs := a.snapshot(ctx)
	fmt.Fprintf(a.out, "Mean amount: %s\n", money(analytics.Mean(txs)))
	fmt.Fprintf(a.out, "Median amount: %s\n", money(analytics.Median(txs)))
	fmt.Fprintf(a.out, "Standard deviation: %s\n", money(analytics.StdDev(txs)))
	return nil
}

func (a *app) sorted(ctx context.Context, args []string) error {
	txs := ledger.SortByAmountDescending(a.snapshot(ctx))
	if len(txs) == 0 {
		fmt.Fprintln(a.out, "No transactions available.")
		return nil
	}
	return a.printTransactions(txs)
}

func (a *app) dateRange(ctx context.Context, args []string) error {
	fs := newFlagSet("range", a.out)
	from := fs.String("from", "", "start date YYYY-MM-DD")
	to := fs.String("to", "", "end date YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !core.IsValidDate(*from) || !core.IsValidDate(*to) {
		return core.ErrInvalidDate
	}
	txs, err := analytics.FilterByDateRange(a.snapshot(ctx), *from, *to)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		fmt.Fprintln(a.out, "No transactions found in the specified date range.")
		return nil
	}
	return a.printTransactions(txs)
}

func (a *app) cumulative(ctx context.Context, args []string) error {
	points := analytics.CumulativeSpending(a.snapshot(ctx))
	if len(points) == 0 {
		fmt.Fprintln(a.out, "No data available.")
		return nil
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tAMOUNT\tCUMULATIVE")
	for _, p := range points {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Date, money(p.Amount), money(p.RunningTotal))
	}
	return w.Flush()
}

func (a *app) budget(ctx context.Context, args []string) error {
	fs := newFlagSet("budget", a.out)
	limits := limitsFlag{}
	fs.Var(limits, "limit", "category=amount, repeatable")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(limits) == 0 {
		return errors.New("at least one -limit category=amount is required")
	}

	checks := analytics.CheckBudget(a.snapshot(ctx), limits)
	if len(checks) == 0 {
		fmt.Fprintln(a.out, "No data available.")
		return nil
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tSPENT\tLIMIT\tSTATUS\tDIFFERENCE")
	for _, c := range analytics.Categories(checks) {
		b := checks[c]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c, money(b.Spent), money(b.Limit), b.Status, money(b.Difference))
	}
	return w.Flush()
}

func (a *app) movingAverage(ctx context.Context, args []string) error {
	fs := newFlagSet("moving-average", a.out)
	window := fs.Int("window", 7, "number of records per window")
	if err := fs.Parse(args); err != nil {
		return err
	}
	points, err := analytics.MovingAverage(a.snapshot(ctx), *window)
	if errors.Is(err, analytics.ErrInsufficientData) {
		fmt.Fprintf(a.out, "Not enough data for %d-record moving average.\n", *window)
		return nil
	}
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tMOVING_AVERAGE")
	for _, p := range points {
		fmt.Fprintf(w, "%s\t%s\n", p.Date, money(p.Average))
	}
	return w.Flush()
}

func (a *app) percentages(ctx context.Context, args []string) error {
	pct := analytics.CategoryPercentages(a.snapshot(ctx))
	if len(pct) == 0 {
		fmt.Fprintln(a.out, "No data available.")
		return nil
	}
	for _, c := range analytics.Categories(pct) {
		fmt.Fprintf(a.out, "%s: %s%%\n", c, pct[c].StringFixed(2))
	}
	return nil
}

func (a *app) printTransactions(txs core.Transactions) error {
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tAMOUNT\tDATE\tCATEGORY")
	for _, tx := range txs {
		amount := ""
		if tx.Amount.Valid {
			amount = money(tx.Amount.Decimal)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", tx.ID, tx.Title, amount, tx.Date, tx.Category)
	}
	return w.Flush()
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// limitsFlag collects repeated -limit category=amount values.
type limitsFlag map[string]decimal.Decimal

func (l limitsFlag) String() string {
	parts := make([]string, 0, len(l))
	for _, c := range analytics.Categories(l) {
		parts = append(parts, c+"="+l[c].String())
	}
	return strings.Join(parts, ",")
}

func (l limitsFlag) Set(v string) error {
	category, raw, ok := strings.Cut(v, "=")
	category = strings.TrimSpace(category)
	if !ok || category == "" {
		return fmt.Errorf("limit %q must look like category=amount", v)
	}
	amount, valid := core.ParseAmount(raw)
	if !valid {
		return fmt.Errorf("limit %q: %w", v, core.ErrInvalidAmount)
	}
	l[category] = amount
	return nil
}
