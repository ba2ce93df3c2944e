package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/andresuchdata/b2b-portal/internal/analytics"
	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/andresuchdata/b2b-portal/internal/importer"
	"github.com/andresuchdata/b2b-portal/internal/service"
	"github.com/urfave/cli/v2"
)

func userMessage(err error) string {
	return domain.UserMessage(err)
}

func commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "login",
			Usage: "Sign in and save the session token",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "email", Required: true, EnvVars: []string{"B2B_EMAIL"}},
				&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"B2B_PASSWORD"}},
			},
			Action: runLogin,
		},
		{Name: "logout", Usage: "Forget the saved session", Action: runLogout},
		{Name: "whoami", Usage: "Show the signed-in user", Action: runWhoami},
		{
			Name:  "cache",
			Usage: "Manage mirrored catalog snapshots",
			Subcommands: []*cli.Command{
				{Name: "clear", Usage: "Drop every user's mirrored catalogs", Action: runCacheClear},
			},
		},
		{
			Name:   "catalog",
			Usage:  "List the supplier catalog",
			Flags:  []cli.Flag{&cli.StringFlag{Name: "search", Usage: "Filter by name, SKU or category"}},
			Action: runCatalog,
		},
		{
			Name:  "order",
			Usage: "Place an order; quantities are capped at available stock",
			Flags: []cli.Flag{
				&cli.StringSliceFlag{Name: "item", Usage: "ID=QTY, repeatable", Required: true},
				&cli.StringFlag{Name: "shop", Usage: "Shop the order is for"},
			},
			Action: runOrder,
		},
		{
			Name:      "import",
			Usage:     "Create products from a CSV or XLSX file (path, s3://bucket/key or drive://id)",
			ArgsUsage: "<source>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "parse-mode", Usage: "naive or quoted", EnvVars: []string{"IMPORT_PARSE_MODE"}},
			},
			Action: runImport,
		},
		{
			Name:      "restock",
			Usage:     "Set a product's stock or apply an adjustment",
			ArgsUsage: "<productId>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "stock", Usage: "New absolute stock"},
				&cli.IntFlag{Name: "adjust", Usage: "Signed change, needs --reason"},
				&cli.StringFlag{Name: "reason"},
			},
			Action: runRestock,
		},
		{
			Name:  "orders",
			Usage: "List and update orders",
			Subcommands: []*cli.Command{
				{Name: "list", Action: runOrdersList},
				{Name: "status", ArgsUsage: "<orderId> <status>", Action: runOrderStatus},
				{Name: "advance", Usage: "Move to the next status", ArgsUsage: "<orderId>", Action: runOrderAdvance},
				{Name: "pay", ArgsUsage: "<orderId>", Action: runOrderPay},
				{Name: "verify", ArgsUsage: "<orderId>", Action: runOrderVerify},
			},
		},
		{
			Name:  "sales-report",
			Usage: "Report downstream sales against on-hand inventory",
			Flags: []cli.Flag{
				&cli.StringSliceFlag{Name: "item", Usage: "ID=QTY[@PRICE][#SHOP], repeatable", Required: true},
				&cli.TimestampFlag{Name: "date", Layout: time.DateOnly, Usage: "Sale date, default today"},
			},
			Action: runSalesReport,
		},
		{
			Name:      "calendar",
			Usage:     "Show a distributor's sales by day",
			ArgsUsage: "<distributorId>",
			Flags:     []cli.Flag{&cli.StringFlag{Name: "month", Usage: "YYYY-MM, default this month"}},
			Action:    runCalendar,
		},
		{
			Name:  "inventory",
			Usage: "Show on-hand inventory",
			Flags: []cli.Flag{
				&cli.StringSliceFlag{Name: "set", Usage: "ID=QTY, record a counted quantity"},
				&cli.BoolFlag{Name: "low", Usage: "Only products below the low-stock threshold"},
			},
			Action: runInventory,
		},
		{
			Name:  "distributors",
			Usage: "Manage distributor accounts",
			Subcommands: []*cli.Command{
				{Name: "list", Action: runDistributorsList},
				{Name: "status", ArgsUsage: "<distributorId> <status>", Action: runDistributorStatus},
			},
		},
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func table() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

func args(c *cli.Context, n int) ([]string, error) {
	if c.NArg() != n {
		return nil, fmt.Errorf("%s: want %d argument(s), see --help", c.Command.Name, n)
	}
	return c.Args().Slice(), nil
}

func runLogin(c *cli.Context) error {
	snap, err := appFrom(c).Workspace.Login(c.Context, domain.Credentials{
		Email:    c.String("email"),
		Password: c.String("password"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s (%s)\n", snap.User.Name, snap.User.EntityType)
	return nil
}

func runLogout(c *cli.Context) error {
	if _, err := appFrom(c).Workspace.Logout(c.Context); err != nil {
		return err
	}
	fmt.Println("signed out")
	return nil
}

func runCacheClear(c *cli.Context) error {
	if err := appFrom(c).Workspace.ClearCachedCatalogs(c.Context); err != nil {
		return err
	}
	fmt.Println("catalog cache cleared")
	return nil
}

func runWhoami(c *cli.Context) error {
	snap := appFrom(c).Workspace.Session()
	if c.Bool("json") {
		return printJSON(snap)
	}
	if !snap.Authenticated || snap.User == nil {
		return domain.ErrNotAuthenticated
	}
	fmt.Printf("%s <%s> %s\n", snap.User.Name, snap.User.Email, snap.User.EntityType)
	return nil
}

func runCatalog(c *cli.Context) error {
	ws := appFrom(c).Workspace
	if _, err := ws.EnterCatalog(c.Context); err != nil {
		return err
	}
	products := ws.SearchCatalog(c.String("search"))
	if c.Bool("json") {
		return printJSON(products)
	}
	w := table()
	fmt.Fprintln(w, "ID\tSKU\tNAME\tPRICE\tSTOCK\tSTATUS")
	for _, p := range products {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n", p.ID, p.SKU, p.Name, p.Price.StringFixed(2), p.Stock, domain.StockStatusOf(p.Stock))
	}
	return w.Flush()
}

func runOrder(c *cli.Context) error {
	items, err := parseItems(c.StringSlice("item"))
	if err != nil {
		return err
	}
	ws := appFrom(c).Workspace
	if _, err := ws.EnterCatalog(c.Context); err != nil {
		return err
	}
	for _, it := range items {
		got, _ := ws.SetDraftQuantity(it.ProductID, strconv.Itoa(it.Quantity))
		if got != it.Quantity {
			fmt.Fprintf(os.Stderr, "warning: %s capped at %d\n", it.ProductID, got)
		}
	}
	total := ws.Draft().Total

	order, err := ws.SubmitDraft(c.Context, c.String("shop"))
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(order)
	}
	fmt.Printf("order %s placed (%s), total %s\n", order.ID, order.Status, total.StringFixed(2))
	return nil
}

func runImport(c *cli.Context) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}
	var mode importer.ParseMode
	if raw := c.String("parse-mode"); raw != "" {
		if mode, err = importer.ParseModeOf(raw); err != nil {
			return err
		}
	}
	ws := appFrom(c).Workspace
	status, err := ws.ImportFrom(c.Context, a[0], mode, func(s domain.ImportJobStatus) {
		if !c.Bool("json") {
			fmt.Fprintf(os.Stderr, "\r%3d%% (%d/%d)", s.Progress, s.Completed, s.TotalRows)
		}
	})
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(status)
	}
	fmt.Fprintln(os.Stderr)
	for _, e := range status.Log {
		mark := "ok  "
		if !e.Success {
			mark = "FAIL"
		}
		fmt.Printf("%s row %d: %s\n", mark, e.Row, e.Message)
	}
	fmt.Printf("%s: %d rows, %d failed\n", status.State, status.TotalRows, status.Failed)
	if status.Failed > 0 {
		return cli.Exit("", 2)
	}
	return nil
}

func runRestock(c *cli.Context) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}
	ws := appFrom(c).Workspace
	if _, err := ws.EnterCatalog(c.Context); err != nil {
		return err
	}

	var p *domain.Product
	switch {
	case c.IsSet("stock") && c.IsSet("adjust"):
		return fmt.Errorf("use either --stock or --adjust")
	case c.IsSet("stock"):
		p, err = ws.Restock(c.Context, a[0], c.String("stock"))
	case c.IsSet("adjust"):
		p, err = ws.AdjustStock(c.Context, a[0], c.Int("adjust"), c.String("reason"))
	default:
		return fmt.Errorf("--stock or --adjust is required")
	}
	if err != nil {
		return err
	}
	fmt.Printf("%s stock is now %d\n", p.ID, p.Stock)
	return nil
}

func printOrders(c *cli.Context, orders ...domain.Order) error {
	if c.Bool("json") {
		return printJSON(orders)
	}
	w := table()
	fmt.Fprintln(w, "ID\tCREATED\tSHOP\tSTATUS\tPAYMENT\tTOTAL")
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", o.ID, o.CreatedAt.Format(time.DateOnly), o.ShopName, o.Status, o.PaymentStatus, o.TotalAmount.StringFixed(2))
	}
	return w.Flush()
}

func runOrdersList(c *cli.Context) error {
	orders, err := appFrom(c).Workspace.Orders(c.Context)
	if err != nil {
		return err
	}
	return printOrders(c, orders...)
}

func runOrderStatus(c *cli.Context) error {
	a, err := args(c, 2)
	if err != nil {
		return err
	}
	o, err := appFrom(c).Workspace.SetOrderStatus(c.Context, a[0], a[1])
	if err != nil {
		return err
	}
	return printOrders(c, *o)
}

func runOrderAdvance(c *cli.Context) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}
	o, err := appFrom(c).Workspace.AdvanceOrder(c.Context, a[0])
	if err != nil {
		return err
	}
	return printOrders(c, *o)
}

func runOrderPay(c *cli.Context) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}
	o, err := appFrom(c).Workspace.PayOrder(c.Context, a[0])
	if err != nil {
		return err
	}
	return printOrders(c, *o)
}

func runOrderVerify(c *cli.Context) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}
	o, err := appFrom(c).Workspace.VerifyPayment(c.Context, a[0])
	if err != nil {
		return err
	}
	return printOrders(c, *o)
}

func runSalesReport(c *cli.Context) error {
	items, err := parseItems(c.StringSlice("item"))
	if err != nil {
		return err
	}
	ws := appFrom(c).Workspace
	if _, err := ws.EnterSales(c.Context); err != nil {
		return err
	}

	var date time.Time
	if d := c.Timestamp("date"); d != nil {
		date = *d
	}
	report, err := ws.ReportSales(c.Context, items, date)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(report)
	}
	fmt.Printf("reported %d line(s) for %s, total %s\n", len(report.Items), report.Date.Format(time.DateOnly), service.SalesTotal(report.Items).StringFixed(2))
	return nil
}

func runCalendar(c *cli.Context) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}
	year, month, err := analytics.ParseMonth(c.String("month"), time.Now())
	if err != nil {
		return err
	}
	cal, err := appFrom(c).Workspace.SalesCalendar(c.Context, a[0], year, month)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(cal)
	}
	w := table()
	fmt.Fprintln(w, "DAY\tSALES\tQTY\tAMOUNT")
	for _, d := range analytics.ActiveDays(*cal) {
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\n", d.Day, len(d.Sales), d.TotalQuantity, d.TotalAmount.StringFixed(2))
	}
	return w.Flush()
}

func runInventory(c *cli.Context) error {
	ws := appFrom(c).Workspace
	if _, err := ws.EnterInventory(c.Context); err != nil {
		return err
	}
	for _, v := range c.StringSlice("set") {
		it, err := parseItem(v)
		if err != nil {
			return err
		}
		if err := ws.SetOnHand(c.Context, it.ProductID, it.Quantity); err != nil {
			return err
		}
	}

	if c.Bool("low") {
		low := ws.LowStock()
		if c.Bool("json") {
			return printJSON(low)
		}
		w := table()
		fmt.Fprintln(w, "ID\tNAME\tSTOCK\tSTATUS")
		for _, p := range low {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", p.ID, p.Name, p.Stock, domain.StockStatusOf(p.Stock))
		}
		return w.Flush()
	}

	lines := ws.InventoryLines()
	if c.Bool("json") {
		return printJSON(lines)
	}
	w := table()
	fmt.Fprintln(w, "ID\tNAME\tON HAND\tSTATUS")
	for _, l := range lines {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", l.Product.ID, l.Product.Name, l.OnHand, l.Status)
	}
	return w.Flush()
}

func runDistributorsList(c *cli.Context) error {
	ds, err := appFrom(c).Workspace.Distributors(c.Context)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(ds)
	}
	w := table()
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSTATUS")
	for _, d := range ds {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.ID, d.Name, d.Email, strings.ToUpper(string(d.Status)))
	}
	return w.Flush()
}

func runDistributorStatus(c *cli.Context) error {
	a, err := args(c, 2)
	if err != nil {
		return err
	}
	if err := appFrom(c).Workspace.SetDistributorStatus(c.Context, a[0], a[1]); err != nil {
		return err
	}
	fmt.Printf("distributor %s is now %s\n", a[0], a[1])
	return nil
}
