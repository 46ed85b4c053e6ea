package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/jcmexdev/broaster-orders/internal/admin"
	"github.com/jcmexdev/broaster-orders/internal/core/domain"
	"github.com/jcmexdev/broaster-orders/internal/infra/adapters/orderapi"
	"github.com/jcmexdev/broaster-orders/internal/pkg/config"
	"github.com/jcmexdev/broaster-orders/internal/pkg/telemetry"
)

const usage = `usage:
  admin list [--api URL]
  admin set-status <tracking-code> <status> [--api URL]

statuses: Preparing, EnRoute, Delivered, Cancelled`

func main() {
	cfg, err := config.Load("admin")
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}
	telemetry.InitLogger(cfg.LogLevel)

	if len(os.Args) < 2 || (os.Args[1] != "list" && os.Args[1] != "set-status") {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	fs := pflag.NewFlagSet(os.Args[1], pflag.ExitOnError)
	apiURL := fs.String("api", cfg.APIBaseURL, "order API base URL")
	timeout := fs.Duration("timeout", cfg.RequestTimeout, "per-request timeout")
	_ = fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), *timeout+5*time.Second)
	defer cancel()

	board := admin.NewBoard(orderapi.NewClient(*apiURL, *timeout))
	if err := board.Load(ctx); err != nil {
		slog.Error("failed to load orders", "api", *apiURL, "error", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "list":
		printOrders(board.Orders())
	case "set-status":
		args := fs.Args()
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		o, err := board.SetStatus(ctx, args[0], domain.OrderStatus(args[1]))
		if err != nil {
			fmt.Fprintln(os.Stderr, describe(err))
			os.Exit(1)
		}
		fmt.Printf("%s is now %s\n", o.TrackingCode, o.Status)
	}
}

func printOrders(orders []domain.Order) {
	if len(orders) == 0 {
		fmt.Println("no orders yet")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCODE\tCUSTOMER\tPHONE\tTOTAL\tPAYMENT\tSTATUS\tDATE")
	for _, o := range orders {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			o.ID, o.TrackingCode, o.CustomerName, o.CustomerPhone,
			o.Total.StringFixed(0), o.PaymentMethod, o.Status,
			o.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	_ = w.Flush()
}

func describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		return "no order with that tracking code"
	case errors.Is(err, domain.ErrInvalidStatus):
		return "unknown status"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "that status change is not allowed: " + err.Error()
	case errors.Is(err, domain.ErrStatusConflict):
		return "the order changed meanwhile, list again and retry"
	case errors.Is(err, orderapi.ErrTransport):
		return "order API unreachable: " + err.Error()
	}
	return "status update failed: " + err.Error()
}
