package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"github.com/jcmexdev/broaster-orders/internal/core/domain"
	"github.com/jcmexdev/broaster-orders/internal/infra/adapters/orderapi"
	"github.com/jcmexdev/broaster-orders/internal/pkg/config"
	"github.com/jcmexdev/broaster-orders/internal/pkg/telemetry"
	"github.com/jcmexdev/broaster-orders/internal/storefront"
)

func main() {
	cfg, err := config.Load("storefront")
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	apiURL := pflag.String("api", cfg.APIBaseURL, "order API base URL")
	timeout := pflag.Duration("timeout", cfg.RequestTimeout, "per-request timeout")
	fee := pflag.String("delivery-fee", cfg.DeliveryFee.String(), "flat delivery fee added to every order")
	logLevel := pflag.String("log-level", "warn", "log level for the session")
	pflag.Parse()

	deliveryFee, err := decimal.NewFromString(*fee)
	if err != nil || deliveryFee.IsNegative() {
		fmt.Fprintf(os.Stderr, "invalid --delivery-fee %q\n", *fee)
		os.Exit(2)
	}
	telemetry.InitLogger(*logLevel)

	sf := storefront.New(domain.DefaultCatalog(), orderapi.NewClient(*apiURL, *timeout), deliveryFee)
	sh := &shell{sf: sf, out: os.Stdout}
	if err := sh.run(context.Background(), os.Stdin); err != nil {
		fmt.Fprintln(os.Stderr, "read error:", err)
		os.Exit(1)
	}
}
