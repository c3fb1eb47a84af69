package main

import (
	"context"
	"fmt"
	"os"

	configs "github.com/digitalogic/catalog/configs"
	"github.com/digitalogic/catalog/internal/audit"
	"github.com/digitalogic/catalog/internal/database/postgres"
	"github.com/digitalogic/catalog/internal/pricing"
	"github.com/digitalogic/catalog/internal/products"
	"github.com/digitalogic/catalog/internal/rates"
	"github.com/digitalogic/catalog/internal/transfer"
	"github.com/digitalogic/catalog/internal/webhooks"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app bundles the services a CLI command drives. Commands talk to the
// database directly, not to a running server.
type app struct {
	db       *pgxpool.Pool
	audit    audit.Service
	rates    rates.Service
	products products.Service
	pricing  pricing.Service
	transfer transfer.Service
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}

func newApp() (*app, error) {
	config, err := configs.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var dsn string
	if config.DatabaseURL != "" {
		dsn = config.DatabaseURL
	} else {
		dsn = fmt.Sprintf(
			"%s://%s:%s@%s:%s/%s", config.DBDriver, config.DBUser, config.DBPassword, config.DBHost, config.DBPort, config.DBName)
	}

	db, err := postgres.Init(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Warnings and errors only; command output stays clean.
	logger := zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(os.Stderr),
		zap.WarnLevel,
	))

	dispatcher := webhooks.NewDispatcher(webhooks.Config{}, logger)

	auditService := audit.NewService(audit.NewRepository(db), logger)
	ratesService := rates.NewService(rates.NewSettingsRepository(db), nil, auditService, logger)
	productRepo := products.NewRepository(db)
	productService := products.NewService(productRepo, auditService, dispatcher, logger)
	pricingService := pricing.NewService(productRepo, ratesService, auditService, dispatcher, logger)
	transferService := transfer.NewService(productService, auditService, logger)

	return &app{
		db:       db,
		audit:    auditService,
		rates:    ratesService,
		products: productService,
		pricing:  pricingService,
		transfer: transferService,
	}, nil
}

// cliContext attributes audit entries written by CLI commands.
func cliContext() context.Context {
	return audit.WithRequestInfo(context.Background(), audit.RequestInfo{
		UserID:    "cli",
		IPAddress: "127.0.0.1",
		UserAgent: "digitalogicctl",
	})
}

func main() {
	root := &cobra.Command{
		Use:           "digitalogicctl",
		Short:         "Manage the Digitalogic product catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		currencyCmd(),
		productsCmd(),
		exportCmd(),
		importCmd(),
		logsCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
