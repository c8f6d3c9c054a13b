// Package main provides a CLI tool for seeding a demo tenant.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"savdo/internal/core/id"
	"savdo/internal/core/types"
	"savdo/internal/infrastructure/config"
	"savdo/internal/infrastructure/storage/postgres"
	"savdo/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{Level: "info", Development: true})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("failed to load configuration", "error", err)
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.Database.DSN()))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	tenantID, err := seedTenant(ctx, pool)
	if err != nil {
		log.Fatalw("failed to seed tenant", "error", err)
	}
	log.Infow("demo tenant ready", "tenant_id", tenantID)

	if err := seedCatalog(ctx, pool, tenantID); err != nil {
		log.Fatalw("failed to seed catalog", "error", err)
	}

	log.Info("seeding completed successfully")
}

func seedTenant(ctx context.Context, pool *postgres.Pool) (id.ID, error) {
	name := os.Getenv("SEED_TENANT_NAME")
	if name == "" {
		name = "demo"
	}

	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM tenants WHERE name = $1`, name,
	).Scan(&existingID)
	if err == nil {
		return existingID, nil
	}

	tenantID := id.New()
	_, err = pool.Pool.Exec(ctx,
		`INSERT INTO tenants (id, name) VALUES ($1, $2)`,
		tenantID, name,
	)
	if err != nil {
		return id.Nil(), fmt.Errorf("insert tenant: %w", err)
	}
	return tenantID, nil
}

type seedProduct struct {
	name     string
	sku      string
	stock    int64
	cost     types.Money
	price    types.Money
	minStock int64
}

type seedParty struct {
	name  string
	phone string
}

func seedCatalog(ctx context.Context, pool *postgres.Pool, tenantID id.ID) error {
	var count int
	if err := pool.Pool.QueryRow(ctx,
		`SELECT count(*) FROM products WHERE tenant_id = $1`, tenantID,
	).Scan(&count); err != nil {
		return fmt.Errorf("check existing catalog: %w", err)
	}
	if count > 0 {
		return nil
	}

	products := []seedProduct{
		{"Osh guruch 1kg", "RICE-1", 500, types.MustMoney("9000"), types.MustMoney("12000"), 50},
		{"Zig'ir yog'i 1L", "OIL-1", 300, types.MustMoney("18000"), types.MustMoney("24000"), 30},
		{"Un 2kg", "FLOUR-2", 400, types.MustMoney("11000"), types.MustMoney("15000"), 40},
		{"Shakar 1kg", "SUGAR-1", 600, types.MustMoney("10000"), types.MustMoney("13000"), 60},
		{"Choy 250g", "TEA-250", 200, types.MustMoney("14000"), types.MustMoney("20000"), 20},
	}

	for _, p := range products {
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO products (tenant_id, id, name, sku, stock, cost_price, price, min_stock)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (tenant_id, id) DO NOTHING`,
			tenantID, id.New(), p.name, p.sku, p.stock, p.cost, p.price, p.minStock,
		)
		if err != nil {
			return fmt.Errorf("insert product %s: %w", p.sku, err)
		}
	}

	dealers := []seedParty{
		{"Karim aka do'koni", "+998901234567"},
		{"Chilonzor savdo nuqtasi", "+998907654321"},
	}
	for _, d := range dealers {
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO dealers (tenant_id, id, name, phone)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (tenant_id, id) DO NOTHING`,
			tenantID, id.New(), d.name, d.phone,
		)
		if err != nil {
			return fmt.Errorf("insert dealer %s: %w", d.name, err)
		}
	}

	customers := []seedParty{
		{"Aziza Rahimova", "+998933334455"},
		{"Bobur Olimov", "+998935556677"},
	}
	for _, c := range customers {
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO customers (tenant_id, id, name, phone)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (tenant_id, id) DO NOTHING`,
			tenantID, id.New(), c.name, c.phone,
		)
		if err != nil {
			return fmt.Errorf("insert customer %s: %w", c.name, err)
		}
	}

	return nil
}
