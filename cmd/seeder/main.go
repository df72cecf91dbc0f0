// cmd/seeder/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	host := getenv("DB_HOST", "127.0.0.1")
	port := getenv("DB_PORT", "5432")
	user := getenv("DB_USER", "postgres")
	pass := getenv("DB_PASSWORD", "postgres")
	db := getenv("DB_NAME", "shop_db")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, pass, host, port, db)

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("begin: %v", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	products := []struct {
		art, name, sizes string
		price            int64
		weight           int
	}{
		{"MTK-001", "Футболка «Метка»", "S,M,L,XL", 2490, 250},
		{"MTK-002", "Худи оверсайз", "M,L,XL", 4990, 650},
		{"MTK-003", "Лонгслив", "S,M,L", 2990, 300},
		{"MTK-004", "Шоппер", "", 1490, 180},
		{"MTK-005", "Кепка", "", 1990, 120},
	}
	for _, p := range products {
		if _, err := tx.Exec(ctx, `
			INSERT INTO products (art, product_name, price, sizes, weight_grams, active)
			VALUES ($1, $2, $3, NULLIF($4, ''), $5, true)`,
			p.art, p.name, p.price, p.sizes, p.weight,
		); err != nil {
			log.Fatalf("insert product %s: %v", p.art, err)
		}
	}

	until := time.Now().UTC().AddDate(0, 1, 0)
	promos := []struct {
		code, kind string
		value      int64
		maxUses    int
	}{
		{"WELCOME10", "percent", 10, 0},
		{"FIRST500", "fixed", 500, 100},
		{"DROP15", "percent", 15, 50},
	}
	for _, p := range promos {
		if _, err := tx.Exec(ctx, `
			INSERT INTO promo_codes (code, kind, value, max_uses, used_count, valid_to, active)
			VALUES ($1, $2, $3, NULLIF($4, 0), 0, $5, true)
			ON CONFLICT (code) DO NOTHING`,
			p.code, p.kind, p.value, p.maxUses, until,
		); err != nil {
			log.Fatalf("insert promo %s: %v", p.code, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("commit: %v", err)
	}
	log.Printf("seeded %d products, %d promo codes", len(products), len(promos))
}
