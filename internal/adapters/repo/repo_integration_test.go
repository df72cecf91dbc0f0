package repo_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	r "github.com/metkashop/metka-miniapp/internal/adapters/repo"
	app "github.com/metkashop/metka-miniapp/internal/app/orders"
	promoapp "github.com/metkashop/metka-miniapp/internal/app/promo"
	"github.com/metkashop/metka-miniapp/internal/domain/catalog"
	"github.com/metkashop/metka-miniapp/internal/logging"
)

func TestMain(m *testing.M) {
	logging.InitLogger()
	os.Exit(m.Run())
}

/* ---------- setup helpers ---------- */

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	// Если задан TEST_PG_DSN — используем его (локальный Postgres)
	if dsn := os.Getenv("TEST_PG_DSN"); dsn != "" {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			t.Fatalf("pgxpool.New: %v", err)
		}
		t.Cleanup(func() { pool.Close() })
		applyMigrations(t, pool)
		return pool
	}

	// Иначе — поднимем Postgres через testcontainers
	pgC, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("shop"),
		postgres.WithUsername("user"),
		postgres.WithPassword("pass"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable&pool_max_conns=5")
	if err != nil {
		t.Fatalf("conn string: %v", err)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("pgxpool.New: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	applyMigrations(t, pool)
	return pool
}

func applyMigrations(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	path := filepath.Join("testdata", "001_init.sql")
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	for _, stmt := range strings.Split(string(b), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			t.Fatalf("apply migration: %v\nstmt: %s", err, stmt)
		}
	}
}

func sampleOrder(uid string) catalog.Order {
	return catalog.Order{
		OrderUID:     uid,
		CustomerName: "Иван Иванов",
		Phone:        "+79000000000",
		Address:      "443001, Самара, ул. Куйбышева, 92",
		PromoCode:    "WELCOME10",
		Subtotal:     4500,
		Discount:     450,
		DeliveryCost: 280,
		Total:        4330,
		DateCreated:  time.Now().UTC().Truncate(time.Second),
		Items: []catalog.OrderItem{
			{ProductID: 1, Art: "MTK-001", Name: "Футболка", Size: "M", Price: 2000, WeightGrams: 250},
			{ProductID: 2, Art: "MTK-002", Name: "Худи", Size: "L", Price: 2500, WeightGrams: 600},
		},
	}
}

/* ---------- tests ---------- */

func TestOrderCreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	pool := setupPool(t)
	store := r.NewStore(pool)
	ctx := context.Background()

	want := sampleOrder("itest-order-1")
	if _, err := store.CreateOrder(ctx, want); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	got, err := store.GetOrder(ctx, want.OrderUID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if got.OrderUID != want.OrderUID || got.Total != want.Total || len(got.Items) != len(want.Items) {
		t.Fatalf("round trip mismatch: got %+v", got)
	}
	if got.Items[0].Art != "MTK-001" {
		t.Fatalf("unexpected first item: %+v", got.Items[0])
	}
}

func TestGetOrderNotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	pool := setupPool(t)
	store := r.NewStore(pool)

	_, err := store.GetOrder(context.Background(), "no-such-order")
	if err != app.ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestPromoFindAndSpend(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	pool := setupPool(t)
	store := r.NewStore(pool)
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO promo_codes (code, kind, value, max_uses, used_count, active)
		VALUES ('ITEST10', 'percent', 10, 5, 0, true)
		ON CONFLICT (code) DO UPDATE SET used_count = 0`)
	if err != nil {
		t.Fatalf("seed promo: %v", err)
	}

	p, err := store.FindPromo(ctx, "ITEST10")
	if err != nil {
		t.Fatalf("FindPromo: %v", err)
	}
	if p.Value != 10 || p.MaxUses != 5 {
		t.Fatalf("unexpected promo: %+v", p)
	}

	if err := store.SpendPromo(ctx, "ITEST10"); err != nil {
		t.Fatalf("SpendPromo: %v", err)
	}
	p, err = store.FindPromo(ctx, "ITEST10")
	if err != nil {
		t.Fatalf("FindPromo after spend: %v", err)
	}
	if p.UsedCount != 1 {
		t.Fatalf("want used_count=1, got %d", p.UsedCount)
	}

	_, err = store.FindPromo(ctx, "MISSING")
	if err != promoapp.ErrNotFound {
		t.Fatalf("want promo ErrNotFound, got %v", err)
	}
}

func TestListProducts(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	pool := setupPool(t)
	store := r.NewStore(pool)
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO products (art, product_name, price, sizes, weight_grams, active)
		VALUES ('MTK-001', 'Футболка', 2000, 'S,M,L', 250, true),
		       ('MTK-OFF', 'Снятый товар', 1000, NULL, NULL, false)`)
	if err != nil {
		t.Fatalf("seed products: %v", err)
	}

	list, err := store.ListProducts(ctx)
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	for _, p := range list {
		if !p.Active {
			t.Fatalf("inactive product in listing: %+v", p)
		}
	}
	if len(list) == 0 {
		t.Fatal("expected at least one active product")
	}
}
