package repo

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/metkashop/metka-miniapp/internal/app/orders"
	"github.com/metkashop/metka-miniapp/internal/domain/catalog"
	"github.com/metkashop/metka-miniapp/internal/logging"
)

const qListProducts = `
SELECT id, art, product_name, description, price, sizes, images, weight_grams, active
FROM products
WHERE active = true
ORDER BY id;
`

const qProductsByIDs = `
SELECT id, art, product_name, description, price, sizes, images, weight_grams, active
FROM products
WHERE id = ANY($1);
`

func (s *Store) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	rows, err := s.pool.Query(ctx, qListProducts)
	if err != nil {
		logging.LogError("Error listing products", err, logrus.Fields{"method": "ListProducts"})
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, orders.ErrTimeout
		}
		return nil, err
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (s *Store) GetProducts(ctx context.Context, ids []int64) ([]catalog.Product, error) {
	rows, err := s.pool.Query(ctx, qProductsByIDs, ids)
	if err != nil {
		logging.LogError("Error fetching products by ids", err, logrus.Fields{"method": "GetProducts"})
		return nil, err
	}
	defer rows.Close()

	return scanProducts(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanProducts(rows rowScanner) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, 16)
	for rows.Next() {
		var (
			p                          catalog.Product
			description, sizes, images *string
			weight                     *int
		)
		if err := rows.Scan(&p.ID, &p.Art, &p.Name, &description, &p.Price, &sizes, &images, &weight, &p.Active); err != nil {
			return nil, err
		}
		p.Description = derefStr(description)
		p.Sizes = derefStr(sizes)
		p.Images = derefStr(images)
		p.WeightGrams = derefInt(weight)
		out = append(out, p)
	}
	return out, rows.Err()
}

func derefStr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func derefI64(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
