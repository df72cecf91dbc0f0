package orders

import (
	"context"

	"github.com/metkashop/metka-miniapp/internal/domain/catalog"
)

type OrderCreator interface {
	CreateOrder(ctx context.Context, o catalog.Order) (catalog.Order, error)
}

type OrderGetter interface {
	GetOrder(ctx context.Context, uid string) (catalog.Order, error)
}

type OrderRepo interface {
	OrderCreator
	OrderGetter
}

type ProductRepo interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	GetProducts(ctx context.Context, ids []int64) ([]catalog.Product, error)
}
