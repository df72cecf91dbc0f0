package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	promoapp "github.com/metkashop/metka-miniapp/internal/app/promo"
	"github.com/metkashop/metka-miniapp/internal/domain/catalog"
	domain "github.com/metkashop/metka-miniapp/internal/domain/delivery"
)

type quoteService interface {
	RankPickupPoints(ctx context.Context, fullAddress string) ([]domain.PickupPoint, error)
	EstimateDelivery(ctx context.Context, cityCode int, parcel domain.CartParcel, pvzCode string) (domain.TariffQuote, error)
	SearchCities(ctx context.Context, query string) ([]domain.CityRef, error)
	SuggestStreets(ctx context.Context, city, query string) ([]string, error)
}

type orderService interface {
	PlaceOrder(ctx context.Context, o catalog.Order) (catalog.Order, error)
	GetOrder(ctx context.Context, uid string) (catalog.Order, error)
	ListProducts(ctx context.Context) ([]catalog.Product, error)
}

type promoChecker interface {
	Validate(ctx context.Context, code string, now time.Time) (promoapp.Decision, error)
}

type ShopHandlers struct {
	quotes quoteService
	orders orderService
	promos promoChecker
}

func NewShopHandlers(quotes quoteService, orders orderService, promos promoChecker) *ShopHandlers {
	return &ShopHandlers{quotes: quotes, orders: orders, promos: promos}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}
