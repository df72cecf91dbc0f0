package delivery

import (
	"context"

	domain "github.com/metkashop/metka-miniapp/internal/domain/delivery"
)

type CitySearcher interface {
	SearchCities(ctx context.Context, query string) ([]domain.CityRef, error)
}

type PickupPointLister interface {
	ListPickupPoints(ctx context.Context, cityCode int) ([]domain.PickupPoint, error)
}

type TariffCalculator interface {
	// CalculateTariff возвращает (nil, nil), если перевозчик не дал
	// стоимость по тарифу — для вызывающего это "тариф недоступен".
	CalculateTariff(ctx context.Context, tariffCode, toCityCode int, parcel domain.CartParcel, pvzCode string) (*domain.TariffQuote, error)
}

type Carrier interface {
	CitySearcher
	PickupPointLister
	TariffCalculator
}

type Geocoder interface {
	// Geocode возвращает (nil, nil), когда подсказчик не нашел адрес или
	// у подсказки нет координат. Это не ошибка: ранжирование деградирует.
	Geocode(ctx context.Context, fullAddress string) (*domain.Coordinates, error)
	SuggestStreets(ctx context.Context, city, query string) ([]string, error)
}

// PointsCache хранит списки ПВЗ по коду города.
type PointsCache interface {
	Get(cityCode int) ([]domain.PickupPoint, error)
	Set(cityCode int, points []domain.PickupPoint) error
}
