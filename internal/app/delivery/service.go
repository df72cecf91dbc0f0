package delivery

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/metkashop/metka-miniapp/internal/address"
	domain "github.com/metkashop/metka-miniapp/internal/domain/delivery"
	"github.com/metkashop/metka-miniapp/internal/geo"
	"github.com/metkashop/metka-miniapp/internal/logging"
)

const (
	maxRankedPoints = 20
	// Дистанция-заглушка, когда геокодер не нашел адрес: ПВЗ всё равно
	// отдаются, просто без осмысленного порядка.
	unknownDistanceKm = 999
)

// QuoteService превращает свободный адрес или выбранный город в ранжированный
// список ПВЗ и в стоимость/срок доставки.
type QuoteService struct {
	carrier   Carrier
	geocoder  Geocoder
	extractor address.CityExtractor
	cache     PointsCache
}

func NewQuoteService(carrier Carrier, geocoder Geocoder, extractor address.CityExtractor, cache PointsCache) *QuoteService {
	return &QuoteService{carrier: carrier, geocoder: geocoder, extractor: extractor, cache: cache}
}

// RankPickupPoints возвращает до 20 ПВЗ города из адреса, отсортированных по
// удаленности от самого адреса. Промах геокодера не ошибка: все точки получают
// дистанцию 999 и исходный порядок перевозчика сохраняется.
func (s *QuoteService) RankPickupPoints(ctx context.Context, fullAddress string) ([]domain.PickupPoint, error) {
	cityName, ok := s.extractor.ExtractCity(fullAddress)
	if !ok {
		return nil, ErrCityNotResolved
	}

	cities, err := s.carrier.SearchCities(ctx, cityName)
	if err != nil {
		return nil, err
	}
	if len(cities) == 0 {
		return nil, ErrCityNotFound
	}
	// Берем первый результат поиска без уточнения региона — осознанное
	// упрощение, одноименные города разных регионов не различаются.
	city := cities[0]

	coords, err := s.geocoder.Geocode(ctx, fullAddress)
	if err != nil {
		logging.LogError("geocode failed, ranking degraded", err, logrus.Fields{"method": "RankPickupPoints"})
		coords = nil
	}

	points, err := s.listPoints(ctx, city.Code)
	if err != nil {
		return nil, err
	}

	ranked := make([]domain.PickupPoint, len(points))
	copy(ranked, points)
	for i := range ranked {
		if coords == nil {
			ranked[i].DistanceKm = unknownDistanceKm
			continue
		}
		ranked[i].DistanceKm = geo.DistanceKm(*coords, ranked[i].Coordinates)
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].DistanceKm < ranked[j].DistanceKm })
	if len(ranked) > maxRankedPoints {
		ranked = ranked[:maxRankedPoints]
	}

	logging.LogInfo("pickup points ranked", logrus.Fields{
		"method":    "RankPickupPoints",
		"city":      city.Name,
		"city_code": city.Code,
		"count":     len(ranked),
		"geocoded":  coords != nil,
	})
	return ranked, nil
}

// EstimateDelivery перебирает фиксированный набор тарифов и выбирает
// действующий. С указанным pvzCode (оформление заказа) возвращается первый
// успешный тариф; без него (оценка в корзине) — самый дешевый из успешных,
// причем срок берется из той же котировки, что и цена.
func (s *QuoteService) EstimateDelivery(ctx context.Context, cityCode int, parcel domain.CartParcel, pvzCode string) (domain.TariffQuote, error) {
	var quotes []domain.TariffQuote
	for _, tariff := range domain.TariffSweep {
		q, err := s.carrier.CalculateTariff(ctx, tariff, cityCode, parcel, pvzCode)
		if err != nil {
			// Сбой одного тарифа не сбой оценки: собираем успешные,
			// неуспешные молча пропускаем.
			logging.LogDebug("tariff skipped", logrus.Fields{"method": "EstimateDelivery", "tariff": tariff, "error": err.Error()})
			continue
		}
		if q == nil {
			continue
		}
		quotes = append(quotes, *q)
		if pvzCode != "" {
			// Точка выдачи уже выбрана — достаточно первого тарифа,
			// который ее обслуживает.
			break
		}
	}
	if len(quotes) == 0 {
		return domain.TariffQuote{}, ErrUnavailable
	}

	best := quotes[0]
	for _, q := range quotes[1:] {
		if q.Cost < best.Cost {
			best = q
		}
	}

	logging.LogInfo("delivery estimated", logrus.Fields{
		"method":    "EstimateDelivery",
		"city_code": cityCode,
		"tariff":    best.TariffCode,
		"cost":      best.Cost,
		"days":      best.EstimatedDays,
	})
	return best, nil
}

// QuoteForAddress — оценка доставки по свободному адресу: город извлекается
// из адреса и резолвится у перевозчика, дальше обычный перебор тарифов.
func (s *QuoteService) QuoteForAddress(ctx context.Context, fullAddress string, parcel domain.CartParcel, pvzCode string) (domain.TariffQuote, error) {
	cityName, ok := s.extractor.ExtractCity(fullAddress)
	if !ok {
		return domain.TariffQuote{}, ErrCityNotResolved
	}
	cities, err := s.carrier.SearchCities(ctx, cityName)
	if err != nil {
		return domain.TariffQuote{}, err
	}
	if len(cities) == 0 {
		return domain.TariffQuote{}, ErrCityNotFound
	}
	return s.EstimateDelivery(ctx, cities[0].Code, parcel, pvzCode)
}

// SearchCities — проксирование поиска города для автокомплита на витрине.
func (s *QuoteService) SearchCities(ctx context.Context, query string) ([]domain.CityRef, error) {
	return s.carrier.SearchCities(ctx, query)
}

// SuggestStreets — подсказки улиц в рамках выбранного города.
func (s *QuoteService) SuggestStreets(ctx context.Context, city, query string) ([]string, error) {
	return s.geocoder.SuggestStreets(ctx, city, query)
}

func (s *QuoteService) listPoints(ctx context.Context, cityCode int) ([]domain.PickupPoint, error) {
	if s.cache != nil {
		if points, err := s.cache.Get(cityCode); err == nil {
			return points, nil
		}
	}
	points, err := s.carrier.ListPickupPoints(ctx, cityCode)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.Set(cityCode, points)
	}
	return points, nil
}
