package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	app "github.com/metkashop/metka-miniapp/internal/app/delivery"
	domain "github.com/metkashop/metka-miniapp/internal/domain/delivery"
)

const (
	maxCities       = 7
	maxPickupPoints = 100
	// Наценка за обработку поверх тарифа перевозчика, руб.
	handlingSurcharge = 30
	defaultPeriodDays = 3
	fallbackWeight    = 300
)

// Client — типизированная обертка над API перевозчика: поиск городов,
// список ПВЗ, калькулятор тарифа. Все запросы идут с bearer-токеном.
type Client struct {
	baseURL      string
	fromCityCode int
	tokens       TokenSource
	httpClient   *http.Client
}

type Config struct {
	BaseURL      string
	FromCityCode int
	HTTPTimeout  time.Duration
}

func NewClient(cfg Config, tokens TokenSource) *Client {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:      cfg.BaseURL,
		fromCityCode: cfg.FromCityCode,
		tokens:       tokens,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// SearchCities ищет города по имени. Запрос короче двух символов не уходит
// наверх и дает пустой список.
func (c *Client) SearchCities(ctx context.Context, query string) ([]domain.CityRef, error) {
	if len([]rune(query)) < 2 {
		return []domain.CityRef{}, nil
	}

	q := url.Values{}
	q.Set("city", query)
	q.Set("country_codes", "RU")
	q.Set("size", strconv.Itoa(maxCities))

	var dtos []cityDTO
	if err := c.getJSON(ctx, "/location/cities?"+q.Encode(), &dtos); err != nil {
		return nil, err
	}

	cities := make([]domain.CityRef, 0, len(dtos))
	for _, d := range dtos {
		cities = append(cities, domain.CityRef{Code: d.Code, Name: d.City, Region: d.Region})
	}
	if len(cities) > maxCities {
		cities = cities[:maxCities]
	}
	return cities, nil
}

// ListPickupPoints отдает до 100 ПВЗ офисного типа для города. DistanceKm
// остается незаполненным до ранжирования.
func (c *Client) ListPickupPoints(ctx context.Context, cityCode int) ([]domain.PickupPoint, error) {
	q := url.Values{}
	q.Set("city_code", strconv.Itoa(cityCode))
	q.Set("type", "PVZ")
	q.Set("size", strconv.Itoa(maxPickupPoints))

	var dtos []pointDTO
	if err := c.getJSON(ctx, "/deliverypoints?"+q.Encode(), &dtos); err != nil {
		return nil, err
	}

	points := make([]domain.PickupPoint, 0, len(dtos))
	for _, d := range dtos {
		kind := domain.PointOffice
		if d.Type == "POSTAMAT" {
			kind = domain.PointLocker
		}
		points = append(points, domain.PickupPoint{
			Code:      d.Code,
			Address:   d.Location.Address,
			WorkHours: d.WorkTime,
			Kind:      kind,
			Coordinates: domain.Coordinates{
				Lat: d.Location.Latitude,
				Lon: d.Location.Longitude,
			},
		})
	}
	return points, nil
}

// CalculateTariff считает стоимость и срок по одному тарифу. Ответ без
// итоговой суммы — не ошибка, а (nil, nil): "тариф недоступен".
// Стоимость округляется вверх до десятков и увеличивается на наценку.
func (c *Client) CalculateTariff(ctx context.Context, tariffCode, toCityCode int, parcel domain.CartParcel, pvzCode string) (*domain.TariffQuote, error) {
	weight := parcel.WeightGrams
	if weight <= 0 {
		weight = fallbackWeight
	}
	body := tariffRequest{
		TariffCode:    tariffCode,
		DeclaredValue: parcel.DeclaredValue,
		FromLocation:  cityLocation{Code: c.fromCityCode},
		ToLocation:    tariffLocation{Code: toCityCode, DeliveryPoint: pvzCode},
		Packages:      []tariffPackage{{
			Weight: weight,
			Length: parcel.Dimensions.LengthCm,
			Width:  parcel.Dimensions.WidthCm,
			Height: parcel.Dimensions.HeightCm,
		}},
	}

	var dto tariffDTO
	if err := c.postJSON(ctx, "/calculator/tariff", body, &dto); err != nil {
		return nil, err
	}
	if dto.TotalSum == nil {
		return nil, nil
	}

	cost := int64(math.Ceil(*dto.TotalSum/10))*10 + handlingSurcharge
	days := defaultPeriodDays
	if dto.PeriodMin != nil {
		days = *dto.PeriodMin
	}
	return &domain.TariffQuote{TariffCode: tariffCode, Cost: cost, EstimatedDays: days}, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	token, err := c.tokens.Token(req.Context())
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", app.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", app.ErrUpstream, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", app.ErrUpstream, err)
	}
	return nil
}
