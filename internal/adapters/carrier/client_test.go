package carrier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/metkashop/metka-miniapp/internal/app/delivery"
	domain "github.com/metkashop/metka-miniapp/internal/domain/delivery"
	"github.com/metkashop/metka-miniapp/internal/logging"
)

func TestMain(m *testing.M) {
	logging.InitLogger()
	os.Exit(m.Run())
}

type staticTokens struct{ token string }

func (s staticTokens) Token(ctx context.Context) (string, error) { return s.token, nil }

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, FromCityCode: 44}, staticTokens{token: "tok-1"})
}

/* ---------- token source ---------- */

func TestCachedTokenSourceReusesToken(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "acc", r.PostForm.Get("client_id"))
		assert.Equal(t, "sec", r.PostForm.Get("client_secret"))
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok-abc", "expires_in": 3600})
	}))
	defer srv.Close()

	ts := NewCachedTokenSource(srv.URL, "acc", "sec", srv.Client())

	for i := 0; i < 3; i++ {
		tok, err := ts.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tok-abc", tok)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCachedTokenSourceRefreshesExpired(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		// expires_in меньше запаса в 60 секунд: токен истекает сразу,
		// каждый вызов должен ходить за новым.
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-" + string(rune('0'+n)),
			"expires_in":   30,
		})
	}))
	defer srv.Close()

	ts := NewCachedTokenSource(srv.URL, "acc", "sec", srv.Client())

	first, err := ts.Token(context.Background())
	require.NoError(t, err)
	second, err := ts.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "tok-1", first)
	assert.Equal(t, "tok-2", second)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCachedTokenSourceAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	ts := NewCachedTokenSource(srv.URL, "acc", "bad", srv.Client())

	_, err := ts.Token(context.Background())
	assert.ErrorIs(t, err, app.ErrAuthFailure)
}

func TestCachedTokenSourceEmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"expires_in": 3600})
	}))
	defer srv.Close()

	ts := NewCachedTokenSource(srv.URL, "acc", "sec", srv.Client())

	_, err := ts.Token(context.Background())
	assert.ErrorIs(t, err, app.ErrAuthFailure)
}

/* ---------- city search ---------- */

func TestSearchCitiesShortQueryStaysLocal(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("запрос не должен уходить наверх")
	})

	cities, err := c.SearchCities(context.Background(), "м")
	require.NoError(t, err)
	assert.Empty(t, cities)
}

func TestSearchCities(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/location/cities", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "сам", r.URL.Query().Get("city"))
		assert.Equal(t, "RU", r.URL.Query().Get("country_codes"))
		assert.Equal(t, "7", r.URL.Query().Get("size"))
		json.NewEncoder(w).Encode([]map[string]any{
			{"code": 350, "city": "Самара", "region": "Самарская область"},
			{"code": 351, "city": "Самарское"},
		})
	})

	cities, err := c.SearchCities(context.Background(), "сам")
	require.NoError(t, err)
	require.Len(t, cities, 2)
	assert.Equal(t, domain.CityRef{Code: 350, Name: "Самара", Region: "Самарская область"}, cities[0])
}

func TestSearchCitiesUpstreamFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.SearchCities(context.Background(), "Самара")
	assert.ErrorIs(t, err, app.ErrUpstream)
}

/* ---------- pickup points ---------- */

func TestListPickupPoints(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/deliverypoints", r.URL.Path)
		assert.Equal(t, "350", r.URL.Query().Get("city_code"))
		assert.Equal(t, "PVZ", r.URL.Query().Get("type"))
		assert.Equal(t, "100", r.URL.Query().Get("size"))
		json.NewEncoder(w).Encode([]map[string]any{
			{
				"code":      "SAM1",
				"type":      "PVZ",
				"work_time": "Пн-Вс 10:00-20:00",
				"location":  map[string]any{"address": "ул. Ленина, 1", "latitude": 53.2, "longitude": 50.1},
			},
			{
				"code":     "SAM2",
				"type":     "POSTAMAT",
				"location": map[string]any{"address": "пр-кт Кирова, 5", "latitude": 53.25, "longitude": 50.22},
			},
		})
	})

	points, err := c.ListPickupPoints(context.Background(), 350)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, "SAM1", points[0].Code)
	assert.Equal(t, domain.PointOffice, points[0].Kind)
	assert.Equal(t, "ул. Ленина, 1", points[0].Address)
	assert.Equal(t, 53.2, points[0].Coordinates.Lat)
	assert.Equal(t, domain.PointLocker, points[1].Kind)
	assert.Zero(t, points[0].DistanceKm)
}

/* ---------- tariff ---------- */

func TestCalculateTariffRoundsUpAndAddsSurcharge(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calculator/tariff", r.URL.Path)

		var req tariffRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 136, req.TariffCode)
		assert.Equal(t, int64(4990), req.DeclaredValue)
		assert.Equal(t, 44, req.FromLocation.Code)
		assert.Equal(t, 350, req.ToLocation.Code)
		assert.Equal(t, "SAM1", req.ToLocation.DeliveryPoint)
		require.Len(t, req.Packages, 1)
		assert.Equal(t, 550, req.Packages[0].Weight)

		json.NewEncoder(w).Encode(map[string]any{"total_sum": 243.0, "period_min": 2})
	})

	parcel := domain.CartParcel{
		WeightGrams:   550,
		DeclaredValue: 4990,
		Dimensions:    domain.Dimensions{LengthCm: 30, WidthCm: 40, HeightCm: 3},
	}
	q, err := c.CalculateTariff(context.Background(), 136, 350, parcel, "SAM1")
	require.NoError(t, err)
	require.NotNil(t, q)

	// 243 -> вверх до 250, плюс наценка 30
	assert.Equal(t, int64(280), q.Cost)
	assert.Equal(t, 2, q.EstimatedDays)
	assert.Equal(t, 136, q.TariffCode)
}

func TestCalculateTariffDefaults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req tariffRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		// Нулевой вес заменяется на 300 г до отправки
		assert.Equal(t, 300, req.Packages[0].Weight)

		json.NewEncoder(w).Encode(map[string]any{"total_sum": 200.0})
	})

	q, err := c.CalculateTariff(context.Background(), 234, 350, domain.CartParcel{}, "")
	require.NoError(t, err)
	require.NotNil(t, q)

	assert.Equal(t, int64(230), q.Cost)
	assert.Equal(t, 3, q.EstimatedDays)
}

func TestCalculateTariffNoTotalMeansUnavailable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"errors": []map[string]string{{"code": "tariff_unavailable"}}})
	})

	q, err := c.CalculateTariff(context.Background(), 366, 350, domain.CartParcel{}, "")
	require.NoError(t, err)
	assert.Nil(t, q)
}
