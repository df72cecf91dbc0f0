package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	app "github.com/metkashop/metka-miniapp/internal/app/delivery"
	"github.com/metkashop/metka-miniapp/internal/domain/catalog"
	domain "github.com/metkashop/metka-miniapp/internal/domain/delivery"
	"github.com/metkashop/metka-miniapp/internal/logging"
)

type pvzByAddressRequest struct {
	Address string `json:"address"`
}

// PvzByAddress — топ-20 ПВЗ города из адреса, по удаленности.
func (h *ShopHandlers) PvzByAddress(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	var req pvzByAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Address == "" {
		writeError(w, http.StatusBadRequest, "address is required")
		return
	}

	points, err := h.quotes.RankPickupPoints(r.Context(), req.Address)
	if err != nil {
		h.writeDeliveryError(w, "PvzByAddress", err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

type estimateRequest struct {
	CityCode int            `json:"city_code"`
	PvzCode  string         `json:"pvz_code,omitempty"`
	Items    []estimateItem `json:"items"`
}

type estimateItem struct {
	Price       int64 `json:"price"`
	WeightGrams int   `json:"weight_grams,omitempty"`
}

type estimateResponse struct {
	Available bool  `json:"available"`
	Cost      int64 `json:"cost,omitempty"`
	Days      int   `json:"days,omitempty"`
	Tariff    int   `json:"tariff,omitempty"`
}

// Estimate — стоимость и срок доставки корзины в выбранный город.
// Невозможность посчитать — не ошибка HTTP: витрина показывает
// "стоимость уточним" вместо падения оформления.
func (h *ShopHandlers) Estimate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CityCode <= 0 {
		writeError(w, http.StatusBadRequest, "city_code is required")
		return
	}

	quote, err := h.quotes.EstimateDelivery(r.Context(), req.CityCode, parcelFromEstimate(req.Items), req.PvzCode)
	if err != nil {
		if errors.Is(err, app.ErrUnavailable) {
			writeJSON(w, http.StatusOK, estimateResponse{Available: false})
			return
		}
		h.writeDeliveryError(w, "Estimate", err)
		return
	}
	writeJSON(w, http.StatusOK, estimateResponse{
		Available: true,
		Cost:      quote.Cost,
		Days:      quote.EstimatedDays,
		Tariff:    quote.TariffCode,
	})
}

// Cities — автокомплит городов, до 7 штук.
func (h *ShopHandlers) Cities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.quotes.SearchCities(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeDeliveryError(w, "Cities", err)
		return
	}
	writeJSON(w, http.StatusOK, cities)
}

// Streets — подсказки улиц в рамках города.
func (h *ShopHandlers) Streets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	city := q.Get("city")
	if city == "" {
		writeError(w, http.StatusBadRequest, "city is required")
		return
	}
	streets, err := h.quotes.SuggestStreets(r.Context(), city, q.Get("q"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, streets)
}

func (h *ShopHandlers) writeDeliveryError(w http.ResponseWriter, method string, err error) {
	fields := logrus.Fields{"method": method}
	switch {
	case errors.Is(err, app.ErrCityNotResolved):
		logging.LogInfo("city not resolved from address", fields)
		writeError(w, http.StatusBadRequest, "city not found in address")
	case errors.Is(err, app.ErrCityNotFound):
		logging.LogInfo("city unknown to carrier", fields)
		writeError(w, http.StatusNotFound, "city not found")
	case errors.Is(err, app.ErrAuthFailure):
		logging.LogError("carrier auth failure", err, fields)
		writeError(w, http.StatusBadGateway, "carrier unavailable")
	default:
		logging.LogError("delivery request failed", err, fields)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func parcelFromEstimate(items []estimateItem) domain.CartParcel {
	cart := make([]catalog.OrderItem, 0, len(items))
	for _, it := range items {
		cart = append(cart, catalog.OrderItem{Price: it.Price, WeightGrams: it.WeightGrams})
	}
	return app.ParcelFromItems(cart)
}
