package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	promoapp "github.com/metkashop/metka-miniapp/internal/app/promo"
	"github.com/metkashop/metka-miniapp/internal/logging"
)

type promoCheckRequest struct {
	Code     string `json:"code"`
	Subtotal int64  `json:"subtotal"`
}

type promoCheckResponse struct {
	Valid    bool   `json:"valid"`
	Reason   string `json:"reason,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Value    int64  `json:"value,omitempty"`
	Discount int64  `json:"discount,omitempty"`
	Total    int64  `json:"total,omitempty"`
}

// CheckPromo проверяет промокод для корзины. Невалидный код — обычный ответ
// со структурированной причиной, не ошибка HTTP.
func (h *ShopHandlers) CheckPromo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	var req promoCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	d, err := h.promos.Validate(r.Context(), code, time.Now().UTC())
	if err != nil {
		logging.LogError("promo check failed", err, logrus.Fields{"method": "CheckPromo", "code": code})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !d.Valid {
		writeJSON(w, http.StatusOK, promoCheckResponse{Valid: false, Reason: string(d.Reason)})
		return
	}

	discount := promoapp.Discount(d, req.Subtotal)
	writeJSON(w, http.StatusOK, promoCheckResponse{
		Valid:    true,
		Kind:     string(d.Kind),
		Value:    d.Value,
		Discount: discount,
		Total:    req.Subtotal - discount,
	})
}
