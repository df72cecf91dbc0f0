package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/metkashop/metka-miniapp/internal/app/orders"
	"github.com/metkashop/metka-miniapp/internal/domain/catalog"
	"github.com/metkashop/metka-miniapp/internal/logging"
)

type placeOrderRequest struct {
	Name      string           `json:"name"`
	Phone     string           `json:"phone"`
	Address   string           `json:"address"`
	PvzCode   string           `json:"pvz_code,omitempty"`
	PromoCode string           `json:"promo_code,omitempty"`
	Items     []placeOrderItem `json:"items"`
}

type placeOrderItem struct {
	ProductID int64  `json:"product_id"`
	Size      string `json:"size,omitempty"`
}

type placeOrderResponse struct {
	OrderUID     string `json:"order_uid"`
	Subtotal     int64  `json:"subtotal"`
	Discount     int64  `json:"discount"`
	DeliveryCost int64  `json:"delivery_cost"`
	Total        int64  `json:"total"`
}

func (h *ShopHandlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logging.LogError("Error decoding request body", err, logrus.Fields{"method": "PlaceOrder"})
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	o := catalog.Order{
		CustomerName: req.Name,
		Phone:        req.Phone,
		Address:      req.Address,
		PvzCode:      req.PvzCode,
		PromoCode:    req.PromoCode,
		Items:        make([]catalog.OrderItem, 0, len(req.Items)),
	}
	// Имя и цена позиций подставляются из каталога при оформлении,
	// от клиента достаточно идентификатора и размера.
	for _, it := range req.Items {
		o.Items = append(o.Items, catalog.OrderItem{ProductID: it.ProductID, Size: it.Size})
	}

	created, err := h.orders.PlaceOrder(r.Context(), o)
	if err != nil {
		if errors.Is(err, orders.ErrInvalidData) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logging.LogError("Error placing order", err, logrus.Fields{"method": "PlaceOrder"})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Location", "/orders/"+created.OrderUID)
	logging.LogInfo("Order placed", logrus.Fields{"method": "PlaceOrder", "order_uid": created.OrderUID, "total": created.Total})
	writeJSON(w, http.StatusCreated, placeOrderResponse{
		OrderUID:     created.OrderUID,
		Subtotal:     created.Subtotal,
		Discount:     created.Discount,
		DeliveryCost: created.DeliveryCost,
		Total:        created.Total,
	})
}

func (h *ShopHandlers) GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		logging.LogError("Internal server error while fetching order", err, logrus.Fields{"method": "GetOrderHandler", "id": id})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *ShopHandlers) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.orders.ListProducts(r.Context())
	if err != nil {
		logging.LogError("Error listing products", err, logrus.Fields{"method": "ListProductsHandler"})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, list)
}
