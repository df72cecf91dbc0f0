package catalog

import "time"

type Order struct {
	OrderUID     string      `json:"order_uid"`
	CustomerName string      `json:"customer_name"`
	Phone        string      `json:"phone"`
	Address      string      `json:"address"`
	PvzCode      string      `json:"pvz_code,omitempty"`
	PromoCode    string      `json:"promo_code,omitempty"`
	Subtotal     int64       `json:"subtotal"`
	Discount     int64       `json:"discount"`
	DeliveryCost int64       `json:"delivery_cost"`
	Total        int64       `json:"total"`
	DateCreated  time.Time   `json:"date_created"`
	Items        []OrderItem `json:"items"`
}

type OrderItem struct {
	ProductID   int64  `json:"product_id"`
	Art         string `json:"art"`
	Name        string `json:"name"`
	Size        string `json:"size,omitempty"`
	Price       int64  `json:"price"`
	WeightGrams int    `json:"weight_grams,omitempty"`
}
