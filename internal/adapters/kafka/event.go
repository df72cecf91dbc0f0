package kafka

import "time"

type Envelope[T any] struct {
	EventType  string    `json:"event_type"`  // "order.placed"
	Version    int       `json:"version"`     // 1
	OccurredAt time.Time `json:"occurred_at"` // UTC
	EntityID   string    `json:"entity_id"`   // order_uid (дублирует key)
	Payload    T         `json:"payload"`
	Meta       Meta      `json:"meta"`
}

type Meta struct {
	Producer string `json:"producer"` // "storefront-service"
	Source   string `json:"source"`   // "http-api" | "seeder" | ...
}

// OrderPlaced — событие оформления заказа. Потребитель — уведомитель
// менеджера в этом же процессе; схема рассчитана и на внешних подписчиков.
type OrderPlaced struct {
	OrderUID  string `json:"order_uid"`
	Total     int64  `json:"total"`
	PromoCode string `json:"promo_code,omitempty"`
}
