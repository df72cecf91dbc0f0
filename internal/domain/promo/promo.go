package promo

import "time"

type DiscountKind string

const (
	KindPercent DiscountKind = "percent"
	KindFixed   DiscountKind = "fixed"
)

// PromoCode — промокод с опциональным окном действия и лимитом использований.
// MaxUses == 0 означает безлимит. UsedCount только растет: использование
// промокода не возвращается при отмене заказа.
type PromoCode struct {
	Code      string       `json:"code"`
	Kind      DiscountKind `json:"kind"`
	Value     int64        `json:"value"`
	MaxUses   int          `json:"max_uses,omitempty"`
	UsedCount int          `json:"used_count"`
	ValidFrom *time.Time   `json:"valid_from,omitempty"`
	ValidTo   *time.Time   `json:"valid_to,omitempty"`
	Active    bool         `json:"active"`
}
