package promo

import (
	"math"

	domain "github.com/metkashop/metka-miniapp/internal/domain/promo"
)

// Discount считает размер скидки по решению валидатора: процент округляется
// до ближайшего целого, фиксированная скидка не превышает стоимость корзины.
// Итог никогда не уходит в минус.
func Discount(d Decision, subtotal int64) int64 {
	if !d.Valid || d.Value <= 0 || subtotal <= 0 {
		return 0
	}
	switch d.Kind {
	case domain.KindPercent:
		return int64(math.Round(float64(subtotal) * float64(d.Value) / 100))
	case domain.KindFixed:
		if d.Value > subtotal {
			return subtotal
		}
		return d.Value
	}
	return 0
}
