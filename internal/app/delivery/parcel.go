package delivery

import (
	"github.com/metkashop/metka-miniapp/internal/domain/catalog"
	domain "github.com/metkashop/metka-miniapp/internal/domain/delivery"
)

const defaultItemWeightGrams = 300

// Габариты фирменной упаковки, см.
var defaultPackage = domain.Dimensions{LengthCm: 30, WidthCm: 40, HeightCm: 3}

// ParcelFromItems собирает посылку из позиций корзины: вес суммируется
// (300 г на позицию, если вес не указан), объявленная ценность равна сумме цен.
func ParcelFromItems(items []catalog.OrderItem) domain.CartParcel {
	p := domain.CartParcel{Dimensions: defaultPackage}
	for _, it := range items {
		w := it.WeightGrams
		if w <= 0 {
			w = defaultItemWeightGrams
		}
		p.WeightGrams += w
		p.DeclaredValue += it.Price
	}
	return p
}
