package delivery

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/metkashop/metka-miniapp/internal/domain/catalog"
	domain "github.com/metkashop/metka-miniapp/internal/domain/delivery"
)

func TestParcelFromItems(t *testing.T) {
	items := []catalog.OrderItem{
		{Name: "Футболка", Price: 1990, WeightGrams: 250},
		{Name: "Худи", Price: 4590}, // вес не указан — 300 г по умолчанию
	}

	p := ParcelFromItems(items)

	assert.Equal(t, 550, p.WeightGrams)
	assert.Equal(t, int64(6580), p.DeclaredValue)
	assert.Equal(t, domain.Dimensions{LengthCm: 30, WidthCm: 40, HeightCm: 3}, p.Dimensions)
}

func TestParcelFromItemsEmptyCart(t *testing.T) {
	p := ParcelFromItems(nil)

	assert.Equal(t, 0, p.WeightGrams)
	assert.Equal(t, int64(0), p.DeclaredValue)
}
