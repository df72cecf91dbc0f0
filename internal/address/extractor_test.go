package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCityFullAddress(t *testing.T) {
	e := NewRussianExtractor()

	city, ok := e.ExtractCity("123456, Московская область, г. Самара, ул. Ленина, 10")
	require.True(t, ok)
	assert.Equal(t, "г. Самара", city)
}

func TestExtractCityStreetFirst(t *testing.T) {
	e := NewRussianExtractor()

	_, ok := e.ExtractCity("ул. Мира, 5")
	assert.False(t, ok)
}

func TestExtractCitySkipsPostalAndRegion(t *testing.T) {
	e := NewRussianExtractor()

	cases := []struct {
		addr string
		want string
	}{
		{"443001, Самара, ул. Куйбышева, 92", "Самара"},
		{"Краснодарский край, Сочи, улица Навагинская, 3", "Сочи"},
		{"Респ Татарстан, Казань, пр-кт Победы, 1", "Казань"},
		{"Казань", "Казань"},
	}
	for _, c := range cases {
		city, ok := e.ExtractCity(c.addr)
		require.True(t, ok, c.addr)
		assert.Equal(t, c.want, city, c.addr)
	}
}

func TestExtractCityEmpty(t *testing.T) {
	e := NewRussianExtractor()

	_, ok := e.ExtractCity("")
	assert.False(t, ok)

	_, ok = e.ExtractCity("630000, Новосибирская область")
	assert.False(t, ok)
}
