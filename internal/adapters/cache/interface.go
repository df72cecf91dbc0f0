package cache

import (
	"errors"

	domain "github.com/metkashop/metka-miniapp/internal/domain/delivery"
)

var ErrMiss = errors.New("cache miss")

// PointsCache хранит списки ПВЗ по коду города: перевозчик меняет их редко,
// а каждый запрос котировки иначе тянул бы до 100 точек заново.
type PointsCache interface {
	Get(cityCode int) ([]domain.PickupPoint, error)
	Set(cityCode int, points []domain.PickupPoint) error
	Delete(cityCode int) error
}
