package address

import (
	"regexp"
	"strings"
)

// CityExtractor вытаскивает название города из свободного адреса.
// Эвристика, не геокодер: для незнакомых форматов адреса может вернуть
// не тот токен или ничего.
type CityExtractor interface {
	ExtractCity(address string) (string, bool)
}

var (
	postalRe = regexp.MustCompile(`^\d+$`)
	regionRe = regexp.MustCompile(`(?i)край|область|респ|республика|автономный`)
	streetRe = regexp.MustCompile(`(?i)ул\.|улица|пр-кт|проспект|пер\.|переулок`)
)

// RussianExtractor разбирает адреса в привычном российском формате
// "индекс, регион, город, улица, дом".
type RussianExtractor struct{}

func NewRussianExtractor() *RussianExtractor { return &RussianExtractor{} }

// ExtractCity сканирует сегменты адреса слева направо: пропускает индекс и
// регион, останавливается на улице. Первый оставшийся сегмент — город.
func (RussianExtractor) ExtractCity(address string) (string, bool) {
	for _, part := range strings.Split(address, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if postalRe.MatchString(part) {
			continue // индекс
		}
		if regionRe.MatchString(part) {
			continue // регион
		}
		if streetRe.MatchString(part) {
			break // улица — город должен был идти раньше
		}
		return part, true
	}
	return "", false
}
