package orders

import (
	"strings"

	"github.com/metkashop/metka-miniapp/internal/domain/catalog"
)

// NormalizeOrder приводит пользовательский ввод к каноничному виду до
// валидации: схлопывает пробелы, промокод — в верхний регистр (поиск по
// коду регистронезависимый по соглашению).
func NormalizeOrder(o *catalog.Order) {
	if o == nil {
		return
	}

	o.CustomerName = withTrimCollapse(o.CustomerName)
	o.Phone = withTrimCollapse(o.Phone)
	o.Address = withTrimCollapse(o.Address)
	o.PvzCode = strings.TrimSpace(o.PvzCode)
	o.PromoCode = strings.ToUpper(withTrimCollapse(o.PromoCode))

	for i := range o.Items {
		o.Items[i].Name = withTrimCollapse(o.Items[i].Name)
		o.Items[i].Size = strings.TrimSpace(o.Items[i].Size)
	}
}

func withTrimCollapse(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	parts := strings.Fields(s)
	return strings.Join(parts, " ")
}
