package validation

import (
	"errors"

	"github.com/metkashop/metka-miniapp/internal/domain/catalog"
)

func IsValidOrder(order catalog.Order) error {
	if err := validateOrderFields(order); err != nil {
		return err
	}
	return isValidItems(order.Items)
}

func validateOrderFields(order catalog.Order) error {
	if order.CustomerName == "" {
		return errors.New("customer name is required")
	}
	if order.Phone == "" {
		return errors.New("phone is required")
	}
	if order.Address == "" && order.PvzCode == "" {
		return errors.New("address or pvz code is required")
	}
	return nil
}
