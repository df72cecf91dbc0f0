package validation

import (
	"errors"

	"github.com/metkashop/metka-miniapp/internal/domain/catalog"
)

func isValidItems(items []catalog.OrderItem) error {
	if len(items) == 0 {
		return errors.New("items must not be empty")
	}
	for _, item := range items {
		if err := isValidItem(item); err != nil {
			return err
		}
	}
	return nil
}

func isValidItem(item catalog.OrderItem) error {
	if item.ProductID <= 0 {
		return errors.New("product id must be set")
	}
	if item.Name == "" {
		return errors.New("name must not be empty")
	}
	if item.Price <= 0 {
		return errors.New("price must be more than zero")
	}
	return nil
}
