package repo

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/metkashop/metka-miniapp/internal/app/orders"
	"github.com/metkashop/metka-miniapp/internal/domain/catalog"
	"github.com/metkashop/metka-miniapp/internal/logging"
)

const qInsertOrder = `
INSERT INTO orders (order_uid, customer_name, phone, address, pvz_code, promo_code,
                    subtotal, discount, delivery_cost, total, date_created)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
`

const qInsertOrderItem = `
INSERT INTO order_items (order_uid, product_id, art, item_name, item_size, price, weight_grams)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`

const qFindOrderByUID = `
SELECT
  o.order_uid,
  o.customer_name,
  o.phone,
  o.address,
  o.pvz_code,
  o.promo_code,
  o.subtotal,
  o.discount,
  o.delivery_cost,
  o.total,
  o.date_created,

  i.product_id,
  i.art,
  i.item_name,
  i.item_size,
  i.price,
  i.weight_grams
FROM orders o
LEFT JOIN order_items i ON i.order_uid = o.order_uid
WHERE o.order_uid = $1;
`

func (s *Store) CreateOrder(ctx context.Context, o catalog.Order) (catalog.Order, error) {
	logging.LogInfo("Creating order", logrus.Fields{"method": "CreateOrder", "order_uid": o.OrderUID})

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		logging.LogError("Error starting transaction", err, logrus.Fields{"method": "CreateOrder", "order_uid": o.OrderUID})
		return catalog.Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, qInsertOrder,
		o.OrderUID, o.CustomerName, o.Phone, nilIfEmpty(o.Address), nilIfEmpty(o.PvzCode), nilIfEmpty(o.PromoCode),
		o.Subtotal, o.Discount, o.DeliveryCost, o.Total, o.DateCreated,
	); err != nil {
		logging.LogError("Error inserting order", err, logrus.Fields{"method": "CreateOrder", "order_uid": o.OrderUID})
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return catalog.Order{}, orders.ErrTimeout
		}
		return catalog.Order{}, err
	}

	for _, it := range o.Items {
		if _, err := tx.Exec(ctx, qInsertOrderItem,
			o.OrderUID, it.ProductID, it.Art, it.Name, nilIfEmpty(it.Size), it.Price, it.WeightGrams,
		); err != nil {
			logging.LogError("Error inserting order item", err, logrus.Fields{"method": "CreateOrder", "order_uid": o.OrderUID, "product_id": it.ProductID})
			return catalog.Order{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		logging.LogError("Error committing order", err, logrus.Fields{"method": "CreateOrder", "order_uid": o.OrderUID})
		return catalog.Order{}, err
	}

	logging.LogInfo("Order created", logrus.Fields{"method": "CreateOrder", "order_uid": o.OrderUID})
	return o, nil
}

func (s *Store) GetOrder(ctx context.Context, uid string) (catalog.Order, error) {
	rows, err := s.pool.Query(ctx, qFindOrderByUID, uid)
	if err != nil {
		logging.LogError("Error executing query to fetch order", err, logrus.Fields{"method": "GetOrder", "order_uid": uid})
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return catalog.Order{}, orders.ErrTimeout
		}
		return catalog.Order{}, err
	}
	defer rows.Close()

	var (
		found bool
		out   catalog.Order
	)
	for rows.Next() {
		found = true

		var (
			orderUID, customerName, phone           string
			address, pvzCode, promoCode             *string
			subtotal, discount, deliveryCost, total int64
			dateCreated                             time.Time

			iProductID         *int64
			iArt, iName, iSize *string
			iPrice             *int64
			iWeight            *int
		)
		if err := rows.Scan(
			&orderUID, &customerName, &phone, &address, &pvzCode, &promoCode,
			&subtotal, &discount, &deliveryCost, &total, &dateCreated,
			&iProductID, &iArt, &iName, &iSize, &iPrice, &iWeight,
		); err != nil {
			logging.LogError("Error scanning row for order", err, logrus.Fields{"method": "GetOrder", "order_uid": uid})
			return catalog.Order{}, err
		}

		if out.OrderUID == "" {
			out = catalog.Order{
				OrderUID:     orderUID,
				CustomerName: customerName,
				Phone:        phone,
				Address:      derefStr(address),
				PvzCode:      derefStr(pvzCode),
				PromoCode:    derefStr(promoCode),
				Subtotal:     subtotal,
				Discount:     discount,
				DeliveryCost: deliveryCost,
				Total:        total,
				DateCreated:  dateCreated,
				Items:        make([]catalog.OrderItem, 0, 4),
			}
		}

		if iProductID != nil {
			out.Items = append(out.Items, catalog.OrderItem{
				ProductID:   *iProductID,
				Art:         derefStr(iArt),
				Name:        derefStr(iName),
				Size:        derefStr(iSize),
				Price:       derefI64(iPrice),
				WeightGrams: derefInt(iWeight),
			})
		}
	}
	if err := rows.Err(); err != nil {
		logging.LogError("Error iterating over rows", err, logrus.Fields{"method": "GetOrder", "order_uid": uid})
		return catalog.Order{}, err
	}
	if !found {
		return catalog.Order{}, orders.ErrNotFound
	}
	return out, nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
