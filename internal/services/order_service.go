package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	kaf "github.com/metkashop/metka-miniapp/internal/adapters/kafka"
	"github.com/metkashop/metka-miniapp/internal/app/orders"
	promoapp "github.com/metkashop/metka-miniapp/internal/app/promo"
	"github.com/metkashop/metka-miniapp/internal/domain/catalog"
	deliverydom "github.com/metkashop/metka-miniapp/internal/domain/delivery"
	"github.com/metkashop/metka-miniapp/internal/logging"
	"github.com/metkashop/metka-miniapp/internal/validation"
)

// DeliveryQuoter — оценка доставки при оформлении. Сбой котировки не должен
// ронять заказ: стоимость доставки тогда согласуется с покупателем отдельно.
type DeliveryQuoter interface {
	QuoteForAddress(ctx context.Context, fullAddress string, parcel deliverydom.CartParcel, pvzCode string) (deliverydom.TariffQuote, error)
}

type ParcelBuilder func(items []catalog.OrderItem) deliverydom.CartParcel

type OrderService struct {
	ordersRepo  orders.OrderRepo
	products    orders.ProductRepo
	promoRepo   promoapp.Repo
	validator   *promoapp.Validator
	quoter      DeliveryQuoter
	buildParcel ParcelBuilder
	producer    kaf.Producer
	eventsTopic string
}

func NewOrderService(
	ordersRepo orders.OrderRepo,
	products orders.ProductRepo,
	promoRepo promoapp.Repo,
	validator *promoapp.Validator,
	quoter DeliveryQuoter,
	buildParcel ParcelBuilder,
	producer kaf.Producer,
	eventsTopic string,
) *OrderService {
	return &OrderService{
		ordersRepo:  ordersRepo,
		products:    products,
		promoRepo:   promoRepo,
		validator:   validator,
		quoter:      quoter,
		buildParcel: buildParcel,
		producer:    producer,
		eventsTopic: eventsTopic,
	}
}

// PlaceOrder оформляет заказ: нормализация и валидация ввода, сверка позиций
// с каталогом, промокод, оценка доставки, запись в базу, событие в Kafka.
// Промокод "тратится" лучшими усилиями и не возвращается при отмене заказа.
func (s *OrderService) PlaceOrder(ctx context.Context, o catalog.Order) (catalog.Order, error) {
	orders.NormalizeOrder(&o)

	if err := s.reconcileItems(ctx, &o); err != nil {
		return catalog.Order{}, err
	}
	if err := validation.IsValidOrder(o); err != nil {
		return catalog.Order{}, fmt.Errorf("%w: %v", orders.ErrInvalidData, err)
	}

	if o.OrderUID == "" {
		o.OrderUID = uuid.New().String()
	}
	o.DateCreated = time.Now().UTC()

	o.Subtotal = 0
	for _, it := range o.Items {
		o.Subtotal += it.Price
	}

	var promoDecision promoapp.Decision
	if o.PromoCode != "" {
		d, err := s.validator.Validate(ctx, o.PromoCode, o.DateCreated)
		if err != nil {
			return catalog.Order{}, err
		}
		promoDecision = d
		if d.Valid {
			o.Discount = promoapp.Discount(d, o.Subtotal)
		} else {
			logging.LogInfo("promo rejected at checkout", logrus.Fields{
				"method": "PlaceOrder", "order_uid": o.OrderUID, "code": o.PromoCode, "reason": string(d.Reason),
			})
			o.PromoCode = ""
		}
	}

	if s.quoter != nil && o.Address != "" {
		quote, err := s.quoter.QuoteForAddress(ctx, o.Address, s.buildParcel(o.Items), o.PvzCode)
		if err != nil {
			logging.LogError("delivery quote failed, order proceeds without it", err, logrus.Fields{
				"method": "PlaceOrder", "order_uid": o.OrderUID,
			})
		} else {
			o.DeliveryCost = quote.Cost
		}
	}

	o.Total = o.Subtotal - o.Discount + o.DeliveryCost

	created, err := s.ordersRepo.CreateOrder(ctx, o)
	if err != nil {
		return catalog.Order{}, err
	}

	if promoDecision.Valid {
		if err := s.promoRepo.SpendPromo(ctx, created.PromoCode); err != nil {
			logging.LogError("promo spend failed", err, logrus.Fields{
				"method": "PlaceOrder", "order_uid": created.OrderUID, "code": created.PromoCode,
			})
		}
	}

	s.publishPlaced(ctx, created)
	return created, nil
}

func (s *OrderService) GetOrder(ctx context.Context, uid string) (catalog.Order, error) {
	return s.ordersRepo.GetOrder(ctx, uid)
}

func (s *OrderService) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	return s.products.ListProducts(ctx)
}

// reconcileItems подменяет присланные клиентом цену/вес/артикул данными
// каталога: корзина с фронта не источник истины.
func (s *OrderService) reconcileItems(ctx context.Context, o *catalog.Order) error {
	ids := make([]int64, 0, len(o.Items))
	for _, it := range o.Items {
		ids = append(ids, it.ProductID)
	}
	known, err := s.products.GetProducts(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[int64]catalog.Product, len(known))
	for _, p := range known {
		byID[p.ID] = p
	}
	for i := range o.Items {
		p, ok := byID[o.Items[i].ProductID]
		if !ok {
			return orders.ErrInvalidData
		}
		o.Items[i].Art = p.Art
		o.Items[i].Name = p.Name
		o.Items[i].Price = p.Price
		o.Items[i].WeightGrams = p.WeightGrams
	}
	return nil
}

func (s *OrderService) publishPlaced(ctx context.Context, o catalog.Order) {
	if s.producer == nil {
		return
	}
	env := kaf.Envelope[kaf.OrderPlaced]{
		EventType:  "order.placed",
		Version:    1,
		OccurredAt: time.Now().UTC(),
		EntityID:   o.OrderUID,
		Payload:    kaf.OrderPlaced{OrderUID: o.OrderUID, Total: o.Total, PromoCode: o.PromoCode},
		Meta:       kaf.Meta{Producer: "storefront-service", Source: "http-api"},
	}
	if err := s.producer.PublishJSON(ctx, s.eventsTopic, []byte(o.OrderUID), env, nil); err != nil {
		logging.LogError("publish order.placed failed", err, logrus.Fields{"method": "PlaceOrder", "order_uid": o.OrderUID})
	}
}
