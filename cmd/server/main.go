package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	segmentio "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/metkashop/metka-miniapp/internal/adapters/cache"
	"github.com/metkashop/metka-miniapp/internal/adapters/carrier"
	"github.com/metkashop/metka-miniapp/internal/adapters/geocode"
	httpHandlers "github.com/metkashop/metka-miniapp/internal/adapters/http/handlers"
	kaf "github.com/metkashop/metka-miniapp/internal/adapters/kafka"
	repoPkg "github.com/metkashop/metka-miniapp/internal/adapters/repo"
	"github.com/metkashop/metka-miniapp/internal/address"
	deliveryApp "github.com/metkashop/metka-miniapp/internal/app/delivery"
	promoApp "github.com/metkashop/metka-miniapp/internal/app/promo"
	"github.com/metkashop/metka-miniapp/internal/config"
	"github.com/metkashop/metka-miniapp/internal/logging"
	svcPkg "github.com/metkashop/metka-miniapp/internal/services"
)

func main() {
	cfg := config.Load()
	logging.InitLogger()
	logging.LogInfo("starting storefront-service", logrus.Fields{
		"pid":  os.Getpid(),
		"port": cfg.HTTP.Port,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := mustPG(ctx, cfg)
	defer pool.Close()

	store := repoPkg.NewStore(pool)

	var pointsCache deliveryApp.PointsCache
	if cfg.App.CacheBackend == "redis" {
		pointsCache = cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
			TTL:      cfg.Redis.TTL,
		})
		logging.LogInfo("redis pvz cache enabled", logrus.Fields{"addr": cfg.Redis.Addr, "ttl": cfg.Redis.TTL.String()})
	} else {
		pointsCache = cache.NewLRUCache(256)
		logging.LogInfo("lru pvz cache enabled", logrus.Fields{"capacity": 256})
	}

	tokens := carrier.NewCachedTokenSource(cfg.Carrier.AuthURL, cfg.Carrier.ClientID, cfg.Carrier.ClientSecret, nil)
	carrierClient := carrier.NewClient(carrier.Config{
		BaseURL:      cfg.Carrier.BaseURL,
		FromCityCode: cfg.Carrier.FromCityCode,
		HTTPTimeout:  cfg.Carrier.Timeout,
	}, tokens)
	geocoder := geocode.NewClient(cfg.Geocoder.BaseURL, cfg.Geocoder.APIKey, cfg.Geocoder.Timeout)

	quotes := deliveryApp.NewQuoteService(carrierClient, geocoder, address.NewRussianExtractor(), pointsCache)
	validator := promoApp.NewValidator(store)

	prod := mustKafkaProducer(cfg)
	defer prod.Close()

	orderSvc := svcPkg.NewOrderService(store, store, store, validator, quotes, deliveryApp.ParcelFromItems, prod, cfg.Kafka.Topic)
	h := httpHandlers.NewShopHandlers(quotes, orderSvc, validator)

	consumer := kaf.NewConsumer(kaf.ConsumerConfig{
		Brokers:           cfg.Kafka.Brokers,
		ClientID:          "storefront-service",
		MinBytes:          1 << 10,
		MaxBytes:          10 << 20,
		MaxWait:           100 * time.Millisecond,
		SessionTimeout:    10 * time.Second,
		RebalanceTimeout:  10 * time.Second,
		HeartbeatInterval: 3 * time.Second,
		StartOffset:       segmentio.FirstOffset,
		MaxRetries:        5,
		Backoff:           200 * time.Millisecond,
	})

	go func() {
		logging.LogInfo("kafka consumer subscribing", logrus.Fields{
			"topic": cfg.Kafka.Topic, "group": cfg.Kafka.Group, "brokers": cfg.Kafka.Brokers,
		})

		if err := consumer.Subscribe(ctx, cfg.Kafka.Topic, cfg.Kafka.Group, func(ctx context.Context, msg kaf.Message) error {
			switch msg.Envelope.EventType {
			case "order.placed":
				var p kaf.OrderPlaced
				if err := json.Unmarshal(msg.Envelope.Payload, &p); err != nil {
					logging.LogError("order-notifier bad payload", err, logrus.Fields{})
					return nil
				}
				ord, err := store.GetOrder(ctx, p.OrderUID)
				if err != nil {
					return err
				}
				// Уведомление менеджеру о новом заказе; пока только лог.
				logging.LogInfo("new order", logrus.Fields{
					"order_uid": ord.OrderUID,
					"customer":  ord.CustomerName,
					"total":     ord.Total,
					"promo":     ord.PromoCode,
				})
				return nil

			default:
				return nil
			}
		}); err != nil {
			logging.LogError("kafka consumer stopped", err, logrus.Fields{
				"topic": cfg.Kafka.Topic, "group": cfg.Kafka.Group,
			})
		} else {
			logging.LogInfo("kafka consumer exited gracefully", logrus.Fields{
				"topic": cfg.Kafka.Topic, "group": cfg.Kafka.Group,
			})
		}
	}()

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.StripSlashes, middleware.Timeout(30*time.Second))
	r.Get("/health", httpHandlers.HealthHandler)
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			logging.LogError("readiness: db not ready", err, logrus.Fields{})
			http.Error(w, "db not ready: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.ListProductsHandler)
		r.Post("/promocodes/check", h.CheckPromo)
		r.Route("/delivery", func(r chi.Router) {
			r.Post("/pvz-by-address", h.PvzByAddress)
			r.Post("/estimate", h.Estimate)
			r.Get("/cities", h.Cities)
			r.Get("/streets", h.Streets)
		})
	})
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.PlaceOrder)
		r.Get("/{id}", h.GetOrderHandler)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.LogInfo("http server listening", logrus.Fields{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.LogError("http server ListenAndServe failed", err, logrus.Fields{"addr": srv.Addr})
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	logging.LogInfo("shutdown signal received", logrus.Fields{"signal": sig.String()})

	if err := consumer.Close(); err != nil {
		logging.LogError("kafka consumer close failed", err, logrus.Fields{})
	} else {
		logging.LogInfo("kafka consumer closed", logrus.Fields{})
	}

	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logging.LogError("http server shutdown failed", err, logrus.Fields{})
	} else {
		logging.LogInfo("http server shutdown complete", logrus.Fields{})
	}
	logging.LogInfo("bye", logrus.Fields{})
}

func mustPG(ctx context.Context, cfg config.Config) *pgxpool.Pool {
	dbURL := os.Getenv("DATABASE_URL")
	fields := logrus.Fields{}
	if dbURL == "" {
		dbURL = "postgres://" + cfg.DB.User + ":" + cfg.DB.Password + "@" +
			cfg.DB.Host + ":" + cfg.DB.Port + "/" + cfg.DB.Name + "?sslmode=" + cfg.DB.SSLMode
		fields = logrus.Fields{
			"source":  "env/defaults",
			"host":    cfg.DB.Host,
			"port":    cfg.DB.Port,
			"db_name": cfg.DB.Name,
			"user":    cfg.DB.User,
			"sslmode": cfg.DB.SSLMode,
		}
	} else {
		fields = logrus.Fields{"source": "DATABASE_URL"}
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logging.LogError("pgxpool.New failed", err, fields)
		os.Exit(1)
	}
	logging.LogInfo("pgx pool created", fields)
	return pool
}

func mustKafkaProducer(cfg config.Config) kaf.Producer {
	p, err := kaf.NewProducer(kaf.ProducerConfig{
		Brokers:                cfg.Kafka.Brokers,
		ClientID:               "storefront-service",
		RequiredAcks:           segmentio.RequireAll,
		BatchBytes:             1 << 20,
		BatchTimeout:           50 * time.Millisecond,
		Compression:            segmentio.Snappy,
		Async:                  false,
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
	})
	if err != nil {
		log.Fatalf("kafka producer: %v", err)
	}
	logging.LogInfo("kafka producer created", logrus.Fields{"brokers": cfg.Kafka.Brokers, "client_id": "storefront-service"})
	return p
}
