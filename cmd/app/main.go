package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/buddazbs/web-larek-frontend/internal/config"
	"github.com/buddazbs/web-larek-frontend/internal/events"
	"github.com/buddazbs/web-larek-frontend/internal/lib/logger"
	"github.com/buddazbs/web-larek-frontend/internal/model"
	"github.com/buddazbs/web-larek-frontend/internal/repository/filestore"
	"github.com/buddazbs/web-larek-frontend/internal/repository/postgres"
	"github.com/buddazbs/web-larek-frontend/internal/service"
	"github.com/buddazbs/web-larek-frontend/internal/transport/api"
	"github.com/buddazbs/web-larek-frontend/internal/transport/kafka"
)

func main() {
	// 1. Инициализация конфигурации
	cfg := config.MustLoad(configPath())

	// 2. Инициализация логгера
	log := logger.New(cfg.Logger.Level)
	log.Info("starting web-larek storefront", slog.String("log_level", cfg.Logger.Level))

	// 3. Инициализация хранилища корзины
	store, closeStore, err := newBasketStorage(cfg, log)
	if err != nil {
		log.Error("failed to init basket storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	// 4. Инициализация брокера событий
	// журнал всех событий подписывается первым — полезно при отладке слоя отображения
	bus := events.New()
	bus.OnAll(func(payload any) {
		event, ok := payload.(events.EmitterEvent)
		if !ok {
			return
		}
		log.Debug("event published", slog.String("event", event.Name))
	})

	// 5. Инициализация модели приложения
	client := api.New(cfg.API.BaseURL, cfg.API.Timeout, log)
	app := service.NewAppState(client, store, bus, log)

	// 6. Релей событий в Kafka для аналитики (опционально)
	if cfg.Kafka.Enabled {
		relay := kafka.NewRelay(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		relay.Attach(bus)
		defer func() {
			if err := relay.Close(); err != nil {
				log.Error("error closing kafka relay", slog.String("error", err.Error()))
			}
		}()
		log.Info("kafka relay attached", slog.String("topic", cfg.Kafka.Topic))
	}

	// 7. Загрузка каталога и восстановление корзины
	// ошибка загрузки уходит событием catalog:error, поэтому слушаем её здесь же
	bus.On(model.EventCatalogError, func(payload any) {
		log.Error("catalog load failed", slog.Any("error", payload))
	})
	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.Timeout)
	app.LoadCatalog(ctx)
	cancel()

	// 8. Состояние готово — дальше им владеет слой отображения
	log.Info("application state ready",
		slog.Int("products", len(app.Catalog())),
		slog.Int("basket_items", app.BasketCount()),
		slog.Int("basket_total", app.BasketTotal()),
	)

	// 9. Graceful shutdown
	stop := shutdownSignal()
	<-stop

	log.Info("shutting down application")
	// отложенные закрытия релея и хранилища срабатывают при выходе из main
}

// shutdownSignal возвращает канал, в который придёт сигнал завершения
func shutdownSignal() chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	return stop
}

// configPath берёт путь из CONFIG_PATH либо использует путь по умолчанию
func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "config/config.yaml"
}

// newBasketStorage выбирает драйвер хранилища корзины по конфигу
func newBasketStorage(cfg *config.Config, log *slog.Logger) (service.BasketStorage, func(), error) {
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := postgres.New(context.Background(), cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		log.Info("successfully connected to postgres")
		return postgres.NewBasketRepository(pool, log), pool.Close, nil
	default:
		// файловое хранилище — драйвер по умолчанию
		return filestore.New(cfg.Storage.Path, log), func() {}, nil
	}
}
