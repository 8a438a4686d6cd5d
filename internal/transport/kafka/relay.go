package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/buddazbs/web-larek-frontend/internal/events"

	"github.com/segmentio/kafka-go"
)

// Subscriber — та часть брокера событий, которая нужна релею
type Subscriber interface {
	OnAll(handler events.Handler)
}

// Relay пересылает все доменные события приложения в топик Kafka —
// это лента аналитики витрины (просмотры, корзина, заказы)
// доставка best-effort: ошибка логируется и никогда не влияет на путь UI
type Relay struct {
	writer *kafka.Writer
	log    *slog.Logger
}

// relayMessage — формат сообщения в топике
type relayMessage struct {
	Event   string    `json:"event"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

// NewRelay создает новый экземпляр релея
func NewRelay(brokers []string, topic string, log *slog.Logger) *Relay {
	r := &Relay{log: log}
	r.writer = &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
		// отправка не должна блокировать публикацию событий,
		// поэтому пишем асинхронно, а ошибки забираем через Completion
		Async: true,
		Completion: func(_ []kafka.Message, err error) {
			if err != nil {
				log.Warn("failed to relay events to kafka", slog.String("error", err.Error()))
			}
		},
	}
	return r
}

// Attach подписывает релей на все события приложения
func (r *Relay) Attach(bus Subscriber) {
	bus.OnAll(r.handle)
}

// handle сериализует одно событие и ставит его в очередь на отправку
func (r *Relay) handle(payload any) {
	event, ok := payload.(events.EmitterEvent)
	if !ok {
		return
	}

	// полезная нагрузка типа error в JSON превращается в пустой объект —
	// вместо этого отправляем её текст
	body := event.Payload
	if err, isErr := body.(error); isErr {
		body = err.Error()
	}

	data, err := json.Marshal(relayMessage{
		Event:   event.Name,
		Payload: body,
		At:      time.Now().UTC(),
	})
	if err != nil {
		r.log.Warn("failed to marshal event for relay",
			slog.String("event", event.Name),
			slog.String("error", err.Error()),
		)
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.Name),
		Value: data,
	}
	// при Async: true вызов возвращается сразу, контекст здесь не ждёт сети
	if err := r.writer.WriteMessages(context.Background(), msg); err != nil {
		r.log.Warn("failed to enqueue event for relay",
			slog.String("event", event.Name),
			slog.String("error", err.Error()),
		)
	}
}

// Close сбрасывает очередь и закрывает писателя
func (r *Relay) Close() error {
	r.log.Info("closing kafka relay")
	return r.writer.Close()
}
