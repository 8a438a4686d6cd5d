package service

import "context"

// APIClient определяет контракт транспортного клиента
// модель приложения пользуется только двумя универсальными методами
type APIClient interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body any, out any) error
}

// BasketStorage определяет контракт долговременного хранилища корзины
// хранится только список id товаров в порядке добавления
// все операции best-effort: ошибки хранилище гасит само
type BasketStorage interface {
	Save(key string, ids []string)
	Load(key string) []string
	Clear(key string)
}

// Emitter — та часть брокера событий, которая нужна модели приложения
type Emitter interface {
	Emit(name string, payload any)
}
