package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/buddazbs/web-larek-frontend/internal/model"
)

// ключ, под которым список id корзины лежит в хранилище
const basketKey = "basket_items"

// пути API витрины
const (
	productsPath = "/product"
	ordersPath   = "/order"
)

// OrderField — имя поля черновика заказа для SetOrderField
type OrderField string

const (
	OrderFieldEmail   OrderField = "email"
	OrderFieldPhone   OrderField = "phone"
	OrderFieldAddress OrderField = "address"
	OrderFieldPayment OrderField = "payment"
)

// AppState — модель приложения и единственный владелец состояния витрины:
// каталога, корзины, превью и черновика заказа
// всякая мутация проходит через его методы; каждое наблюдаемое снаружи
// изменение публикует ровно одно доменное событие со снимком нового состояния
// слой отображения состояние не мутирует — только вызывает методы и слушает события
type AppState struct {
	mu         sync.Mutex
	catalog    []model.Product
	basket     []model.BasketItem
	preview    *model.Product
	order      *model.Order
	submitting bool

	api     APIClient
	storage BasketStorage
	events  Emitter
	log     *slog.Logger
}

// NewAppState создаёт модель приложения
// список id корзины читается из хранилища сразу, но каталог ещё не загружен,
// поэтому до LoadCatalog корзина остаётся пустой — id сопоставляются
// с товарами после загрузки каталога
func NewAppState(api APIClient, storage BasketStorage, events Emitter, log *slog.Logger) *AppState {
	s := &AppState{
		api:     api,
		storage: storage,
		events:  events,
		log:     log,
	}
	s.mu.Lock()
	s.basket = s.resolveBasketLocked(storage.Load(basketKey))
	s.mu.Unlock()
	return s
}

// LoadCatalog загружает список товаров с сервера
// при успехе каталог заменяется целиком, сохранённая корзина заново
// сопоставляется с ним, публикуются catalog:loaded и basket:changed
// при ошибке публикуется catalog:error, каталог остаётся прежним
func (s *AppState) LoadCatalog(ctx context.Context) {
	const op = "service.AppState.LoadCatalog"
	log := s.log.With(slog.String("op", op))

	var list model.ProductList
	if err := s.api.Get(ctx, productsPath, &list); err != nil {
		log.Error("failed to load catalog", slog.String("error", err.Error()))
		s.events.Emit(model.EventCatalogError, err)
		return
	}

	s.mu.Lock()
	s.catalog = list.Items
	s.basket = s.resolveBasketLocked(s.storage.Load(basketKey))
	catalog := slices.Clone(s.catalog)
	basket := slices.Clone(s.basket)
	s.mu.Unlock()

	log.Info("catalog loaded",
		slog.Int("products", len(catalog)),
		slog.Int("basket_items", len(basket)),
	)
	s.events.Emit(model.EventCatalogLoaded, catalog)
	s.events.Emit(model.EventBasketChanged, basket)
}

// RestoreBasket заново сопоставляет сохранённый список id с текущим каталогом
// и публикует basket:changed
func (s *AppState) RestoreBasket() {
	s.mu.Lock()
	s.basket = s.resolveBasketLocked(s.storage.Load(basketKey))
	basket := slices.Clone(s.basket)
	s.mu.Unlock()
	s.events.Emit(model.EventBasketChanged, basket)
}

// SetPreview выбирает товар для детального просмотра и публикует preview:changed
func (s *AppState) SetPreview(product model.Product) {
	s.mu.Lock()
	p := product
	s.preview = &p
	s.mu.Unlock()
	s.events.Emit(model.EventPreviewChanged, &p)
}

// ClearPreview сбрасывает превью при закрытии модального окна
// и публикует preview:changed с nil
func (s *AppState) ClearPreview() {
	s.mu.Lock()
	s.preview = nil
	s.mu.Unlock()
	s.events.Emit(model.EventPreviewChanged, (*model.Product)(nil))
}

// AddToBasket добавляет товар в конец корзины
// бесценный товар и товар, уже лежащий в корзине, молча игнорируются:
// ни события, ни ошибки — повторное нажатие кнопки не должно шуметь
func (s *AppState) AddToBasket(product model.Product) {
	s.mu.Lock()
	if product.Price == nil || s.inBasketLocked(product.ID) {
		s.mu.Unlock()
		return
	}
	s.basket = append(s.basket, model.BasketItem{
		Product: product,
		Index:   len(s.basket) + 1,
	})
	s.persistLocked()
	basket := slices.Clone(s.basket)
	s.mu.Unlock()
	s.events.Emit(model.EventBasketChanged, basket)
}

// RemoveFromBasket убирает товар из корзины по id
// индексы оставшихся товаров нумеруются заново 1..N
// отсутствующий id — no-op без события
func (s *AppState) RemoveFromBasket(id string) {
	s.mu.Lock()
	if !s.inBasketLocked(id) {
		s.mu.Unlock()
		return
	}
	items := s.basket[:0]
	for _, item := range s.basket {
		if item.ID == id {
			continue
		}
		item.Index = len(items) + 1
		items = append(items, item)
	}
	s.basket = items
	s.persistLocked()
	basket := slices.Clone(s.basket)
	s.mu.Unlock()
	s.events.Emit(model.EventBasketChanged, basket)
}

// ClearBasket опустошает корзину, сохраняет пустой список и публикует basket:changed
func (s *AppState) ClearBasket() {
	s.mu.Lock()
	s.basket = []model.BasketItem{}
	s.persistLocked()
	s.mu.Unlock()
	s.events.Emit(model.EventBasketChanged, []model.BasketItem{})
}

// BasketTotal возвращает сумму цен товаров корзины
// nil-цена считается нулём, хотя по инварианту такие товары в корзину не попадают
func (s *AppState) BasketTotal() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.basketTotalLocked()
}

// BasketCount возвращает количество товаров в корзине
func (s *AppState) BasketCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.basket)
}

// IsInBasket сообщает, лежит ли товар с данным id в корзине
func (s *AppState) IsInBasket(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inBasketLocked(id)
}

// CanAddToBasket сообщает, можно ли добавить товар в корзину
func (s *AppState) CanAddToBasket(product model.Product) bool {
	return product.Purchasable()
}

// SetOrderField устанавливает поле черновика заказа
// черновик создаётся лениво при первой записи; валидации и события нет —
// проверка выполняется явно через ValidateOrder перед отправкой
func (s *AppState) SetOrderField(field OrderField, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.order == nil {
		s.order = &model.Order{Payment: model.PaymentCard}
	}
	switch field {
	case OrderFieldEmail:
		s.order.Email = value
	case OrderFieldPhone:
		s.order.Phone = value
	case OrderFieldAddress:
		s.order.Address = value
	case OrderFieldPayment:
		s.order.Payment = model.PaymentType(value)
	default:
		s.log.Debug("unknown order field ignored", slog.String("field", string(field)))
	}
}

// ValidateOrder сообщает, готов ли черновик заказа к отправке
func (s *AppState) ValidateOrder() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order != nil && s.order.Validate() == nil
}

// SubmitOrder отправляет заказ на сервер
// при невалидном или отсутствующем черновике возвращает false без сетевого вызова
// при успехе корзина очищается, черновик сбрасывается, публикуются
// basket:changed и order:success с суммой отправленного заказа
// при ошибке корзина и черновик остаются нетронутыми (пользователь может
// повторить отправку без перезаполнения форм), публикуется order:error
// повторный вызов до завершения первого возвращает false
func (s *AppState) SubmitOrder(ctx context.Context) bool {
	const op = "service.AppState.SubmitOrder"
	log := s.log.With(slog.String("op", op))

	s.mu.Lock()
	if s.order == nil || s.order.Validate() != nil {
		s.mu.Unlock()
		return false
	}
	if s.submitting {
		// первая отправка ещё в полёте — двойной заказ не допускается
		s.mu.Unlock()
		return false
	}
	s.submitting = true
	payload := model.Order{
		Email:   s.order.Email,
		Phone:   s.order.Phone,
		Address: s.order.Address,
		Payment: s.order.Payment,
		Items:   s.purchasableIDsLocked(),
		Total:   s.basketTotalLocked(),
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}()

	var result model.OrderResult
	if err := s.api.Post(ctx, ordersPath, payload, &result); err != nil {
		log.Error("order submission failed", slog.String("error", err.Error()))
		s.events.Emit(model.EventOrderError, err)
		return false
	}

	s.mu.Lock()
	s.basket = []model.BasketItem{}
	s.order = nil
	s.storage.Clear(basketKey)
	s.mu.Unlock()

	log.Info("order submitted", slog.Int("total", payload.Total))
	s.events.Emit(model.EventBasketChanged, []model.BasketItem{})
	s.events.Emit(model.EventOrderSuccess, payload.Total)
	return true
}

// Catalog возвращает снимок каталога
func (s *AppState) Catalog() []model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.catalog)
}

// Basket возвращает снимок корзины
func (s *AppState) Basket() []model.BasketItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.basket)
}

// Preview возвращает товар, выбранный для детального просмотра, либо nil
func (s *AppState) Preview() *model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.preview == nil {
		return nil
	}
	p := *s.preview
	return &p
}

// Order возвращает копию черновика заказа либо nil
func (s *AppState) Order() *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.order == nil {
		return nil
	}
	o := *s.order
	return &o
}

// resolveBasketLocked сопоставляет сохранённые id с текущим каталогом:
// id, которых больше нет в каталоге, молча отбрасываются,
// порядок сохраняется, индексы нумеруются заново 1..N
func (s *AppState) resolveBasketLocked(ids []string) []model.BasketItem {
	items := make([]model.BasketItem, 0, len(ids))
	for _, id := range ids {
		product, ok := s.findProductLocked(id)
		if !ok {
			continue
		}
		items = append(items, model.BasketItem{
			Product: product,
			Index:   len(items) + 1,
		})
	}
	return items
}

func (s *AppState) findProductLocked(id string) (model.Product, bool) {
	for _, p := range s.catalog {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

func (s *AppState) inBasketLocked(id string) bool {
	for _, item := range s.basket {
		if item.ID == id {
			return true
		}
	}
	return false
}

func (s *AppState) basketTotalLocked() int {
	total := 0
	for _, item := range s.basket {
		if item.Price != nil {
			total += *item.Price
		}
	}
	return total
}

// purchasableIDsLocked возвращает id товаров корзины для тела заказа
// товары без цены отфильтровываются, хотя по инварианту их в корзине не бывает
func (s *AppState) purchasableIDsLocked() []string {
	ids := make([]string, 0, len(s.basket))
	for _, item := range s.basket {
		if item.Price != nil {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

// persistLocked зеркалирует список id корзины в хранилище
// запись best-effort: источник истины — память, хранилище лишь переживает перезапуск
func (s *AppState) persistLocked() {
	ids := make([]string, 0, len(s.basket))
	for _, item := range s.basket {
		ids = append(ids, item.ID)
	}
	s.storage.Save(basketKey, ids)
}
