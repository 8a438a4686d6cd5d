package model

// Имена доменных событий, публикуемых моделью приложения
// слой отображения подписывается на них через брокер событий
const (
	EventCatalogLoaded  = "catalog:loaded"  // полезная нагрузка: []Product
	EventCatalogError   = "catalog:error"   // полезная нагрузка: error
	EventPreviewChanged = "preview:changed" // полезная нагрузка: *Product (nil — превью закрыто)
	EventBasketChanged  = "basket:changed"  // полезная нагрузка: []BasketItem
	EventOrderSuccess   = "order:success"   // полезная нагрузка: int (итоговая сумма)
	EventOrderError     = "order:error"     // полезная нагрузка: error
)
