package model

// Product представляет товар каталога, приходящий из API
// Price == nil означает «бесценный» товар — его нельзя положить в корзину
type Product struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Price       *int   `json:"price"`
	Category    string `json:"category"`
}

// Purchasable сообщает, можно ли купить товар
func (p Product) Purchasable() bool {
	return p.Price != nil
}

// BasketItem — товар в корзине с порядковым номером для отображения
// инвариант: Index — всегда плотная последовательность 1..N,
// совпадающая с позицией товара в корзине
type BasketItem struct {
	Product
	Index int `json:"index"`
}

// ProductList — ответ API на запрос списка товаров
type ProductList struct {
	Total int       `json:"total"`
	Items []Product `json:"items"`
}
