package model

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// PaymentType — способ оплаты заказа
type PaymentType string

const (
	PaymentCard PaymentType = "card"
	PaymentCash PaymentType = "cash"
)

// Order представляет черновик заказа и одновременно тело запроса на оформление
// Items и Total заполняются моделью приложения при отправке, а не формами
type Order struct {
	Total   int         `json:"total"`
	Items   []string    `json:"items"`
	Email   string      `json:"email" validate:"required,email"`
	Phone   string      `json:"phone" validate:"required"`
	Address string      `json:"address" validate:"required"`
	Payment PaymentType `json:"payment" validate:"required,oneof=card cash"`
}

// OrderResult — ответ API на успешное оформление заказа
type OrderResult struct {
	ID    string `json:"id"`
	Total int    `json:"total"`
}

// тексты ошибок показываются пользователю в формах как есть
var (
	ErrEmailRequired   = errors.New("Введите email")
	ErrEmailInvalid    = errors.New("Некорректный email")
	ErrPhoneRequired   = errors.New("Введите телефон")
	ErrPhoneInvalid    = errors.New("Некорректный телефон")
	ErrAddressRequired = errors.New("Укажите адрес доставки")
	ErrPaymentRequired = errors.New("Выберите способ оплаты")
)

var validate = validator.New()

// ValidateEmail проверяет адрес почты
// возвращает nil, если адрес корректен, иначе — текст ошибки для пользователя
func ValidateEmail(value string) error {
	if strings.TrimSpace(value) == "" {
		return ErrEmailRequired
	}
	if err := validate.Var(value, "email"); err != nil {
		return ErrEmailInvalid
	}
	return nil
}

// ValidatePhone проверяет номер телефона:
// после удаления всех нецифровых символов должно остаться не меньше 10 цифр
func ValidatePhone(value string) error {
	if strings.TrimSpace(value) == "" {
		return ErrPhoneRequired
	}
	digits := 0
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < 10 {
		return ErrPhoneInvalid
	}
	return nil
}

// Validate проверяет готовность черновика заказа к отправке по тегам validate,
// дополняя их тем, что тегами не выразить: телефон по числу цифр
// и адрес без строк из одних пробелов
// возвращает первую найденную ошибку с текстом для пользователя
func (o *Order) Validate() error {
	if err := validate.Struct(o); err != nil {
		return userMessage(err)
	}
	if err := ValidatePhone(o.Phone); err != nil {
		return err
	}
	if strings.TrimSpace(o.Address) == "" {
		return ErrAddressRequired
	}
	return nil
}

// userMessage переводит первую ошибку валидатора в текст для пользователя
func userMessage(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	switch fe := fieldErrs[0]; fe.Field() {
	case "Email":
		if fe.Tag() == "required" {
			return ErrEmailRequired
		}
		return ErrEmailInvalid
	case "Phone":
		return ErrPhoneRequired
	case "Address":
		return ErrAddressRequired
	case "Payment":
		return ErrPaymentRequired
	default:
		return err
	}
}
