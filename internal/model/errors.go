package model

import "errors"

// Ошибки домена. Конкретные места возникновения оборачивают их через %w.
var (
	// ErrValidation возвращается, если запрос содержит отсутствующие или некорректные поля.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound возвращается, если связанная запись (строка корзины, адрес, способ оплаты, товар, заказ) отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrEmptyCart возвращается при попытке оформить пустую или отсутствующую корзину.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrPersistence возвращается при недоступности хранилища или конфликте записи.
	ErrPersistence = errors.New("persistence failure")
)
