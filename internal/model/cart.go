package model

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// CartLine описывает одну позицию корзины. Цена и название фиксируются в момент добавления.
type CartLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Subtotal возвращает стоимость позиции.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart описывает документ корзины пользователя вместе со списком «отложено на потом».
type Cart struct {
	UserID       string          `json:"userId"`
	Items        []CartLine      `json:"items"`
	SaveForLater []CartLine      `json:"saveForLater"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	// Version и LastCheckoutKey хранятся в отдельных колонках и в ответы API не попадают.
	Version int64 `json:"-"`
	// LastCheckoutKey хранит ключ оформления, которым корзина была обнулена в последний раз.
	LastCheckoutKey string    `json:"-"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// NewCart создаёт пустую корзину.
func NewCart(userID string, now time.Time) *Cart {
	return &Cart{
		UserID:       userID,
		Items:        []CartLine{},
		SaveForLater: []CartLine{},
		TotalPrice:   decimal.Zero,
		UpdatedAt:    now,
	}
}

// IsEmpty сообщает, что в корзине нет позиций для оформления.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// AddItem добавляет товар в корзину или увеличивает количество существующей позиции.
// Цена позиции фиксируется при первом добавлении и в дальнейшем не обновляется.
func (c *Cart) AddItem(p Product, quantity int, now time.Time) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	if p.ID == "" {
		return fmt.Errorf("%w: product id is required", ErrValidation)
	}

	// товар из отложенных возвращается в корзину, чтобы списки не пересекались
	if indexOf(c.SaveForLater, p.ID) >= 0 {
		c.SaveForLater, c.Items, _ = moveLine(c.SaveForLater, c.Items, p.ID)
	}

	if idx := indexOf(c.Items, p.ID); idx >= 0 {
		c.Items[idx].Quantity += quantity
	} else {
		c.Items = append(c.Items, CartLine{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  quantity,
		})
	}

	c.touch(now)
	return nil
}

// RemoveItem удаляет позицию из корзины. Отсутствие позиции ошибкой не считается.
func (c *Cart) RemoveItem(productID string, now time.Time) {
	if idx := indexOf(c.Items, productID); idx >= 0 {
		c.Items = slices.Delete(c.Items, idx, idx+1)
	}
	c.touch(now)
}

// UpdateQuantity задаёт количество позиции. Количество <= 0 удаляет позицию.
func (c *Cart) UpdateQuantity(productID string, quantity int, now time.Time) {
	if quantity <= 0 {
		c.RemoveItem(productID, now)
		return
	}
	if idx := indexOf(c.Items, productID); idx >= 0 {
		c.Items[idx].Quantity = quantity
	}
	c.touch(now)
}

// MoveToSaved переносит позицию из корзины в список «отложено на потом».
func (c *Cart) MoveToSaved(productID string, now time.Time) error {
	var err error
	c.Items, c.SaveForLater, err = moveLine(c.Items, c.SaveForLater, productID)
	if err != nil {
		return fmt.Errorf("%w: item %s not in cart", err, productID)
	}
	c.touch(now)
	return nil
}

// MoveToCart возвращает отложенную позицию в корзину.
func (c *Cart) MoveToCart(productID string, now time.Time) error {
	var err error
	c.SaveForLater, c.Items, err = moveLine(c.SaveForLater, c.Items, productID)
	if err != nil {
		return fmt.Errorf("%w: item %s not in save for later", err, productID)
	}
	c.touch(now)
	return nil
}

// RemoveFromSaved удаляет позицию из отложенных. Отсутствие позиции ошибкой не считается.
func (c *Cart) RemoveFromSaved(productID string, now time.Time) {
	if idx := indexOf(c.SaveForLater, productID); idx >= 0 {
		c.SaveForLater = slices.Delete(c.SaveForLater, idx, idx+1)
	}
	c.touch(now)
}

// Clear очищает корзину. Отложенные позиции сохраняются.
func (c *Cart) Clear(now time.Time) {
	c.Items = []CartLine{}
	c.touch(now)
}

// Reset очищает корзину после оформления заказа и запоминает ключ оформления.
func (c *Cart) Reset(checkoutKey string, now time.Time) {
	c.LastCheckoutKey = checkoutKey
	c.Clear(now)
}

// CloneItems возвращает независимую копию позиций корзины.
func (c *Cart) CloneItems() []CartLine {
	return slices.Clone(c.Items)
}

// Clone возвращает независимую копию корзины.
func (c *Cart) Clone() *Cart {
	cp := *c
	cp.Items = slices.Clone(c.Items)
	cp.SaveForLater = slices.Clone(c.SaveForLater)
	if cp.Items == nil {
		cp.Items = []CartLine{}
	}
	if cp.SaveForLater == nil {
		cp.SaveForLater = []CartLine{}
	}
	return &cp
}

func (c *Cart) touch(now time.Time) {
	if c.Items == nil {
		c.Items = []CartLine{}
	}
	if c.SaveForLater == nil {
		c.SaveForLater = []CartLine{}
	}
	c.TotalPrice = Total(c.Items)
	c.Version++
	c.UpdatedAt = now
}

// Total суммирует стоимость позиций.
func Total(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func indexOf(lines []CartLine, productID string) int {
	return slices.IndexFunc(lines, func(l CartLine) bool {
		return l.ProductID == productID
	})
}

// moveLine переносит позицию из from в to, объединяя количество с уже существующей строкой.
func moveLine(from, to []CartLine, productID string) ([]CartLine, []CartLine, error) {
	idx := indexOf(from, productID)
	if idx < 0 {
		return from, to, ErrNotFound
	}

	line := from[idx]
	from = slices.Delete(from, idx, idx+1)

	if j := indexOf(to, productID); j >= 0 {
		to[j].Quantity += line.Quantity
	} else {
		to = append(to, line)
	}

	return from, to, nil
}
