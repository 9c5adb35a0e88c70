package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Границы оценки товара.
const (
	MinRating = 1
	MaxRating = 5
)

// Review описывает отзыв покупателя о товаре.
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Rating    int       `json:"rating"`
	Title     string    `json:"title"`
	Comment   string    `json:"comment"`
	Helpful   int       `json:"helpful"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate проверяет обязательные поля отзыва и диапазон оценки.
func (r Review) Validate() error {
	fields := []struct{ name, value string }{
		{"productId", r.ProductID},
		{"userId", r.UserID},
		{"userName", r.UserName},
		{"title", r.Title},
		{"comment", r.Comment},
	}

	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(missing, ", "))
	}
	if r.Rating < MinRating || r.Rating > MaxRating {
		return fmt.Errorf("%w: rating must be between %d and %d", ErrValidation, MinRating, MaxRating)
	}
	return nil
}

// RatingSummary содержит среднюю оценку товара, округлённую до десятых.
type RatingSummary struct {
	AverageRating float64 `json:"averageRating"`
	TotalReviews  int     `json:"totalReviews"`
}

// Summarize считает среднюю оценку по отзывам. Без отзывов средняя равна 0.
func Summarize(reviews []Review) RatingSummary {
	if len(reviews) == 0 {
		return RatingSummary{}
	}

	sum := decimal.Zero
	for _, r := range reviews {
		sum = sum.Add(decimal.NewFromInt(int64(r.Rating)))
	}
	avg := sum.Div(decimal.NewFromInt(int64(len(reviews)))).Round(1)

	return RatingSummary{
		AverageRating: avg.InexactFloat64(),
		TotalReviews:  len(reviews),
	}
}
