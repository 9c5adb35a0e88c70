package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/storefront-system/internal/model"
)

// GetReviews возвращает отзывы о товаре, начиная с новых.
func (s *Service) GetReviews(ctx context.Context, productID string) ([]model.Review, error) {
	if err := requireProduct(productID); err != nil {
		return nil, err
	}
	return s.repo.ListReviewsByProduct(ctx, productID)
}

// GetRating возвращает среднюю оценку товара и число отзывов.
func (s *Service) GetRating(ctx context.Context, productID string) (model.RatingSummary, error) {
	reviews, err := s.GetReviews(ctx, productID)
	if err != nil {
		return model.RatingSummary{}, err
	}
	return model.Summarize(reviews), nil
}

// CreateReview сохраняет отзыв с нулевым счётчиком полезности.
func (s *Service) CreateReview(ctx context.Context, rv model.Review) (*model.Review, error) {
	if err := rv.Validate(); err != nil {
		return nil, err
	}

	rv.ID = uuid.NewString()
	rv.Helpful = 0
	rv.CreatedAt = s.now()

	if err := s.repo.CreateReview(ctx, &rv); err != nil {
		return nil, err
	}

	s.logger.Debug("review created",
		zap.String("review_id", rv.ID), zap.String("product_id", rv.ProductID), zap.Int("rating", rv.Rating))
	return &rv, nil
}

// MarkReviewHelpful увеличивает счётчик полезности отзыва.
func (s *Service) MarkReviewHelpful(ctx context.Context, id string) (*model.Review, error) {
	return s.repo.IncrementReviewHelpful(ctx, id)
}
