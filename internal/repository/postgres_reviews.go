package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/storefront-system/internal/model"
)

const reviewColumns = `doc, helpful`

// scanReview читает документ отзыва. Счётчик полезности берётся из колонки.
func scanReview(row pgx.Row) (*model.Review, error) {
	var (
		raw     []byte
		helpful int
		rv      model.Review
	)
	if err := row.Scan(&raw, &helpful); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &rv); err != nil {
		return nil, fmt.Errorf("decode review: %w", err)
	}
	rv.Helpful = helpful
	return &rv, nil
}

// CreateReview сохраняет отзыв.
func (r *PostgresRepository) CreateReview(ctx context.Context, rv *model.Review) error {
	doc, err := json.Marshal(rv)
	if err != nil {
		return fmt.Errorf("encode review: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO reviews (id, product_id, user_id, helpful, doc, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		rv.ID, rv.ProductID, rv.UserID, rv.Helpful, doc, rv.CreatedAt,
	)
	if err != nil {
		return persistErr("insert review", err)
	}
	return nil
}

// ListReviewsByProduct возвращает отзывы о товаре, начиная с новых.
func (r *PostgresRepository) ListReviewsByProduct(ctx context.Context, productID string) ([]model.Review, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE product_id = $1 ORDER BY created_at DESC, id`,
		productID,
	)
	if err != nil {
		return nil, persistErr("select reviews", err)
	}
	defer rows.Close()

	res := []model.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, persistErr("scan review", err)
		}
		res = append(res, *rv)
	}

	if err := rows.Err(); err != nil {
		return nil, persistErr("rows error", err)
	}
	return res, nil
}

// IncrementReviewHelpful атомарно увеличивает счётчик полезности отзыва.
func (r *PostgresRepository) IncrementReviewHelpful(ctx context.Context, id string) (*model.Review, error) {
	rv, err := scanReview(r.pool.QueryRow(ctx,
		`UPDATE reviews SET helpful = helpful + 1 WHERE id = $1 RETURNING `+reviewColumns,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("review %s: %w", id, model.ErrNotFound)
		}
		return nil, persistErr("update review", err)
	}
	return rv, nil
}
