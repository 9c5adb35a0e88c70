package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/storefront-system/internal/model"
)

type docRow struct {
	raw       []byte
	isDefault bool
}

// insertDoc создаёт запись коллекции без признака по умолчанию.
// Признак выставляется только через SetDefault.
func (r *PostgresRepository) insertDoc(ctx context.Context, c model.Collection, id, userID string, doc any, createdAt time.Time) error {
	table, err := collectionTable(c)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", table, err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO `+table+` (id, user_id, is_default, doc, created_at) VALUES ($1, $2, FALSE, $3, $4)`,
		id, userID, raw, createdAt,
	)
	if err != nil {
		return persistErr("insert "+table, err)
	}
	return nil
}

func (r *PostgresRepository) getDoc(ctx context.Context, c model.Collection, id string) (docRow, error) {
	table, err := collectionTable(c)
	if err != nil {
		return docRow{}, err
	}

	var row docRow
	err = r.pool.QueryRow(ctx, `SELECT doc, is_default FROM `+table+` WHERE id = $1`, id).Scan(&row.raw, &row.isDefault)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return docRow{}, fmt.Errorf("%s %s: %w", table, id, model.ErrNotFound)
		}
		return docRow{}, persistErr("select "+table, err)
	}
	return row, nil
}

func (r *PostgresRepository) listDocs(ctx context.Context, c model.Collection, userID string) ([]docRow, error) {
	table, err := collectionTable(c)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT doc, is_default FROM `+table+` WHERE user_id = $1 ORDER BY created_at DESC, id`,
		userID,
	)
	if err != nil {
		return nil, persistErr("select "+table, err)
	}
	defer rows.Close()

	var res []docRow
	for rows.Next() {
		var row docRow
		if err := rows.Scan(&row.raw, &row.isDefault); err != nil {
			return nil, persistErr("scan "+table, err)
		}
		res = append(res, row)
	}

	if err := rows.Err(); err != nil {
		return nil, persistErr("rows error", err)
	}
	return res, nil
}

// updateDoc перезаписывает документ. Обычное обновление может только снять признак по умолчанию.
func (r *PostgresRepository) updateDoc(ctx context.Context, c model.Collection, id string, doc any, keepDefault bool) error {
	table, err := collectionTable(c)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", table, err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE `+table+` SET doc = $2, is_default = is_default AND $3 WHERE id = $1`,
		id, raw, keepDefault,
	)
	if err != nil {
		return persistErr("update "+table, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", table, id, model.ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) deleteDoc(ctx context.Context, c model.Collection, id string) error {
	table, err := collectionTable(c)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return persistErr("delete "+table, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", table, id, model.ErrNotFound)
	}
	return nil
}

func decodeAddress(row docRow) (*model.Address, error) {
	var a model.Address
	if err := json.Unmarshal(row.raw, &a); err != nil {
		return nil, fmt.Errorf("decode address: %w", err)
	}
	a.IsDefault = row.isDefault
	return &a, nil
}

func decodePaymentMethod(row docRow) (*model.PaymentMethod, error) {
	var m model.PaymentMethod
	if err := json.Unmarshal(row.raw, &m); err != nil {
		return nil, fmt.Errorf("decode payment method: %w", err)
	}
	m.IsDefault = row.isDefault
	return &m, nil
}

// GetAddress возвращает адрес по идентификатору.
func (r *PostgresRepository) GetAddress(ctx context.Context, id string) (*model.Address, error) {
	row, err := r.getDoc(ctx, model.CollectionAddresses, id)
	if err != nil {
		return nil, err
	}
	return decodeAddress(row)
}

// ListAddresses возвращает адреса пользователя, начиная с последнего.
func (r *PostgresRepository) ListAddresses(ctx context.Context, userID string) ([]model.Address, error) {
	rows, err := r.listDocs(ctx, model.CollectionAddresses, userID)
	if err != nil {
		return nil, err
	}

	res := make([]model.Address, 0, len(rows))
	for _, row := range rows {
		a, err := decodeAddress(row)
		if err != nil {
			return nil, err
		}
		res = append(res, *a)
	}
	return res, nil
}

// CreateAddress сохраняет новый адрес.
func (r *PostgresRepository) CreateAddress(ctx context.Context, a *model.Address) error {
	return r.insertDoc(ctx, model.CollectionAddresses, a.ID, a.UserID, a, a.CreatedAt)
}

// UpdateAddress перезаписывает адрес.
func (r *PostgresRepository) UpdateAddress(ctx context.Context, a *model.Address) error {
	return r.updateDoc(ctx, model.CollectionAddresses, a.ID, a, a.IsDefault)
}

// DeleteAddress удаляет адрес.
func (r *PostgresRepository) DeleteAddress(ctx context.Context, id string) error {
	return r.deleteDoc(ctx, model.CollectionAddresses, id)
}

// GetPaymentMethod возвращает способ оплаты по идентификатору.
func (r *PostgresRepository) GetPaymentMethod(ctx context.Context, id string) (*model.PaymentMethod, error) {
	row, err := r.getDoc(ctx, model.CollectionPaymentMethods, id)
	if err != nil {
		return nil, err
	}
	return decodePaymentMethod(row)
}

// ListPaymentMethods возвращает способы оплаты пользователя, начиная с последнего.
func (r *PostgresRepository) ListPaymentMethods(ctx context.Context, userID string) ([]model.PaymentMethod, error) {
	rows, err := r.listDocs(ctx, model.CollectionPaymentMethods, userID)
	if err != nil {
		return nil, err
	}

	res := make([]model.PaymentMethod, 0, len(rows))
	for _, row := range rows {
		m, err := decodePaymentMethod(row)
		if err != nil {
			return nil, err
		}
		res = append(res, *m)
	}
	return res, nil
}

// CreatePaymentMethod сохраняет новый способ оплаты.
func (r *PostgresRepository) CreatePaymentMethod(ctx context.Context, m *model.PaymentMethod) error {
	return r.insertDoc(ctx, model.CollectionPaymentMethods, m.ID, m.UserID, m, m.CreatedAt)
}

// UpdatePaymentMethod перезаписывает способ оплаты.
func (r *PostgresRepository) UpdatePaymentMethod(ctx context.Context, m *model.PaymentMethod) error {
	return r.updateDoc(ctx, model.CollectionPaymentMethods, m.ID, m, m.IsDefault)
}

// DeletePaymentMethod удаляет способ оплаты.
func (r *PostgresRepository) DeletePaymentMethod(ctx context.Context, id string) error {
	return r.deleteDoc(ctx, model.CollectionPaymentMethods, id)
}
