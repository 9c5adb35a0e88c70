// Package repository содержит реализации хранилища документов витрины.
package repository

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/storefront-system/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrDuplicateCheckout возвращается, если заказ с таким ключом оформления уже сохранён.
var ErrDuplicateCheckout = errors.New("checkout already recorded")

// PostgresRepository хранит документы витрины в PostgreSQL (JSONB).
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func persistErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, model.ErrPersistence, err)
}

func (r *PostgresRepository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return persistErr("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return persistErr("commit tx", err)
	}
	return nil
}

// GetProduct возвращает товар каталога.
func (r *PostgresRepository) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, description, price::text, image, category, stock, created_at
		 FROM products WHERE id = $1`,
		id,
	)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", id, model.ErrNotFound)
		}
		return nil, persistErr("select product", err)
	}
	return p, nil
}

// ListProducts возвращает товары каталога, опционально отфильтрованные по категории.
func (r *PostgresRepository) ListProducts(ctx context.Context, category string) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, price::text, image, category, stock, created_at
		 FROM products
		 WHERE $1 = '' OR category = $1
		 ORDER BY created_at, id`,
		category,
	)
	if err != nil {
		return nil, persistErr("select products", err)
	}
	defer rows.Close()

	var res []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, persistErr("scan product", err)
		}
		res = append(res, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, persistErr("rows error", err)
	}
	return res, nil
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var (
		p     model.Product
		price string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &p.Image, &p.Category, &p.Stock, &p.CreatedAt); err != nil {
		return nil, err
	}

	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}
	p.Price = d
	return &p, nil
}

// GetCart возвращает корзину пользователя или model.ErrNotFound, если она ещё не создана.
func (r *PostgresRepository) GetCart(ctx context.Context, userID string) (*model.Cart, error) {
	cart, err := scanCart(r.pool.QueryRow(ctx, `SELECT `+cartColumns+` FROM carts WHERE user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("cart of %s: %w", userID, model.ErrNotFound)
		}
		return nil, persistErr("select cart", err)
	}
	return cart, nil
}

// EnsureCart возвращает корзину пользователя, создавая пустую при первом обращении.
func (r *PostgresRepository) EnsureCart(ctx context.Context, userID string, now time.Time) (*model.Cart, error) {
	var cart *model.Cart
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		cart, err = lockCart(ctx, tx, userID, now)
		return err
	})
	return cart, err
}

// UpdateCart выполняет read-modify-write корзины в одной транзакции с блокировкой строки.
// Если fn возвращает ошибку, изменения не сохраняются.
func (r *PostgresRepository) UpdateCart(ctx context.Context, userID string, now time.Time, fn func(*model.Cart) error) (*model.Cart, error) {
	var cart *model.Cart
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		cart, err = lockCart(ctx, tx, userID, now)
		if err != nil {
			return err
		}

		if err := fn(cart); err != nil {
			return err
		}

		doc, err := json.Marshal(cart)
		if err != nil {
			return fmt.Errorf("encode cart: %w", err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE carts SET doc = $2, version = $3, last_checkout_key = $4, updated_at = $5 WHERE user_id = $1`,
			userID, doc, cart.Version, cart.LastCheckoutKey, cart.UpdatedAt,
		)
		if err != nil {
			return persistErr("update cart", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func lockCart(ctx context.Context, tx pgx.Tx, userID string, now time.Time) (*model.Cart, error) {
	empty, err := json.Marshal(model.NewCart(userID, now))
	if err != nil {
		return nil, fmt.Errorf("encode cart: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO carts (user_id, doc, updated_at) VALUES ($1, $2, $3) ON CONFLICT (user_id) DO NOTHING`,
		userID, empty, now,
	)
	if err != nil {
		return nil, persistErr("insert cart", err)
	}

	cart, err := scanCart(tx.QueryRow(ctx, `SELECT `+cartColumns+` FROM carts WHERE user_id = $1 FOR UPDATE`, userID))
	if err != nil {
		return nil, persistErr("lock cart", err)
	}
	return cart, nil
}

const cartColumns = `doc, version, last_checkout_key`

// scanCart читает документ корзины. Версия и ключ оформления берутся из колонок.
func scanCart(row pgx.Row) (*model.Cart, error) {
	var (
		raw []byte
		c   model.Cart
		ver int64
		key string
	)
	if err := row.Scan(&raw, &ver, &key); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	c.Version = ver
	c.LastCheckoutKey = key
	if c.Items == nil {
		c.Items = []model.CartLine{}
	}
	if c.SaveForLater == nil {
		c.SaveForLater = []model.CartLine{}
	}
	return &c, nil
}

// CreateOrder сохраняет заказ. Повторный ключ оформления приводит к ErrDuplicateCheckout.
func (r *PostgresRepository) CreateOrder(ctx context.Context, o *model.Order) error {
	doc, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO orders (id, user_id, checkout_key, cart_version, total_price, doc, created_at)
		 VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)`,
		o.ID, o.UserID, o.CheckoutKey, o.CartVersion, o.TotalPrice.String(), doc, o.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicateCheckout, o.CheckoutKey)
		}
		return persistErr("insert order", err)
	}
	return nil
}

const orderColumns = `doc, checkout_key, cart_version`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		raw []byte
		o   model.Order
		key string
		ver int64
	)
	if err := row.Scan(&raw, &key, &ver); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	o.CheckoutKey = key
	o.CartVersion = ver
	return &o, nil
}

// GetOrder возвращает заказ пользователя.
func (r *PostgresRepository) GetOrder(ctx context.Context, userID, orderID string) (*model.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`,
		orderID, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", orderID, model.ErrNotFound)
		}
		return nil, persistErr("select order", err)
	}
	return o, nil
}

// GetOrderByCheckoutKey возвращает заказ, созданный с указанным ключом оформления.
func (r *PostgresRepository) GetOrderByCheckoutKey(ctx context.Context, userID, key string) (*model.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 AND checkout_key = $2`,
		userID, key,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order with key %s: %w", key, model.ErrNotFound)
		}
		return nil, persistErr("select order by key", err)
	}
	return o, nil
}

// GetOrdersByUser возвращает заказы пользователя, начиная с последнего.
func (r *PostgresRepository) GetOrdersByUser(ctx context.Context, userID string) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+`
		 FROM orders
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, persistErr("select orders", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, persistErr("scan order", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, persistErr("rows error", err)
	}
	return orders, nil
}

// UpdateProfile выполняет read-modify-write профиля, создавая его при отсутствии.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, userID string, now time.Time, fn func(*model.UserProfile) error) (*model.UserProfile, error) {
	var profile model.UserProfile
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		empty, err := json.Marshal(model.NewUserProfile(userID, now))
		if err != nil {
			return fmt.Errorf("encode profile: %w", err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO user_profiles (user_id, doc, updated_at) VALUES ($1, $2, $3) ON CONFLICT (user_id) DO NOTHING`,
			userID, empty, now,
		)
		if err != nil {
			return persistErr("insert profile", err)
		}

		var raw []byte
		err = tx.QueryRow(ctx, `SELECT doc FROM user_profiles WHERE user_id = $1 FOR UPDATE`, userID).Scan(&raw)
		if err != nil {
			return persistErr("lock profile", err)
		}
		if err := json.Unmarshal(raw, &profile); err != nil {
			return fmt.Errorf("decode profile: %w", err)
		}

		if err := fn(&profile); err != nil {
			return err
		}

		doc, err := json.Marshal(profile)
		if err != nil {
			return fmt.Errorf("encode profile: %w", err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE user_profiles SET doc = $2, updated_at = $3 WHERE user_id = $1`,
			userID, doc, now,
		)
		if err != nil {
			return persistErr("update profile", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func collectionTable(c model.Collection) (string, error) {
	switch c {
	case model.CollectionAddresses:
		return "addresses", nil
	case model.CollectionPaymentMethods:
		return "payment_methods", nil
	}
	return "", fmt.Errorf("unknown collection %q", c)
}

// SetDefault делает запись коллекции единственной записью по умолчанию у пользователя.
// Все записи пользователя блокируются до конца транзакции, поэтому конкурентные вызовы
// выполняются последовательно, а читатели видят либо прежнее, либо новое состояние.
func (r *PostgresRepository) SetDefault(ctx context.Context, c model.Collection, userID, id string) error {
	table, err := collectionTable(c)
	if err != nil {
		return err
	}

	return r.inTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT id FROM `+table+` WHERE user_id = $1 FOR UPDATE`, userID)
		if err != nil {
			return persistErr("lock "+table, err)
		}
		ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return persistErr("scan "+table, err)
		}

		found := false
		for _, existing := range ids {
			if existing == id {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%s %s of user %s: %w", table, id, userID, model.ErrNotFound)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE `+table+` SET is_default = FALSE WHERE user_id = $1 AND id <> $2 AND is_default`,
			userID, id,
		); err != nil {
			return persistErr("clear default", err)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE `+table+` SET is_default = TRUE WHERE id = $1`,
			id,
		); err != nil {
			return persistErr("set default", err)
		}
		return nil
	})
}
