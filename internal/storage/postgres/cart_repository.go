package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const opTimeout = 5 * time.Second

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository создаёт PostgreSQL-реализацию CartRepository.
func NewCartRepository(store *Store) domain.CartRepository {
	return &cartRepository{db: store.DB()}
}

func (r *cartRepository) GetActive(ownerID string) (domain.Cart, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		cart        domain.Cart
		couponCode  sql.NullString
		couponKind  sql.NullString
		couponValue sql.NullInt64
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id,
		       subtotal_minor, tax_minor, shipping_minor, discount_minor, total_minor,
		       coupon_code, coupon_kind, coupon_value,
		       is_active, version, created_at, updated_at
		FROM carts
		WHERE owner_id = $1
		  AND is_active
	`, ownerID).Scan(
		&cart.ID, &cart.OwnerID,
		&cart.SubtotalMinor, &cart.TaxMinor, &cart.ShippingMinor, &cart.DiscountMinor, &cart.TotalMinor,
		&couponCode, &couponKind, &couponValue,
		&cart.IsActive, &cart.Version, &cart.CreatedAt, &cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Cart{}, domain.ErrCartNotFound
		}
		return domain.Cart{}, fmt.Errorf("select active cart: %w", err)
	}

	if couponCode.Valid {
		cart.Coupon = &domain.Coupon{
			Code:  couponCode.String,
			Kind:  domain.CouponKind(couponKind.String),
			Value: couponValue.Int64,
		}
	}

	items, err := loadLineItems(ctx, r.db, "cart_items", "cart_id", cart.ID)
	if err != nil {
		return domain.Cart{}, err
	}
	cart.Items = items

	return cart, nil
}

func (r *cartRepository) Create(cart domain.Cart) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	couponCode, couponKind, couponValue := couponColumns(cart.Coupon)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO carts (
			id, owner_id,
			subtotal_minor, tax_minor, shipping_minor, discount_minor, total_minor,
			coupon_code, coupon_kind, coupon_value,
			is_active, version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		cart.ID, cart.OwnerID,
		cart.SubtotalMinor, cart.TaxMinor, cart.ShippingMinor, cart.DiscountMinor, cart.TotalMinor,
		couponCode, couponKind, couponValue,
		cart.IsActive, cart.Version, cart.CreatedAt, cart.UpdatedAt,
	)
	if err != nil {
		// Частичный уникальный индекс по owner_id: активная корзина уже есть.
		if isUniqueViolation(err) {
			return domain.ErrActiveCartExists
		}
		return fmt.Errorf("insert cart: %w", err)
	}

	if err = insertLineItems(ctx, tx, "cart_items", "cart_id", cart.ID, cart.Items); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create cart: %w", err)
	}

	return nil
}

func (r *cartRepository) Save(cart domain.Cart) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	couponCode, couponKind, couponValue := couponColumns(cart.Coupon)
	res, err := tx.ExecContext(ctx, `
		UPDATE carts
		SET subtotal_minor = $1,
		    tax_minor = $2,
		    shipping_minor = $3,
		    discount_minor = $4,
		    total_minor = $5,
		    coupon_code = $6,
		    coupon_kind = $7,
		    coupon_value = $8,
		    is_active = $9,
		    version = version + 1,
		    updated_at = $10
		WHERE id = $11
		  AND version = $12
	`,
		cart.SubtotalMinor, cart.TaxMinor, cart.ShippingMinor, cart.DiscountMinor, cart.TotalMinor,
		couponCode, couponKind, couponValue,
		cart.IsActive, cart.UpdatedAt,
		cart.ID, cart.Version,
	)
	if err != nil {
		return fmt.Errorf("update cart: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		exists, existsErr := cartExistsTx(ctx, tx, cart.ID)
		if existsErr != nil {
			err = existsErr
			return err
		}
		if !exists {
			err = domain.ErrCartNotFound
			return err
		}
		err = domain.ErrCartVersionConflict
		return err
	}

	// Позиции переписываются целиком: корзины маленькие, diff не окупается.
	if _, err = tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cart.ID); err != nil {
		return fmt.Errorf("delete cart items: %w", err)
	}
	if err = insertLineItems(ctx, tx, "cart_items", "cart_id", cart.ID, cart.Items); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save cart: %w", err)
	}

	return nil
}

func cartExistsTx(ctx context.Context, tx *sql.Tx, cartID string) (bool, error) {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM carts WHERE id = $1`, cartID).Scan(&id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check cart exists: %w", err)
}

func couponColumns(coupon *domain.Coupon) (sql.NullString, sql.NullString, sql.NullInt64) {
	if coupon == nil {
		return sql.NullString{}, sql.NullString{}, sql.NullInt64{}
	}
	return sql.NullString{String: coupon.Code, Valid: true},
		sql.NullString{String: string(coupon.Kind), Valid: true},
		sql.NullInt64{Int64: coupon.Value, Valid: true}
}

// loadLineItems читает позиции корзины или заказа: таблицы делят одну схему.
func loadLineItems(ctx context.Context, db *sql.DB, table, fkColumn, parentID string) ([]domain.LineItem, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, reference_kind, reference_id, qty,
		       selected_color, selected_size,
		       unit_price_minor, unit_original_price_minor, created_at
		FROM %s
		WHERE %s = $1
		ORDER BY created_at ASC, id ASC
	`, table, fkColumn), parentID)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	defer rows.Close()

	items := make([]domain.LineItem, 0)
	for rows.Next() {
		var (
			item domain.LineItem
			kind string
		)
		if err := rows.Scan(
			&item.ID, &kind, &item.ReferenceID, &item.Qty,
			&item.SelectedColor, &item.SelectedSize,
			&item.UnitPriceMinor, &item.UnitOriginalPriceMinor, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		item.ReferenceKind = domain.ReferenceKind(kind)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", table, err)
	}

	return items, nil
}

func insertLineItems(ctx context.Context, tx *sql.Tx, table, fkColumn, parentID string, items []domain.LineItem) error {
	for _, item := range items {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s (
				id, %s, reference_kind, reference_id, qty,
				selected_color, selected_size,
				unit_price_minor, unit_original_price_minor, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`, table, fkColumn),
			item.ID, parentID, string(item.ReferenceKind), item.ReferenceID, item.Qty,
			item.SelectedColor, item.SelectedSize,
			item.UnitPriceMinor, item.UnitOriginalPriceMinor, item.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.CartRepository = (*cartRepository)(nil)
