package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

func (r *orderRepository) Create(order domain.Order) error {
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

	couponCode, couponKind, couponValue := couponColumns(order.Coupon)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, owner_id, status,
			subtotal_minor, tax_minor, shipping_minor, discount_minor, total_minor,
			coupon_code, coupon_kind, coupon_value,
			ship_line1, ship_city, ship_region, ship_postal_code, ship_country,
			payment_method, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
	`,
		order.ID, order.OwnerID, string(order.Status),
		order.SubtotalMinor, order.TaxMinor, order.ShippingMinor, order.DiscountMinor, order.TotalMinor,
		couponCode, couponKind, couponValue,
		order.ShippingAddress.Line1, order.ShippingAddress.City, order.ShippingAddress.Region,
		order.ShippingAddress.PostalCode, order.ShippingAddress.Country,
		order.PaymentMethod, order.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOrderExists
		}
		return fmt.Errorf("insert order: %w", err)
	}

	if err = insertLineItems(ctx, tx, "order_items", "order_id", order.ID, order.Items); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create order: %w", err)
	}

	return nil
}

func (r *orderRepository) Get(id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	order, err := scanOrder(r.db.QueryRowContext(ctx, selectOrderQuery+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	items, err := loadLineItems(ctx, r.db, "order_items", "order_id", order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items

	return order, nil
}

func (r *orderRepository) ListByOwner(ownerID string, limit int) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := selectOrderQuery + `
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
	`

	var (
		rows *sql.Rows
		err  error
	)

	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, query+" LIMIT $2", ownerID, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, query, ownerID)
	}
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}

		items, err := loadLineItems(ctx, r.db, "order_items", "order_id", order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

func (r *orderRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}

	return nil
}

const selectOrderQuery = `
	SELECT id, owner_id, status,
	       subtotal_minor, tax_minor, shipping_minor, discount_minor, total_minor,
	       coupon_code, coupon_kind, coupon_value,
	       ship_line1, ship_city, ship_region, ship_postal_code, ship_country,
	       payment_method, created_at
	FROM orders
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order       domain.Order
		status      string
		couponCode  sql.NullString
		couponKind  sql.NullString
		couponValue sql.NullInt64
	)

	if err := row.Scan(
		&order.ID, &order.OwnerID, &status,
		&order.SubtotalMinor, &order.TaxMinor, &order.ShippingMinor, &order.DiscountMinor, &order.TotalMinor,
		&couponCode, &couponKind, &couponValue,
		&order.ShippingAddress.Line1, &order.ShippingAddress.City, &order.ShippingAddress.Region,
		&order.ShippingAddress.PostalCode, &order.ShippingAddress.Country,
		&order.PaymentMethod, &order.CreatedAt,
	); err != nil {
		return domain.Order{}, err
	}

	order.Status = domain.OrderStatus(status)
	if couponCode.Valid {
		order.Coupon = &domain.Coupon{
			Code:  couponCode.String,
			Kind:  domain.CouponKind(couponKind.String),
			Value: couponValue.Int64,
		}
	}

	return order, nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
