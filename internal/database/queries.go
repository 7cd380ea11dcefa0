package database

import (
	"context"

	"github.com/jackc/pgx/v5"
)

const resetProducts = `DELETE FROM products`

func (q *Queries) ResetProducts(ctx context.Context) error {
	_, err := q.db.Exec(ctx, resetProducts)
	return err
}

const resetUsers = `DELETE FROM users`

func (q *Queries) ResetUsers(ctx context.Context) error {
	_, err := q.db.Exec(ctx, resetUsers)
	return err
}

const resetAddresses = `DELETE FROM addresses`

func (q *Queries) ResetAddresses(ctx context.Context) error {
	_, err := q.db.Exec(ctx, resetAddresses)
	return err
}

const resetCarts = `DELETE FROM carts`

func (q *Queries) ResetCarts(ctx context.Context) error {
	_, err := q.db.Exec(ctx, resetCarts)
	return err
}

const resetOrders = `DELETE FROM orders`

func (q *Queries) ResetOrders(ctx context.Context) error {
	_, err := q.db.Exec(ctx, resetOrders)
	return err
}

const resetOrderProducts = `DELETE FROM order_products`

func (q *Queries) ResetOrderProducts(ctx context.Context) error {
	_, err := q.db.Exec(ctx, resetOrderProducts)
	return err
}

// Bulk inserts use the COPY protocol: one round trip per entity batch.

func (q *Queries) InsertProducts(ctx context.Context, rows []Product) (int64, error) {
	return q.db.CopyFrom(ctx,
		pgx.Identifier{"products"},
		[]string{"id", "name", "price"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			return []any{r.ID, r.Name, r.Price}, nil
		}),
	)
}

func (q *Queries) InsertUsers(ctx context.Context, rows []User) (int64, error) {
	return q.db.CopyFrom(ctx,
		pgx.Identifier{"users"},
		[]string{"id", "name", "email", "password"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			return []any{r.ID, r.Name, r.Email, r.Password}, nil
		}),
	)
}

func (q *Queries) InsertAddresses(ctx context.Context, rows []Address) (int64, error) {
	return q.db.CopyFrom(ctx,
		pgx.Identifier{"addresses"},
		[]string{"id", "user_id", "street", "city", "state", "zip_code", "country", "is_default"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			return []any{r.ID, r.UserID, r.Street, r.City, r.State, r.ZipCode, r.Country, r.IsDefault}, nil
		}),
	)
}

func (q *Queries) InsertCarts(ctx context.Context, rows []Cart) (int64, error) {
	return q.db.CopyFrom(ctx,
		pgx.Identifier{"carts"},
		[]string{"id", "user_id", "product_id", "quantity", "created_at"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			return []any{r.ID, r.UserID, r.ProductID, r.Quantity, r.CreatedAt}, nil
		}),
	)
}

func (q *Queries) InsertOrders(ctx context.Context, rows []Order) (int64, error) {
	return q.db.CopyFrom(ctx,
		pgx.Identifier{"orders"},
		[]string{"id", "user_id", "created_at"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			return []any{r.ID, r.UserID, r.CreatedAt}, nil
		}),
	)
}

func (q *Queries) InsertOrderProducts(ctx context.Context, rows []OrderProduct) (int64, error) {
	return q.db.CopyFrom(ctx,
		pgx.Identifier{"order_products"},
		[]string{"id", "order_id", "product_id", "quantity"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			return []any{r.ID, r.OrderID, r.ProductID, r.Quantity}, nil
		}),
	)
}
