package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/creamcroissant/bakehub/internal/repository"
)

type orderRepo struct {
	db     dbtx
	lister *lister
}

const orderColumns = `id, baker_id, customer_id, reference, title, description, category, status, quantity, price_cents, due_date, created_at, updated_at`

func (r *orderRepo) FindByID(ctx context.Context, bakerID, id int64) (*repository.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE baker_id = ? AND id = ?`, bakerID, id)
	order, err := scanOrder(row)
	return order, mapNoRows(err)
}

func (r *orderRepo) FindByReference(ctx context.Context, reference string) (*repository.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE reference = ?`, reference)
	order, err := scanOrder(row)
	return order, mapNoRows(err)
}

func (r *orderRepo) Create(ctx context.Context, order *repository.Order) (*repository.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	stampTimes(&order.CreatedAt, &order.UpdatedAt)
	const stmt = `INSERT INTO orders(baker_id, customer_id, reference, title, description, category, status, quantity, price_cents, due_date, created_at, updated_at)
                  VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, stmt,
		order.BakerID, optionalInt64(order.CustomerID), order.Reference, order.Title, order.Description, order.Category,
		order.Status, order.Quantity, order.PriceCents, order.DueDate, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	if id, err := res.LastInsertId(); err == nil {
		order.ID = id
	}
	return order, nil
}

func (r *orderRepo) Update(ctx context.Context, order *repository.Order) error {
	if order == nil {
		return errors.New("order is nil")
	}
	const stmt = `UPDATE orders
                  SET customer_id = ?, title = ?, description = ?, category = ?, status = ?, quantity = ?, price_cents = ?, due_date = ?, updated_at = ?
                  WHERE baker_id = ? AND id = ?`
	res, err := r.db.ExecContext(ctx, stmt,
		optionalInt64(order.CustomerID), order.Title, order.Description, order.Category, order.Status, order.Quantity,
		order.PriceCents, order.DueDate, order.UpdatedAt, order.BakerID, order.ID,
	)
	return affectedOrNotFound(res, err)
}

func (r *orderRepo) Delete(ctx context.Context, bakerID, id int64) error {
	return affectedOrNotFound(r.db.ExecContext(ctx, `DELETE FROM orders WHERE baker_id = ? AND id = ?`, bakerID, id))
}

func (r *orderRepo) List(ctx context.Context, q repository.ListQuery) ([]*repository.Order, int64, error) {
	return listRows(ctx, r.lister, repository.OrderSchema, "orders", orderColumns, q, scanOrder)
}

func (r *orderRepo) CountByStatus(ctx context.Context, bakerID int64) ([]repository.OrderStatusCount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders WHERE baker_id = ? GROUP BY status ORDER BY status`, bakerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []repository.OrderStatusCount
	for rows.Next() {
		var c repository.OrderStatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func scanOrder(row rowScanner) (*repository.Order, error) {
	var (
		o        repository.Order
		customer sql.NullInt64
	)
	if err := row.Scan(&o.ID, &o.BakerID, &customer, &o.Reference, &o.Title, &o.Description, &o.Category, &o.Status,
		&o.Quantity, &o.PriceCents, &o.DueDate, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.CustomerID = nullableIntPtr(customer)
	return &o, nil
}
