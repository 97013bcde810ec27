package sqlite

import (
	"context"
	"errors"
	"strings"

	"github.com/creamcroissant/bakehub/internal/repository"
)

type customerRepo struct {
	db     dbtx
	lister *lister
}

const customerColumns = `id, baker_id, name, email, phone, notes, created_at, updated_at`

func (r *customerRepo) FindByID(ctx context.Context, bakerID, id int64) (*repository.Customer, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE baker_id = ? AND id = ?`, bakerID, id)
	customer, err := scanCustomer(row)
	return customer, mapNoRows(err)
}

func (r *customerRepo) FindByEmail(ctx context.Context, bakerID int64, email string) (*repository.Customer, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return nil, repository.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE baker_id = ? AND email = ?`, bakerID, normalized)
	customer, err := scanCustomer(row)
	return customer, mapNoRows(err)
}

func (r *customerRepo) Create(ctx context.Context, customer *repository.Customer) (*repository.Customer, error) {
	if customer == nil {
		return nil, errors.New("customer is nil")
	}
	stampTimes(&customer.CreatedAt, &customer.UpdatedAt)
	customer.Email = strings.ToLower(strings.TrimSpace(customer.Email))
	const stmt = `INSERT INTO customers(baker_id, name, email, phone, notes, created_at, updated_at)
                  VALUES(?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, stmt,
		customer.BakerID, customer.Name, customer.Email, customer.Phone, customer.Notes, customer.CreatedAt, customer.UpdatedAt,
	)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	if id, err := res.LastInsertId(); err == nil {
		customer.ID = id
	}
	return customer, nil
}

func (r *customerRepo) Update(ctx context.Context, customer *repository.Customer) error {
	if customer == nil {
		return errors.New("customer is nil")
	}
	const stmt = `UPDATE customers SET name = ?, email = ?, phone = ?, notes = ?, updated_at = ?
                  WHERE baker_id = ? AND id = ?`
	res, err := r.db.ExecContext(ctx, stmt,
		customer.Name, strings.ToLower(strings.TrimSpace(customer.Email)), customer.Phone, customer.Notes, customer.UpdatedAt,
		customer.BakerID, customer.ID,
	)
	return affectedOrNotFound(res, err)
}

func (r *customerRepo) Delete(ctx context.Context, bakerID, id int64) error {
	return affectedOrNotFound(r.db.ExecContext(ctx, `DELETE FROM customers WHERE baker_id = ? AND id = ?`, bakerID, id))
}

func (r *customerRepo) List(ctx context.Context, q repository.ListQuery) ([]*repository.Customer, int64, error) {
	return listRows(ctx, r.lister, repository.CustomerSchema, "customers", customerColumns, q, scanCustomer)
}

func scanCustomer(row rowScanner) (*repository.Customer, error) {
	var c repository.Customer
	if err := row.Scan(&c.ID, &c.BakerID, &c.Name, &c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
