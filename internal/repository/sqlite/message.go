package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/creamcroissant/bakehub/internal/repository"
)

type messageRepo struct {
	db     dbtx
	lister *lister
}

const messageColumns = `id, baker_id, customer_id, order_id, sender_name, sender_email, subject, body, read, created_at, updated_at`

func (r *messageRepo) FindByID(ctx context.Context, bakerID, id int64) (*repository.Message, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM messages WHERE baker_id = ? AND id = ?`, bakerID, id)
	msg, err := scanMessage(row)
	return msg, mapNoRows(err)
}

func (r *messageRepo) Create(ctx context.Context, msg *repository.Message) (*repository.Message, error) {
	if msg == nil {
		return nil, errors.New("message is nil")
	}
	stampTimes(&msg.CreatedAt, &msg.UpdatedAt)
	const stmt = `INSERT INTO messages(baker_id, customer_id, order_id, sender_name, sender_email, subject, body, read, created_at, updated_at)
                  VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, stmt,
		msg.BakerID, optionalInt64(msg.CustomerID), optionalInt64(msg.OrderID), msg.SenderName, msg.SenderEmail,
		msg.Subject, msg.Body, boolToInt(msg.Read), msg.CreatedAt, msg.UpdatedAt,
	)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	if id, err := res.LastInsertId(); err == nil {
		msg.ID = id
	}
	return msg, nil
}

func (r *messageRepo) MarkRead(ctx context.Context, bakerID, id int64, read bool, updatedAt int64) error {
	return affectedOrNotFound(r.db.ExecContext(ctx,
		`UPDATE messages SET read = ?, updated_at = ? WHERE baker_id = ? AND id = ?`,
		boolToInt(read), updatedAt, bakerID, id,
	))
}

func (r *messageRepo) Delete(ctx context.Context, bakerID, id int64) error {
	return affectedOrNotFound(r.db.ExecContext(ctx, `DELETE FROM messages WHERE baker_id = ? AND id = ?`, bakerID, id))
}

func (r *messageRepo) List(ctx context.Context, q repository.ListQuery) ([]*repository.Message, int64, error) {
	return listRows(ctx, r.lister, repository.MessageSchema, "messages", messageColumns, q, scanMessage)
}

func (r *messageRepo) CountUnread(ctx context.Context, bakerID int64) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE baker_id = ? AND read = 0`, bakerID).Scan(&total)
	return total, err
}

func scanMessage(row rowScanner) (*repository.Message, error) {
	var (
		msg      repository.Message
		customer sql.NullInt64
		order    sql.NullInt64
		read     int64
	)
	if err := row.Scan(&msg.ID, &msg.BakerID, &customer, &order, &msg.SenderName, &msg.SenderEmail, &msg.Subject,
		&msg.Body, &read, &msg.CreatedAt, &msg.UpdatedAt); err != nil {
		return nil, err
	}
	msg.CustomerID = nullableIntPtr(customer)
	msg.OrderID = nullableIntPtr(order)
	msg.Read = read == 1
	return &msg, nil
}
