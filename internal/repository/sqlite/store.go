// 文件路径: internal/repository/sqlite/store.go
// 模块说明: 这是 internal 模块里的 store 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/creamcroissant/bakehub/internal/query"
	"github.com/creamcroissant/bakehub/internal/repository"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store wires SQLite-backed repository implementations.
type Store struct {
	db        *sql.DB
	tx        *sql.Tx
	bounds    query.Bounds
	users     repository.UserRepository
	settings  repository.SettingRepository
	tokens    repository.TokenRepository
	loginLogs repository.LoginLogRepository
	themes    repository.ThemeRepository
	bakers    repository.BakerRepository
	customers repository.CustomerRepository
	orders    repository.OrderRepository
	files     repository.FileRepository
	gallery   repository.GalleryRepository
	messages  repository.MessageRepository
}

// Option customizes the store.
type Option func(*lister)

// WithQueryBounds sets the paging limits applied to every list query.
func WithQueryBounds(bounds query.Bounds) Option {
	return func(l *lister) {
		l.bounds = bounds
	}
}

// NewStore constructs a SQLite-backed repository store.
func NewStore(db *sql.DB, opts ...Option) *Store {
	l := &lister{bounds: query.DefaultBounds}
	for _, opt := range opts {
		opt(l)
	}
	return bind(db, nil, l.bounds)
}

func bind(db *sql.DB, tx *sql.Tx, bounds query.Bounds) *Store {
	var q dbtx = db
	if tx != nil {
		q = tx
	}
	l := &lister{db: q, bounds: bounds}
	return &Store{
		db:        db,
		tx:        tx,
		bounds:    bounds,
		users:     &userRepo{db: q, lister: l},
		settings:  &settingRepo{db: q},
		tokens:    &tokenRepo{db: q},
		loginLogs: &loginLogRepo{db: q},
		themes:    &themeRepo{db: q, lister: l},
		bakers:    &bakerRepo{db: q, lister: l},
		customers: &customerRepo{db: q, lister: l},
		orders:    &orderRepo{db: q, lister: l},
		files:     &fileRepo{db: q, lister: l},
		gallery:   &galleryRepo{db: q, lister: l},
		messages:  &messageRepo{db: q, lister: l},
	}
}

// WithTx 在同一个事务中执行 fn，fn 返回错误时整体回滚。
// 嵌套调用复用外层事务。
func (s *Store) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(bind(s.db, tx, s.bounds)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// DB exposes the underlying handle for maintenance commands.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Users() repository.UserRepository         { return s.users }
func (s *Store) Settings() repository.SettingRepository   { return s.settings }
func (s *Store) Tokens() repository.TokenRepository       { return s.tokens }
func (s *Store) LoginLogs() repository.LoginLogRepository { return s.loginLogs }
func (s *Store) Themes() repository.ThemeRepository       { return s.themes }
func (s *Store) Bakers() repository.BakerRepository       { return s.bakers }
func (s *Store) Customers() repository.CustomerRepository { return s.customers }
func (s *Store) Orders() repository.OrderRepository       { return s.orders }
func (s *Store) Files() repository.FileRepository         { return s.files }
func (s *Store) Gallery() repository.GalleryRepository    { return s.gallery }
func (s *Store) Messages() repository.MessageRepository   { return s.messages }

var _ repository.Store = (*Store)(nil)
