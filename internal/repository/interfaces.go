// 文件路径: internal/repository/interfaces.go
// 模块说明: 这是 internal 模块里的 interfaces 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package repository

import "context"

// Store exposes every repository backed by one database.
type Store interface {
	Users() UserRepository
	Settings() SettingRepository
	Tokens() TokenRepository
	LoginLogs() LoginLogRepository
	Themes() ThemeRepository
	Bakers() BakerRepository
	Customers() CustomerRepository
	Orders() OrderRepository
	Files() FileRepository
	Gallery() GalleryRepository
	Messages() MessageRepository

	// WithTx runs fn with repositories bound to a single transaction.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// UserRepository persists accounts.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
	Update(ctx context.Context, user *User) error
	List(ctx context.Context, q ListQuery) ([]*User, int64, error)
	Count(ctx context.Context) (int64, error)
}

// SettingRepository persists key/value settings.
type SettingRepository interface {
	Get(ctx context.Context, key string) (*Setting, error)
	Upsert(ctx context.Context, setting *Setting) error
	List(ctx context.Context) ([]*Setting, error)
}

// TokenRepository persists refresh tokens.
type TokenRepository interface {
	Create(ctx context.Context, token *AccessToken) (*AccessToken, error)
	FindByRefreshToken(ctx context.Context, refreshToken string) (*AccessToken, error)
	DeleteByRefreshToken(ctx context.Context, refreshToken string) error
	DeleteByUser(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context, before int64) (int64, error)
}

// LoginLogRepository persists login attempts.
type LoginLogRepository interface {
	Create(ctx context.Context, log *LoginLog) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]*LoginLog, error)
	DeleteBefore(ctx context.Context, before int64) (int64, error)
}

// ThemeRepository persists storefront themes.
type ThemeRepository interface {
	FindByID(ctx context.Context, id int64) (*Theme, error)
	FindByName(ctx context.Context, name string) (*Theme, error)
	Create(ctx context.Context, theme *Theme) (*Theme, error)
	Update(ctx context.Context, theme *Theme) error
	Upsert(ctx context.Context, theme *Theme) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, q ListQuery) ([]*Theme, int64, error)
}

// BakerRepository persists baker profiles.
type BakerRepository interface {
	FindByID(ctx context.Context, id int64) (*Baker, error)
	FindByUserID(ctx context.Context, userID int64) (*Baker, error)
	FindBySlug(ctx context.Context, slug string) (*Baker, error)
	Create(ctx context.Context, baker *Baker) (*Baker, error)
	Update(ctx context.Context, baker *Baker) error
	List(ctx context.Context, q ListQuery) ([]*Baker, int64, error)
}

// CustomerRepository persists a baker's customers.
type CustomerRepository interface {
	FindByID(ctx context.Context, bakerID, id int64) (*Customer, error)
	FindByEmail(ctx context.Context, bakerID int64, email string) (*Customer, error)
	Create(ctx context.Context, customer *Customer) (*Customer, error)
	Update(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, bakerID, id int64) error
	List(ctx context.Context, q ListQuery) ([]*Customer, int64, error)
}

// OrderRepository persists orders.
type OrderRepository interface {
	FindByID(ctx context.Context, bakerID, id int64) (*Order, error)
	FindByReference(ctx context.Context, reference string) (*Order, error)
	Create(ctx context.Context, order *Order) (*Order, error)
	Update(ctx context.Context, order *Order) error
	Delete(ctx context.Context, bakerID, id int64) error
	List(ctx context.Context, q ListQuery) ([]*Order, int64, error)
	CountByStatus(ctx context.Context, bakerID int64) ([]OrderStatusCount, error)
}

// FileRepository persists uploaded file metadata.
type FileRepository interface {
	FindByID(ctx context.Context, id int64) (*File, error)
	Create(ctx context.Context, file *File) (*File, error)
	Delete(ctx context.Context, bakerID, id int64) error
	List(ctx context.Context, q ListQuery) ([]*File, int64, error)
}

// GalleryRepository persists gallery items.
type GalleryRepository interface {
	FindByID(ctx context.Context, bakerID, id int64) (*GalleryItem, error)
	Create(ctx context.Context, item *GalleryItem) (*GalleryItem, error)
	Update(ctx context.Context, item *GalleryItem) error
	Delete(ctx context.Context, bakerID, id int64) error
	List(ctx context.Context, q ListQuery) ([]*GalleryItem, int64, error)
}

// MessageRepository persists inbound messages.
type MessageRepository interface {
	FindByID(ctx context.Context, bakerID, id int64) (*Message, error)
	Create(ctx context.Context, msg *Message) (*Message, error)
	MarkRead(ctx context.Context, bakerID, id int64, read bool, updatedAt int64) error
	Delete(ctx context.Context, bakerID, id int64) error
	List(ctx context.Context, q ListQuery) ([]*Message, int64, error)
	CountUnread(ctx context.Context, bakerID int64) (int64, error)
}
