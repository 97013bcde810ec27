// 文件路径: internal/repository/types.go
// 模块说明: 这是 internal 模块里的 types 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package repository

// User status values.
const (
	UserStatusDisabled = 0
	UserStatusActive   = 1
)

// User is an account able to sign in; bakers and admins are both users.
type User struct {
	ID          int64
	Email       string
	Password    string
	Name        string
	IsAdmin     bool
	Status      int
	LastLoginAt *int64
	CreatedAt   int64
	UpdatedAt   int64
}

// Setting is a key/value configuration row.
type Setting struct {
	Key       string
	Value     string
	Category  string
	UpdatedAt int64
}

// AccessToken tracks an issued refresh token.
type AccessToken struct {
	ID               int64
	UserID           int64
	RefreshToken     string
	RefreshExpiresAt int64
	IP               string
	UserAgent        string
	Revoked          bool
	CreatedAt        int64
	UpdatedAt        int64
}

// LoginLog records a login attempt.
type LoginLog struct {
	ID        int64
	UserID    *int64
	Email     string
	IP        string
	UserAgent string
	Success   bool
	Reason    string
	CreatedAt int64
}

// Theme is a storefront look a baker can pick.
type Theme struct {
	ID           int64
	Name         string
	DisplayName  string
	PrimaryColor string
	AccentColor  string
	FontFamily   string
	Featured     bool
	CreatedAt    int64
	UpdatedAt    int64
}

// Baker is the business profile owned by one user.
type Baker struct {
	ID           int64
	UserID       int64
	Slug         string
	BusinessName string
	Bio          string
	Phone        string
	Email        string
	Location     string
	ThemeName    string
	LogoFileID   *int64
	Published    bool
	CreatedAt    int64
	UpdatedAt    int64
}

// Customer belongs to a single baker.
type Customer struct {
	ID        int64
	BakerID   int64
	Name      string
	Email     string
	Phone     string
	Notes     string
	CreatedAt int64
	UpdatedAt int64
}

// Order status values.
const (
	OrderStatusInquiry    = "inquiry"
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusInProgress = "in_progress"
	OrderStatusReady      = "ready"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Order is a custom bake commissioned by a customer.
type Order struct {
	ID          int64
	BakerID     int64
	CustomerID  *int64
	Reference   string
	Title       string
	Description string
	Category    string
	Status      string
	Quantity    int
	PriceCents  int64
	DueDate     int64
	CreatedAt   int64
	UpdatedAt   int64
}

// OrderStatusCount aggregates orders per status.
type OrderStatusCount struct {
	Status string
	Count  int64
}

// File is an uploaded object tracked in storage.
type File struct {
	ID           int64
	BakerID      int64
	StorageKey   string
	ThumbnailKey string
	OriginalName string
	MimeType     string
	Size         int64
	Width        int
	Height       int
	CreatedAt    int64
}

// GalleryItem is a showcased creation.
type GalleryItem struct {
	ID          int64
	BakerID     int64
	FileID      *int64
	Title       string
	Description string
	Category    string
	Featured    bool
	Sort        int64
	CreatedAt   int64
	UpdatedAt   int64
}

// Message is an inquiry or note received by a baker.
type Message struct {
	ID          int64
	BakerID     int64
	CustomerID  *int64
	OrderID     *int64
	SenderName  string
	SenderEmail string
	Subject     string
	Body        string
	Read        bool
	CreatedAt   int64
	UpdatedAt   int64
}
