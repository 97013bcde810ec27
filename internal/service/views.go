package service

import "github.com/creamcroissant/bakehub/internal/repository"

// UserView is a user without credentials.
type UserView struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	IsAdmin     bool   `json:"is_admin"`
	Status      int    `json:"status"`
	LastLoginAt *int64 `json:"last_login_at,omitempty"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

func toUserView(u *repository.User) *UserView {
	return &UserView{
		ID: u.ID, Email: u.Email, Name: u.Name, IsAdmin: u.IsAdmin, Status: u.Status,
		LastLoginAt: u.LastLoginAt, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
	}
}

// ThemeView 主题。
type ThemeView struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	DisplayName  string `json:"display_name"`
	PrimaryColor string `json:"primary_color"`
	AccentColor  string `json:"accent_color"`
	FontFamily   string `json:"font_family"`
	Featured     bool   `json:"featured"`
}

func toThemeView(t *repository.Theme) *ThemeView {
	return &ThemeView{
		ID: t.ID, Name: t.Name, DisplayName: t.DisplayName, PrimaryColor: t.PrimaryColor,
		AccentColor: t.AccentColor, FontFamily: t.FontFamily, Featured: t.Featured,
	}
}

// BakerView 店铺资料。
type BakerView struct {
	ID           int64  `json:"id"`
	Slug         string `json:"slug"`
	BusinessName string `json:"business_name"`
	Bio          string `json:"bio"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	Location     string `json:"location"`
	ThemeName    string `json:"theme_name"`
	LogoFileID   *int64 `json:"logo_file_id,omitempty"`
	Published    bool   `json:"published"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
}

func toBakerView(b *repository.Baker) *BakerView {
	return &BakerView{
		ID: b.ID, Slug: b.Slug, BusinessName: b.BusinessName, Bio: b.Bio, Phone: b.Phone, Email: b.Email,
		Location: b.Location, ThemeName: b.ThemeName, LogoFileID: b.LogoFileID, Published: b.Published,
		CreatedAt: b.CreatedAt, UpdatedAt: b.UpdatedAt,
	}
}

// publicBakerView hides the contact details a storefront does not publish.
func publicBakerView(b *repository.Baker) *BakerView {
	v := toBakerView(b)
	v.Phone, v.Email = "", ""
	return v
}

// CustomerView 客户。
type CustomerView struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Notes     string `json:"notes"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

func toCustomerView(c *repository.Customer) *CustomerView {
	return &CustomerView{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone, Notes: c.Notes, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

// OrderView 订单。
type OrderView struct {
	ID          int64  `json:"id"`
	CustomerID  *int64 `json:"customer_id,omitempty"`
	Reference   string `json:"reference"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	Quantity    int    `json:"quantity"`
	PriceCents  int64  `json:"price_cents"`
	DueDate     int64  `json:"due_date"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

func toOrderView(o *repository.Order) *OrderView {
	return &OrderView{
		ID: o.ID, CustomerID: o.CustomerID, Reference: o.Reference, Title: o.Title, Description: o.Description,
		Category: o.Category, Status: o.Status, Quantity: o.Quantity, PriceCents: o.PriceCents, DueDate: o.DueDate,
		CreatedAt: o.CreatedAt, UpdatedAt: o.UpdatedAt,
	}
}

// FileView 上传文件。
type FileView struct {
	ID           int64  `json:"id"`
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type"`
	Size         int64  `json:"size"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	HasThumbnail bool   `json:"has_thumbnail"`
	CreatedAt    int64  `json:"created_at"`
}

func toFileView(f *repository.File) *FileView {
	return &FileView{
		ID: f.ID, OriginalName: f.OriginalName, MimeType: f.MimeType, Size: f.Size, Width: f.Width, Height: f.Height,
		HasThumbnail: f.ThumbnailKey != "", CreatedAt: f.CreatedAt,
	}
}

// GalleryItemView 作品展示。
type GalleryItemView struct {
	ID          int64  `json:"id"`
	FileID      *int64 `json:"file_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Featured    bool   `json:"featured"`
	Sort        int64  `json:"sort"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

func toGalleryItemView(g *repository.GalleryItem) *GalleryItemView {
	return &GalleryItemView{
		ID: g.ID, FileID: g.FileID, Title: g.Title, Description: g.Description, Category: g.Category,
		Featured: g.Featured, Sort: g.Sort, CreatedAt: g.CreatedAt, UpdatedAt: g.UpdatedAt,
	}
}

// MessageView 留言。
type MessageView struct {
	ID          int64  `json:"id"`
	CustomerID  *int64 `json:"customer_id,omitempty"`
	OrderID     *int64 `json:"order_id,omitempty"`
	SenderName  string `json:"sender_name"`
	SenderEmail string `json:"sender_email"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	Read        bool   `json:"read"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

func toMessageView(m *repository.Message) *MessageView {
	return &MessageView{
		ID: m.ID, CustomerID: m.CustomerID, OrderID: m.OrderID, SenderName: m.SenderName, SenderEmail: m.SenderEmail,
		Subject: m.Subject, Body: m.Body, Read: m.Read, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
	}
}

func mapViews[T, V any](items []*T, conv func(*T) *V) []*V {
	out := make([]*V, 0, len(items))
	for _, it := range items {
		out = append(out, conv(it))
	}
	return out
}
