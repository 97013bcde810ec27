package repository

import "github.com/creamcroissant/bakehub/internal/query"

// Entity names accepted by list endpoints.
const (
	EntityUsers     = "users"
	EntityThemes    = "themes"
	EntityBakers    = "bakers"
	EntityCustomers = "customers"
	EntityOrders    = "orders"
	EntityFiles     = "files"
	EntityGallery   = "gallery"
	EntityMessages  = "messages"
)

var (
	newestFirst = query.OrderBy{Field: "createdAt", Direction: query.Descending}

	createdAt = query.Field{Name: "createdAt", Column: "created_at", Kind: query.KindInt}
	updatedAt = query.Field{Name: "updatedAt", Column: "updated_at", Kind: query.KindInt}
	idField   = query.Field{Name: "id", Column: "id", Kind: query.KindInt}
)

// UserSchema is the admin-facing allow list for users. The password column is never listed.
var UserSchema = query.NewSchema(EntityUsers, newestFirst,
	idField,
	query.Field{Name: "email", Column: "email", Kind: query.KindText},
	query.Field{Name: "name", Column: "name", Kind: query.KindText},
	query.Field{Name: "isAdmin", Column: "is_admin", Kind: query.KindBool},
	query.Field{Name: "status", Column: "status", Kind: query.KindInt},
	createdAt, updatedAt,
)

// ThemeSchema exposes the theme name as themeName so the theme_name alias sorts it.
var ThemeSchema = query.NewSchema(EntityThemes, query.OrderBy{Field: "themeName", Direction: query.Ascending},
	idField,
	query.Field{Name: "themeName", Column: "name", Kind: query.KindText},
	query.Field{Name: "displayName", Column: "display_name", Kind: query.KindText},
	query.Field{Name: "featured", Column: "featured", Kind: query.KindBool},
	createdAt, updatedAt,
)

var BakerSchema = query.NewSchema(EntityBakers, newestFirst,
	idField,
	query.Field{Name: "slug", Column: "slug", Kind: query.KindText},
	query.Field{Name: "businessName", Column: "business_name", Kind: query.KindText},
	query.Field{Name: "location", Column: "location", Kind: query.KindText},
	query.Field{Name: "themeName", Column: "theme_name", Kind: query.KindText},
	query.Field{Name: "published", Column: "published", Kind: query.KindBool},
	createdAt, updatedAt,
)

var CustomerSchema = query.NewSchema(EntityCustomers, newestFirst,
	idField,
	query.Field{Name: "name", Column: "name", Kind: query.KindText},
	query.Field{Name: "email", Column: "email", Kind: query.KindText},
	query.Field{Name: "phone", Column: "phone", Kind: query.KindText},
	createdAt, updatedAt,
)

var OrderSchema = query.NewSchema(EntityOrders, newestFirst,
	idField,
	query.Field{Name: "customerId", Column: "customer_id", Kind: query.KindInt},
	query.Field{Name: "reference", Column: "reference", Kind: query.KindText},
	query.Field{Name: "title", Column: "title", Kind: query.KindText},
	query.Field{Name: "category", Column: "category", Kind: query.KindText},
	query.Field{Name: "status", Column: "status", Kind: query.KindText},
	query.Field{Name: "quantity", Column: "quantity", Kind: query.KindInt},
	query.Field{Name: "priceCents", Column: "price_cents", Kind: query.KindInt},
	query.Field{Name: "dueDate", Column: "due_date", Kind: query.KindInt},
	createdAt, updatedAt,
)

var FileSchema = query.NewSchema(EntityFiles, newestFirst,
	idField,
	query.Field{Name: "originalName", Column: "original_name", Kind: query.KindText},
	query.Field{Name: "mimeType", Column: "mime_type", Kind: query.KindText},
	query.Field{Name: "size", Column: "size", Kind: query.KindInt},
	createdAt,
)

var GallerySchema = query.NewSchema(EntityGallery, query.OrderBy{Field: "sort", Direction: query.Ascending},
	idField,
	query.Field{Name: "fileId", Column: "file_id", Kind: query.KindInt},
	query.Field{Name: "title", Column: "title", Kind: query.KindText},
	query.Field{Name: "category", Column: "category", Kind: query.KindText},
	query.Field{Name: "featured", Column: "featured", Kind: query.KindBool},
	query.Field{Name: "sort", Column: "sort", Kind: query.KindInt},
	createdAt, updatedAt,
)

var MessageSchema = query.NewSchema(EntityMessages, newestFirst,
	idField,
	query.Field{Name: "customerId", Column: "customer_id", Kind: query.KindInt},
	query.Field{Name: "orderId", Column: "order_id", Kind: query.KindInt},
	query.Field{Name: "senderEmail", Column: "sender_email", Kind: query.KindText},
	query.Field{Name: "subject", Column: "subject", Kind: query.KindText},
	query.Field{Name: "read", Column: "read", Kind: query.KindBool},
	createdAt, updatedAt,
)

// SchemaFor returns the schema registered for entity.
func SchemaFor(entity string) (*query.Schema, bool) {
	s, ok := schemas[entity]
	return s, ok
}

var schemas = map[string]*query.Schema{
	EntityUsers:     UserSchema,
	EntityThemes:    ThemeSchema,
	EntityBakers:    BakerSchema,
	EntityCustomers: CustomerSchema,
	EntityOrders:    OrderSchema,
	EntityFiles:     FileSchema,
	EntityGallery:   GallerySchema,
	EntityMessages:  MessageSchema,
}
