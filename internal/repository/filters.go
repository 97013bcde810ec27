// 文件路径: internal/repository/filters.go
// 模块说明: 这是 internal 模块里的 filters 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package repository

import "github.com/creamcroissant/bakehub/internal/query"

// ListQuery drives every paginated listing.
// BakerID, when set, restricts rows to one tenant and cannot be overridden by
// the descriptor since no schema exposes baker_id.
type ListQuery struct {
	BakerID    *int64
	Descriptor query.Descriptor
	Scopes     []query.Scope
}

// ForBaker builds a tenant-scoped list query.
func ForBaker(bakerID int64, desc query.Descriptor) ListQuery {
	return ListQuery{BakerID: &bakerID, Descriptor: desc}
}
