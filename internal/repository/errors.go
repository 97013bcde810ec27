// 文件路径: internal/repository/errors.go
// 模块说明: 这是 internal 模块里的 errors 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package repository

import "errors"

var (
	// ErrNotFound 表示查询不到记录。
	ErrNotFound = errors.New("not found / 未找到数据")
	// ErrConflict 表示唯一约束冲突。
	ErrConflict = errors.New("conflict / 数据冲突")
	// ErrInvalidQuery 表示列表查询参数不在字段白名单内或类型不匹配。
	ErrInvalidQuery = errors.New("invalid query / 查询参数无效")
)
