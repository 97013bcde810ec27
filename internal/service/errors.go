// 文件路径: internal/service/errors.go
// 模块说明: 这是 internal 模块里的 errors 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package service

import "errors"

var (
	// ErrNotFound indicates the requested resource does not exist or is not visible to the caller.
	ErrNotFound = errors.New("service: not found / 未找到资源")
	// ErrInvalidInput indicates the payload failed validation.
	ErrInvalidInput = errors.New("service: invalid input / 参数不合法")
	// ErrInvalidQuery indicates a list query referenced an unknown field or bad value.
	ErrInvalidQuery = errors.New("service: invalid query / 查询参数不合法")
	// ErrConflict indicates a uniqueness violation.
	ErrConflict = errors.New("service: conflict / 资源冲突")
	// ErrInvalidCredentials indicates provided credentials are wrong.
	ErrInvalidCredentials = errors.New("service: invalid credentials / 凭证无效")
	// ErrRateLimited indicates caller exceeded allowed attempts.
	ErrRateLimited = errors.New("service: rate limited / 请求过于频繁")
	// ErrAccountDisabled indicates the account is disabled.
	ErrAccountDisabled = errors.New("service: account disabled / 账号已禁用")
	// ErrUnauthorized indicates missing or invalid auth tokens.
	ErrUnauthorized = errors.New("service: unauthorized / 未授权")
	// ErrForbidden indicates the caller lacks the role for the action.
	ErrForbidden = errors.New("service: forbidden / 无权限")
	// ErrInvalidRefreshToken indicates refresh token problems.
	ErrInvalidRefreshToken = errors.New("service: invalid refresh token / 刷新令牌无效")
	// ErrEmailExists indicates email already registered.
	ErrEmailExists = errors.New("service: email already exists / 邮箱已存在")
	// ErrSlugTaken indicates the storefront slug is in use.
	ErrSlugTaken = errors.New("service: slug taken / 店铺地址已被占用")
	// ErrInvalidStatusTransition indicates an order cannot move to the requested status.
	ErrInvalidStatusTransition = errors.New("service: invalid status transition / 订单状态流转非法")
	// ErrUnsupportedMedia indicates an upload type outside the allow list.
	ErrUnsupportedMedia = errors.New("service: unsupported media type / 不支持的文件类型")
	// ErrPayloadTooLarge indicates an upload above the configured limit.
	ErrPayloadTooLarge = errors.New("service: payload too large / 文件过大")
)
