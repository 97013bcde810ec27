// 文件路径: internal/service/admin_user.go
// 模块说明: 这是 internal 模块里的 admin_user 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/creamcroissant/bakehub/internal/query"
	"github.com/creamcroissant/bakehub/internal/repository"
	"github.com/creamcroissant/bakehub/internal/security"
	"github.com/creamcroissant/bakehub/internal/support/hash"
	"github.com/creamcroissant/bakehub/internal/support/validate"
)

// AdminUserService 提供管理员专用的用户管理流程。
type AdminUserService interface {
	List(ctx context.Context, desc query.Descriptor) (*Page[*UserView], error)
	Get(ctx context.Context, id int64) (*UserView, error)
	Create(ctx context.Context, input AdminUserInput) (*UserView, error)
	SetStatus(ctx context.Context, actorID, id int64, active bool) (*UserView, error)
	ResetPassword(ctx context.Context, actorID, id int64, password string) error
}

// AdminUserInput creates an account from the admin panel or the CLI.
type AdminUserInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Name     string `json:"name" validate:"max=120"`
	IsAdmin  bool   `json:"is_admin"`
}

// AdminUserOptions 注入用户管理依赖。
type AdminUserOptions struct {
	Store     repository.Store
	Hasher    hash.Hasher
	Audit     security.Recorder
	Validator *validate.Validator
	Bounds    query.Bounds
	Now       func() time.Time
}

type adminUserService struct {
	users     repository.UserRepository
	tokens    repository.TokenRepository
	hasher    hash.Hasher
	audit     security.Recorder
	validator *validate.Validator
	bounds    query.Bounds
	now       func() time.Time
}

// NewAdminUserService 构建用户管理服务。
func NewAdminUserService(opts AdminUserOptions) AdminUserService {
	nowFn := opts.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	validator := opts.Validator
	if validator == nil {
		validator = validate.Default()
	}
	return &adminUserService{
		users:     opts.Store.Users(),
		tokens:    opts.Store.Tokens(),
		hasher:    opts.Hasher,
		audit:     opts.Audit,
		validator: validator,
		bounds:    opts.Bounds,
		now:       nowFn,
	}
}

func (s *adminUserService) List(ctx context.Context, desc query.Descriptor) (*Page[*UserView], error) {
	items, total, err := s.users.List(ctx, repository.ListQuery{Descriptor: desc})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return newPage(mapViews(items, toUserView), total, desc, s.bounds), nil
}

func (s *adminUserService) Get(ctx context.Context, id int64) (*UserView, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return toUserView(user), nil
}

func (s *adminUserService) Create(ctx context.Context, input AdminUserInput) (*UserView, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = sanitizeText(input.Name)
	if err := checkInput(s.validator, input); err != nil {
		return nil, err
	}
	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return nil, ErrEmailExists
	}
	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password / 密码加密失败: %w", err)
	}
	now := nowUnix(s.now)
	user, err := s.users.Create(ctx, &repository.User{
		Email:     input.Email,
		Password:  hashed,
		Name:      input.Name,
		IsAdmin:   input.IsAdmin,
		Status:    repository.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailExists
		}
		return nil, mapRepoErr(err)
	}
	return toUserView(user), nil
}

// SetStatus enables or disables an account. Disabling revokes every refresh token
// the user holds; admins cannot disable themselves.
func (s *adminUserService) SetStatus(ctx context.Context, actorID, id int64, active bool) (*UserView, error) {
	if !active && actorID == id {
		return nil, fmt.Errorf("%w: cannot disable your own account / 不能禁用自己的账号", ErrForbidden)
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	status := repository.UserStatusDisabled
	if active {
		status = repository.UserStatusActive
	}
	if user.Status != status {
		user.Status = status
		user.UpdatedAt = nowUnix(s.now)
		if err := s.users.Update(ctx, user); err != nil {
			return nil, mapRepoErr(err)
		}
	}
	if !active {
		if err := s.tokens.DeleteByUser(ctx, id); err != nil {
			return nil, fmt.Errorf("revoke tokens / 吊销令牌失败: %w", err)
		}
	}
	s.record(ctx, security.EventUserStatus, actorID, map[string]any{"user_id": id, "active": active})
	return toUserView(user), nil
}

func (s *adminUserService) ResetPassword(ctx context.Context, actorID, id int64, password string) error {
	if err := s.validator.Var(password, "required,min=8,max=128"); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return mapRepoErr(err)
	}
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password / 密码加密失败: %w", err)
	}
	user.Password = hashed
	user.UpdatedAt = nowUnix(s.now)
	if err := s.users.Update(ctx, user); err != nil {
		return mapRepoErr(err)
	}
	if err := s.tokens.DeleteByUser(ctx, id); err != nil {
		return fmt.Errorf("revoke tokens / 吊销令牌失败: %w", err)
	}
	s.record(ctx, security.EventPasswordReset, actorID, map[string]any{"user_id": id})
	return nil
}

func (s *adminUserService) record(ctx context.Context, kind string, actorID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, security.Event{Kind: kind, ActorID: actorID, Metadata: meta, Occurred: s.now().UTC()})
}
