// 文件路径: internal/service/auth.go
// 模块说明: 这是 internal 模块里的 auth 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/creamcroissant/bakehub/internal/auth/token"
	"github.com/creamcroissant/bakehub/internal/cache"
	"github.com/creamcroissant/bakehub/internal/repository"
	"github.com/creamcroissant/bakehub/internal/security"
	"github.com/creamcroissant/bakehub/internal/support/hash"
)

// AuthService handles sign-in, bearer verification and refresh-token rotation.
type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	Verify(ctx context.Context, rawToken string) (*Identity, error)
	Refresh(ctx context.Context, refreshToken string, meta ClientMeta) (*LoginResult, error)
	Logout(ctx context.Context, refreshToken string) error
	IssueForUser(ctx context.Context, user *repository.User, meta ClientMeta) (*LoginResult, error)
	Me(ctx context.Context, userID int64) (*Account, error)
}

// ClientMeta describes the calling client for logs and audit.
type ClientMeta struct {
	IP        string
	UserAgent string
}

// LoginInput is the login payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	ClientMeta `json:"-"`
}

// LoginResult returns the issued tokens and the signed-in account.
type LoginResult struct {
	Token            string    `json:"token"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
	Account
}

// Account is the public view of a user and their bakery.
type Account struct {
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	IsAdmin   bool   `json:"is_admin"`
	BakerID   int64  `json:"baker_id,omitempty"`
	BakerSlug string `json:"baker_slug,omitempty"`
}

// Identity is the authenticated caller extracted from a bearer token.
type Identity struct {
	UserID  int64
	Email   string
	IsAdmin bool
	// BakerID is zero for accounts without a bakery (plain admins).
	BakerID int64
}

// AuthOptions wires AuthService dependencies.
type AuthOptions struct {
	Users      repository.UserRepository
	Bakers     repository.BakerRepository
	Settings   repository.SettingRepository
	LoginLogs  repository.LoginLogRepository
	Tokens     repository.TokenRepository
	Hasher     hash.Hasher
	TokenMgr   *token.Manager
	Rate       *security.RateLimiter
	Audit      security.Recorder
	Cache      cache.Store
	LoginLimit int
	RefreshTTL time.Duration
	Now        func() time.Time
}

type authService struct {
	users         repository.UserRepository
	bakers        repository.BakerRepository
	settings      repository.SettingRepository
	loginLogs     repository.LoginLogRepository
	tokens        repository.TokenRepository
	hasher        hash.Hasher
	tokenMgr      *token.Manager
	rate          *security.RateLimiter
	audit         security.Recorder
	loginFailures cache.Store
	loginLimit    int
	refreshTTL    time.Duration
	now           func() time.Time
}

const (
	defaultLoginLimit  = 20
	loginWindow        = time.Minute
	defaultRefreshTTL  = 7 * 24 * time.Hour
	settingFailLimit   = "password_limit_count"
	settingFailExpire  = "password_limit_expire"
	defaultFailLimit   = 5
	defaultFailMinutes = 60
)

// NewAuthService wires repositories and infrastructure helpers.
func NewAuthService(opts AuthOptions) AuthService {
	s := &authService{
		users:      opts.Users,
		bakers:     opts.Bakers,
		settings:   opts.Settings,
		loginLogs:  opts.LoginLogs,
		tokens:     opts.Tokens,
		hasher:     opts.Hasher,
		tokenMgr:   opts.TokenMgr,
		rate:       opts.Rate,
		audit:      opts.Audit,
		loginLimit: opts.LoginLimit,
		refreshTTL: opts.RefreshTTL,
		now:        opts.Now,
	}
	if opts.Cache != nil {
		s.loginFailures = opts.Cache.Namespace("auth").Namespace("password_fail")
	}
	if s.loginLimit <= 0 {
		s.loginLimit = defaultLoginLimit
	}
	if s.refreshTTL <= 0 {
		s.refreshTTL = defaultRefreshTTL
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if s.users == nil || s.tokenMgr == nil || s.hasher == nil {
		return nil, fmt.Errorf("auth service not fully configured / 认证服务未完整配置")
	}
	email := normalizeEmail(input.Email)
	if email == "" || strings.TrimSpace(input.Password) == "" {
		return nil, fmt.Errorf("%w: email and password required / 邮箱和密码不能为空", ErrInvalidInput)
	}

	if s.loginFailureCount(ctx, email) >= s.failLimit(ctx) {
		s.recordLoginLog(ctx, nil, email, false, "password_limit", input.ClientMeta)
		s.recordAudit(ctx, security.EventLoginFailed, 0, input.ClientMeta, map[string]any{"email": email, "reason": "password_limit"})
		return nil, fmt.Errorf("%w: retry after %d minutes / 请在 %d 分钟后重试", ErrRateLimited, s.failMinutes(ctx), s.failMinutes(ctx))
	}
	if s.rate != nil {
		res, err := s.rate.Allow(ctx, security.Key("login", email), s.loginLimit, loginWindow)
		if err != nil {
			return nil, err
		}
		if !res.Allowed {
			s.recordLoginLog(ctx, nil, email, false, "rate_limited", input.ClientMeta)
			return nil, ErrRateLimited
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.bumpLoginFailure(ctx, email)
			s.recordLoginLog(ctx, nil, email, false, "not_found", input.ClientMeta)
			s.recordAudit(ctx, security.EventLoginFailed, 0, input.ClientMeta, map[string]any{"email": email, "reason": "not_found"})
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Compare(user.Password, input.Password); err != nil {
		if errors.Is(err, hash.ErrPasswordMismatch) {
			s.bumpLoginFailure(ctx, email)
			s.recordLoginLog(ctx, user, email, false, "password_mismatch", input.ClientMeta)
			s.recordAudit(ctx, security.EventLoginFailed, user.ID, input.ClientMeta, map[string]any{"reason": "password"})
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.Status != repository.UserStatusActive {
		s.recordLoginLog(ctx, user, email, false, "account_disabled", input.ClientMeta)
		s.recordAudit(ctx, security.EventLoginFailed, user.ID, input.ClientMeta, map[string]any{"reason": "disabled"})
		return nil, ErrAccountDisabled
	}

	if s.hasher.NeedsRehash(user.Password) {
		if rehashed, err := s.hasher.Hash(input.Password); err == nil {
			user.Password = rehashed
		}
	}
	result, err := s.IssueForUser(ctx, user, input.ClientMeta)
	if err != nil {
		return nil, err
	}
	s.touchLogin(ctx, user)
	s.clearLoginFailure(ctx, email)
	s.recordLoginLog(ctx, user, email, true, "success", input.ClientMeta)
	s.recordAudit(ctx, security.EventLogin, user.ID, input.ClientMeta, nil)
	return result, nil
}

func (s *authService) Verify(ctx context.Context, rawToken string) (*Identity, error) {
	raw := strings.TrimSpace(rawToken)
	if raw == "" || s.tokenMgr == nil {
		return nil, ErrUnauthorized
	}
	claims, err := s.tokenMgr.Parse(raw)
	if err != nil {
		return nil, ErrUnauthorized
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrUnauthorized
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if user.Status != repository.UserStatusActive {
		return nil, ErrAccountDisabled
	}
	identity := &Identity{UserID: user.ID, Email: user.Email, IsAdmin: user.IsAdmin}
	if baker := s.bakerOf(ctx, user.ID); baker != nil {
		identity.BakerID = baker.ID
	}
	return identity, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string, meta ClientMeta) (*LoginResult, error) {
	if s.tokens == nil {
		return nil, fmt.Errorf("refresh not supported / 不支持刷新令牌")
	}
	trimmed := strings.TrimSpace(refreshToken)
	if trimmed == "" {
		return nil, ErrInvalidRefreshToken
	}
	record, err := s.tokens.FindByRefreshToken(ctx, trimmed)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	// refresh tokens are single use
	_ = s.tokens.DeleteByRefreshToken(ctx, trimmed)
	if record.Revoked || record.RefreshExpiresAt <= s.now().Unix() {
		return nil, ErrInvalidRefreshToken
	}
	user, err := s.users.FindByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if user.Status != repository.UserStatusActive {
		return nil, ErrAccountDisabled
	}
	if meta.IP == "" {
		meta = ClientMeta{IP: record.IP, UserAgent: record.UserAgent}
	}
	return s.IssueForUser(ctx, user, meta)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	trimmed := strings.TrimSpace(refreshToken)
	if s.tokens == nil || trimmed == "" {
		return nil
	}
	record, err := s.tokens.FindByRefreshToken(ctx, trimmed)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := s.tokens.DeleteByRefreshToken(ctx, trimmed); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	s.recordAudit(ctx, security.EventLogout, record.UserID, ClientMeta{IP: record.IP, UserAgent: record.UserAgent}, nil)
	return nil
}

func (s *authService) IssueForUser(ctx context.Context, user *repository.User, meta ClientMeta) (*LoginResult, error) {
	if user == nil {
		return nil, ErrNotFound
	}
	account := s.account(ctx, user)
	access, claims, err := s.tokenMgr.Issue(token.Subject{UserID: user.ID, Admin: user.IsAdmin, BakerID: account.BakerID})
	if err != nil {
		return nil, err
	}
	result := &LoginResult{
		Token:     access,
		ExpiresAt: claims.ExpiresAt.Time,
		Account:   account,
	}
	if s.tokens == nil {
		return result, nil
	}
	refresh, err := token.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	now := s.now()
	refreshExpires := now.Add(s.refreshTTL)
	if _, err := s.tokens.Create(ctx, &repository.AccessToken{
		UserID:           user.ID,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExpires.Unix(),
		IP:               meta.IP,
		UserAgent:        meta.UserAgent,
		CreatedAt:        now.Unix(),
		UpdatedAt:        now.Unix(),
	}); err != nil {
		return nil, fmt.Errorf("persist refresh token / 保存刷新令牌失败: %w", err)
	}
	result.RefreshToken = refresh
	result.RefreshExpiresAt = refreshExpires
	return result, nil
}

func (s *authService) Me(ctx context.Context, userID int64) (*Account, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	account := s.account(ctx, user)
	return &account, nil
}

func (s *authService) account(ctx context.Context, user *repository.User) Account {
	account := Account{UserID: user.ID, Email: user.Email, Name: user.Name, IsAdmin: user.IsAdmin}
	if baker := s.bakerOf(ctx, user.ID); baker != nil {
		account.BakerID = baker.ID
		account.BakerSlug = baker.Slug
	}
	return account
}

func (s *authService) bakerOf(ctx context.Context, userID int64) *repository.Baker {
	if s.bakers == nil {
		return nil
	}
	baker, err := s.bakers.FindByUserID(ctx, userID)
	if err != nil {
		return nil
	}
	return baker
}

func (s *authService) touchLogin(ctx context.Context, user *repository.User) {
	now := s.now().Unix()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	_ = s.users.Update(ctx, user)
}

func (s *authService) recordLoginLog(ctx context.Context, user *repository.User, email string, success bool, reason string, meta ClientMeta) {
	if s.loginLogs == nil {
		return
	}
	entry := &repository.LoginLog{
		Email:     email,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Success:   success,
		Reason:    reason,
		CreatedAt: s.now().Unix(),
	}
	if user != nil {
		entry.UserID = &user.ID
	}
	_ = s.loginLogs.Create(ctx, entry)
}

func (s *authService) recordAudit(ctx context.Context, kind string, actorID int64, meta ClientMeta, metadata map[string]any) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, security.Event{Kind: kind, ActorID: actorID, IP: meta.IP, UA: meta.UserAgent, Metadata: metadata, Occurred: s.now()})
}

func (s *authService) loginFailureCount(ctx context.Context, email string) int {
	if s.loginFailures == nil {
		return 0
	}
	raw, ok := s.loginFailures.Get(ctx, email)
	if !ok {
		return 0
	}
	if n, ok := raw.(int64); ok {
		return int(n)
	}
	return 0
}

func (s *authService) bumpLoginFailure(ctx context.Context, email string) {
	if s.loginFailures == nil {
		return
	}
	ttl := time.Duration(s.failMinutes(ctx)) * time.Minute
	_, _ = s.loginFailures.Increment(ctx, email, 1, ttl)
}

func (s *authService) clearLoginFailure(ctx context.Context, email string) {
	if s.loginFailures != nil {
		s.loginFailures.Delete(ctx, email)
	}
}

func (s *authService) failLimit(ctx context.Context) int {
	n := intSetting(ctx, s.settings, settingFailLimit, defaultFailLimit)
	if n <= 0 {
		// zero disables the lockout
		return int(^uint(0) >> 1)
	}
	return n
}

func (s *authService) failMinutes(ctx context.Context) int {
	n := intSetting(ctx, s.settings, settingFailExpire, defaultFailMinutes)
	if n <= 0 {
		return defaultFailMinutes
	}
	return n
}

func settingString(ctx context.Context, settings repository.SettingRepository, key, def string) string {
	if settings == nil {
		return def
	}
	setting, err := settings.Get(ctx, key)
	if err != nil || setting == nil {
		return def
	}
	if value := strings.TrimSpace(setting.Value); value != "" {
		return value
	}
	return def
}

func intSetting(ctx context.Context, settings repository.SettingRepository, key string, def int) int {
	if n, err := strconv.Atoi(settingString(ctx, settings, key, "")); err == nil {
		return n
	}
	return def
}

func boolSetting(ctx context.Context, settings repository.SettingRepository, key string, def bool) bool {
	switch strings.ToLower(settingString(ctx, settings, key, "")) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}
