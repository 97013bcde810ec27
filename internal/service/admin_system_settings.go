package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/creamcroissant/bakehub/internal/repository"
	"github.com/creamcroissant/bakehub/internal/security"
)

// AdminSettingsService 负责系统设置读写。
type AdminSettingsService interface {
	List(ctx context.Context) ([]SettingView, error)
	Get(ctx context.Context, key string) (*SettingView, error)
	Set(ctx context.Context, actorID int64, key, value string) (*SettingView, error)
}

// SettingView is one setting as shown to admins. Secret values are masked.
type SettingView struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	Category  string `json:"category"`
	Kind      string `json:"kind"`
	Secret    bool   `json:"secret,omitempty"`
	UpdatedAt int64  `json:"updated_at,omitempty"`
}

type settingDef struct {
	category string
	kind     string
	def      string
	secret   bool
	readOnly bool
}

// SettingSigningKey holds the generated JWT signing key when none is configured.
const SettingSigningKey = "auth_signing_key"

var knownSettings = map[string]settingDef{
	settingRegistrationOpen: {category: "site", kind: "bool", def: "true"},
	"site_name":             {category: "site", kind: "text", def: "BakeHub"},
	settingFailLimit:        {category: "security", kind: "int", def: strconv.Itoa(defaultFailLimit)},
	settingFailExpire:       {category: "security", kind: "int", def: strconv.Itoa(defaultFailMinutes)},
	SettingSigningKey:       {category: "security", kind: "text", secret: true, readOnly: true},
}

// AdminSettingsOptions 注入系统设置服务依赖。
type AdminSettingsOptions struct {
	Settings repository.SettingRepository
	Audit    security.Recorder
	Now      func() time.Time
}

type adminSettingsService struct {
	settings repository.SettingRepository
	audit    security.Recorder
	now      func() time.Time
}

const settingMaskVisibleSuffix = 4

// NewAdminSettingsService 构建系统设置服务。
func NewAdminSettingsService(opts AdminSettingsOptions) AdminSettingsService {
	nowFn := opts.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	return &adminSettingsService{settings: opts.Settings, audit: opts.Audit, now: nowFn}
}

// List returns every known setting, filling in defaults for unset keys.
func (s *adminSettingsService) List(ctx context.Context) ([]SettingView, error) {
	rows, err := s.settings.List(ctx)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	stored := make(map[string]*repository.Setting, len(rows))
	for _, row := range rows {
		stored[row.Key] = row
	}
	out := make([]SettingView, 0, len(knownSettings))
	for key, def := range knownSettings {
		out = append(out, settingView(key, def, stored[key]))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

func (s *adminSettingsService) Get(ctx context.Context, key string) (*SettingView, error) {
	key = strings.TrimSpace(key)
	def, ok := knownSettings[key]
	if !ok {
		return nil, fmt.Errorf("%w: unknown setting %q", ErrNotFound, key)
	}
	row, err := s.settings.Get(ctx, key)
	if err != nil && !isRepoNotFound(err) {
		return nil, mapRepoErr(err)
	}
	view := settingView(key, def, row)
	return &view, nil
}

// Set validates value against the setting's kind before storing it.
func (s *adminSettingsService) Set(ctx context.Context, actorID int64, key, value string) (*SettingView, error) {
	key = strings.TrimSpace(key)
	def, ok := knownSettings[key]
	if !ok {
		return nil, fmt.Errorf("%w: unknown setting %q", ErrNotFound, key)
	}
	if def.readOnly {
		return nil, fmt.Errorf("%w: setting %q is read-only / 该设置只读", ErrForbidden, key)
	}
	normalized, err := normalizeSetting(def.kind, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidInput, key, err)
	}
	row := &repository.Setting{Key: key, Value: normalized, Category: def.category, UpdatedAt: nowUnix(s.now)}
	if err := s.settings.Upsert(ctx, row); err != nil {
		return nil, mapRepoErr(err)
	}
	if s.audit != nil {
		s.audit.Record(ctx, security.Event{
			Kind:     security.EventSettingChange,
			ActorID:  actorID,
			Metadata: map[string]any{"key": key, "value": normalized},
			Occurred: s.now().UTC(),
		})
	}
	view := settingView(key, def, row)
	return &view, nil
}

func normalizeSetting(kind, value string) (string, error) {
	value = strings.TrimSpace(value)
	switch kind {
	case "bool":
		switch strings.ToLower(value) {
		case "1", "true", "yes", "on":
			return "true", nil
		case "0", "false", "no", "off":
			return "false", nil
		}
		return "", fmt.Errorf("expected a boolean, got %q", value)
	case "int":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return "", fmt.Errorf("expected a non-negative integer, got %q", value)
		}
		return strconv.Itoa(n), nil
	default:
		if len(value) > 255 {
			return "", fmt.Errorf("value too long")
		}
		return sanitizeText(value), nil
	}
}

func settingView(key string, def settingDef, row *repository.Setting) SettingView {
	view := SettingView{Key: key, Value: def.def, Category: def.category, Kind: def.kind, Secret: def.secret}
	if row != nil {
		view.Value = row.Value
		view.UpdatedAt = row.UpdatedAt
	}
	if def.secret {
		view.Value = maskSecret(view.Value)
	}
	return view
}

func maskSecret(value string) string {
	if len(value) <= settingMaskVisibleSuffix {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", len(value)-settingMaskVisibleSuffix) + value[len(value)-settingMaskVisibleSuffix:]
}

func isRepoNotFound(err error) bool {
	return mapRepoErr(err) == ErrNotFound
}
