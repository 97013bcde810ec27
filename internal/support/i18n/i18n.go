// Package i18n serves translated user-facing messages.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var embeddedLocales embed.FS

// Manager 管理翻译内容。
type Manager struct {
	mu           sync.RWMutex
	defaultLang  string
	translations map[string]map[string]string
	matcher      language.Matcher
	tags         []string
	logger       *slog.Logger
}

// Option 用于配置 Manager。
type Option func(*Manager)

// WithLogger 设置日志实例。
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithDefaultLang 设置默认语言。
func WithDefaultLang(lang string) Option {
	return func(m *Manager) { m.defaultLang = lang }
}

// NewManager loads the embedded locales.
func NewManager(opts ...Option) (*Manager, error) {
	m := &Manager{
		defaultLang:  "en-US",
		translations: make(map[string]map[string]string),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	entries, err := embeddedLocales.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read embedded locales: %w", err)
	}
	for _, entry := range entries {
		data, err := embeddedLocales.ReadFile("locales/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", entry.Name(), err)
		}
		if err := m.merge(strings.TrimSuffix(entry.Name(), ".json"), data); err != nil {
			return nil, err
		}
	}
	m.rebuildMatcher()
	return m, nil
}

// LoadFromDir merges *.json files from dir over the embedded locales.
// A missing directory is not an error.
func (m *Manager) LoadFromDir(dir string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read locales dir: %w", err)
	}
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			m.logger.Warn("skip locale file", "file", file.Name(), "error", err)
			continue
		}
		if err := m.merge(strings.TrimSuffix(file.Name(), ".json"), data); err != nil {
			m.logger.Warn("skip locale file", "file", file.Name(), "error", err)
		}
	}
	m.rebuildMatcher()
	return nil
}

func (m *Manager) merge(lang string, data []byte) error {
	var content map[string]string
	if err := json.Unmarshal(data, &content); err != nil {
		return fmt.Errorf("parse locale %s: %w", lang, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.translations[lang] == nil {
		m.translations[lang] = make(map[string]string, len(content))
	}
	for k, v := range content {
		m.translations[lang][k] = v
	}
	return nil
}

func (m *Manager) rebuildMatcher() {
	m.mu.Lock()
	defer m.mu.Unlock()
	// default language first so the matcher falls back to it
	names := []string{m.defaultLang}
	for lang := range m.translations {
		if lang != m.defaultLang {
			names = append(names, lang)
		}
	}
	sort.Strings(names[1:])
	tags := make([]language.Tag, 0, len(names))
	for _, n := range names {
		tags = append(tags, language.Make(n))
	}
	m.tags = names
	m.matcher = language.NewMatcher(tags)
}

// Match picks the best supported language for an Accept-Language header.
func (m *Manager) Match(acceptLanguage string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return m.defaultLang
	}
	_, idx, _ := m.matcher.Match(prefs...)
	return m.tags[idx]
}

// Translate returns the message for key in lang, falling back to the default
// language and finally to key itself.
func (m *Manager) Translate(lang, key string, args ...any) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, candidate := range []string{lang, m.defaultLang} {
		if val, ok := m.translations[candidate][key]; ok {
			if len(args) > 0 {
				return fmt.Sprintf(val, args...)
			}
			return val
		}
	}
	return key
}

// Languages 返回支持的语言列表。
func (m *Manager) Languages() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.tags...)
}

// GetTranslations returns a copy of the messages for lang, nil when unknown.
func (m *Manager) GetTranslations(lang string) map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src, ok := m.translations[lang]
	if !ok {
		return nil
	}
	return maps.Clone(src)
}
