package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	assert.Equal(t, "The resource was not found.", m.Translate("en-US", "error.not_found"))
	assert.Equal(t, "资源不存在。", m.Translate("zh-CN", "error.not_found"))
	assert.Equal(t, "The resource was not found.", m.Translate("fr-FR", "error.not_found"))
	assert.Equal(t, "missing.key", m.Translate("en-US", "missing.key"))
	assert.Equal(t, "New inquiry from Ann", m.Translate("en-US", "email.inquiry.subject", "Ann"))
}

func TestMatch(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	assert.Equal(t, "zh-CN", m.Match("zh-CN,zh;q=0.9,en;q=0.8"))
	assert.Equal(t, "en-US", m.Match("en-GB"))
	assert.Equal(t, "en-US", m.Match(""))
	assert.Equal(t, []string{"en-US", "zh-CN"}, m.Languages())
}

func TestLoadFromDir(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en-US.json"), []byte(`{"error.not_found":"Nope."}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{`), 0o644))
	require.NoError(t, m.LoadFromDir(dir))
	assert.Equal(t, "Nope.", m.Translate("en-US", "error.not_found"))

	assert.NoError(t, m.LoadFromDir(filepath.Join(dir, "missing")))
}
