package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeThemes(t *testing.T) {
	list := `
- name: lemon
  display_name: Lemon Drizzle
  primary_color: "#FDE047"
  accent_color: "#854D0E"
- name: cocoa
  display_name: Cocoa
  primary_color: "#78350F"
  accent_color: "#FEF3C7"
  featured: true
`
	themes, err := DecodeThemes(strings.NewReader(list))
	require.NoError(t, err)
	require.Len(t, themes, 2)
	assert.Equal(t, "lemon", themes[0].Name)
	assert.Equal(t, "#FDE047", themes[0].PrimaryColor)
	assert.True(t, themes[1].Featured)

	doc := "themes:\n  - name: rose\n    display_name: Rose\n    primary_color: \"#fda4af\"\n    accent_color: \"#881337\"\n"
	themes, err = DecodeThemes(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, themes, 1)
	assert.Equal(t, "Rose", themes[0].DisplayName)
}

func TestDecodeThemesRejectsBadInput(t *testing.T) {
	for name, body := range map[string]string{
		"empty":  "",
		"scalar": "just text",
		"none":   "themes: []",
		"broken": "- name: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeThemes(strings.NewReader(body))
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
