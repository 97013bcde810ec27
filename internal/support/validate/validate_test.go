package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Slug     string `json:"slug" validate:"required,slug"`
	Color    string `json:"color,omitempty" validate:"omitempty,hexrgb"`
}

func TestBuildRegistersCleanly(t *testing.T) {
	v, err := Build()
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.NoError(t, v.Var("#a1B2c3", "hexrgb"))
	assert.Error(t, v.Var("#fff", "hexrgb"))
	assert.Error(t, v.Var("a1b2c3", "hexrgb"))
}

func TestStructValid(t *testing.T) {
	err := Default().Struct(signup{Email: "a@b.co", Password: "longenough", Slug: "sweet-buns", Color: "#FFaa00"})
	assert.NoError(t, err)
}

func TestStructFieldErrors(t *testing.T) {
	err := Default().Struct(signup{Email: "nope", Password: "short", Slug: "Bad Slug", Color: "red"})
	require.Error(t, err)

	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Len(t, fe, 4)
	assert.Contains(t, fe, "email")
	assert.Contains(t, fe, "password")
	assert.Equal(t, "slug must contain only lowercase letters, digits and single dashes", fe["slug"])
	assert.Equal(t, "color must be a hex color such as #ffaa00", fe["color"])
	assert.NotEmpty(t, err.Error())
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Sweet Buns":       "sweet-buns",
		"  Café & Co.  ":   "caf-co",
		"already-a-slug":   "already-a-slug",
		"--Trim--Dashes--": "trim-dashes",
		"":                 "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slug(in), in)
	}
}
