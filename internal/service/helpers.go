// 文件路径: internal/service/helpers.go
// 模块说明: 这是 internal 模块里的 helpers 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package service

import (
	"errors"
	"fmt"
	"html"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/creamcroissant/bakehub/internal/query"
	"github.com/creamcroissant/bakehub/internal/repository"
	"github.com/creamcroissant/bakehub/internal/support/validate"
)

// Page is one page of a list endpoint.
type Page[T any] struct {
	Data   []T   `json:"data"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// newPage records the effective paging the store applied.
func newPage[T any](items []T, total int64, desc query.Descriptor, bounds query.Bounds) *Page[T] {
	limit, offset := bounds.Normalize(desc.Limit, desc.Offset)
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Data: items, Total: total, Limit: limit, Offset: offset}
}

// mapRepoErr converts repository sentinels into service sentinels.
func mapRepoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrInvalidQuery):
		return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return err
	}
}

// checkInput runs struct validation and tags failures with ErrInvalidInput.
func checkInput(v *validate.Validator, input any) error {
	if v == nil {
		v = validate.Default()
	}
	if err := v.Struct(input); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

func normalizeEmail(input string) string {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if trimmed == "" {
		return ""
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return ""
	}
	return trimmed
}

// sanitizeHTML keeps user-generated formatting such as links and emphasis.
func sanitizeHTML(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}
	return ugcPolicy().Sanitize(trimmed)
}

const maxSanitizePasses = 4

// sanitizeText strips every tag and returns plain text. Entities are decoded
// only when decoding them cannot reintroduce markup.
func sanitizeText(input string) string {
	text := strings.TrimSpace(input)
	for pass := 0; pass < maxSanitizePasses; pass++ {
		if text == "" {
			return ""
		}
		escaped := strictPolicy().Sanitize(text)
		plain := strings.TrimSpace(html.UnescapeString(escaped))
		if plain == text {
			return plain
		}
		text = plain
	}
	// 仍未收敛时保留转义结果，不输出原始尖括号。
	return strings.TrimSpace(strictPolicy().Sanitize(text))
}

var ugcPolicy = sync.OnceValue(func() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.RequireNoReferrerOnLinks(true)
	policy.AllowURLSchemes("http", "https", "mailto")
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.AddSpaceWhenStrippingTag(true)
	return policy
})

var strictPolicy = sync.OnceValue(bluemonday.StrictPolicy)

func nowUnix(now func() time.Time) int64 {
	if now == nil {
		return time.Now().Unix()
	}
	return now().Unix()
}
