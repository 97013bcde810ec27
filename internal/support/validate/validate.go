// Package validate wraps go-playground/validator with english messages and
// the project's custom rules.
package validate

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

var (
	slugPattern   = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	hexRGBPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// customRules 是项目自定义的 tag，名字不能与 validator 内置 tag 重复。
var customRules = []struct {
	tag     string
	fn      validator.Func
	message string
}{
	{"slug", isSlug, "{0} must contain only lowercase letters, digits and single dashes"},
	{"hexrgb", isHexRGB, "{0} must be a hex color such as #ffaa00"},
}

// Validator validates request structs.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// FieldErrors maps json field names to readable messages.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fe[k])
	}
	return strings.Join(parts, "; ")
}

// New builds a validator with english translations registered.
// Registration problems are logged; Build reports them instead.
func New() *Validator {
	v, err := Build()
	if err != nil {
		slog.Error("validator setup", "error", err)
	}
	return v
}

// Build is New with registration errors returned. The validator is usable either way.
func Build() (*Validator, error) {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	var errs []error
	if err := enTranslations.RegisterDefaultTranslations(v, trans); err != nil {
		errs = append(errs, fmt.Errorf("default translations: %w", err))
	}
	out := &Validator{validate: v, trans: trans}
	for _, rule := range customRules {
		if err := v.RegisterValidation(rule.tag, rule.fn); err != nil {
			errs = append(errs, fmt.Errorf("rule %s: %w", rule.tag, err))
			continue
		}
		if err := out.addTranslation(rule.tag, rule.message); err != nil {
			errs = append(errs, fmt.Errorf("translation %s: %w", rule.tag, err))
		}
	}
	return out, errors.Join(errs...)
}

var defaultValidator = sync.OnceValue(New)

// Default returns a shared validator.
func Default() *Validator { return defaultValidator() }

// Struct validates s. Validation failures come back as FieldErrors.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Translate(v.trans)
	}
	return out
}

// Var validates a single value against a tag expression.
func (v *Validator) Var(field any, tag string) error {
	return v.validate.Var(field, tag)
}

func (v *Validator) addTranslation(tag, message string) error {
	register := func(t ut.Translator) error {
		return t.Add(tag, message, false)
	}
	translate := func(t ut.Translator, fe validator.FieldError) string {
		msg, err := t.T(fe.Tag(), fe.Field(), fe.Param())
		if err != nil {
			return fe.Error()
		}
		return msg
	}
	return v.validate.RegisterTranslation(tag, v.trans, register, translate)
}

func isSlug(fl validator.FieldLevel) bool {
	return slugPattern.MatchString(fl.Field().String())
}

func isHexRGB(fl validator.FieldLevel) bool {
	return hexRGBPattern.MatchString(fl.Field().String())
}

// Slug lowercases s and collapses runs of non-alphanumerics into single dashes.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if b.Len() > 0 && !dash {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
