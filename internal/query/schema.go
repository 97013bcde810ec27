package query

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrUnknownField 表示字段不在实体白名单内。
	ErrUnknownField = errors.New("unknown field / 未知字段")
	// ErrInvalidValue 表示过滤值无法转换为字段类型。
	ErrInvalidValue = errors.New("invalid filter value / 过滤值无效")
)

// Kind describes how a filter value is coerced before it reaches SQL.
type Kind int

const (
	KindText Kind = iota
	KindInt
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	default:
		return "text"
	}
}

// Field is one allow-listed attribute of an entity.
type Field struct {
	Name   string
	Column string
	Kind   Kind
}

// Schema lists the fields of one entity that clients may filter and sort on.
type Schema struct {
	entity      string
	fields      []Field
	byName      map[string]Field
	defaultSort OrderBy
}

// NewSchema builds a schema. Fields are reachable by their API name or column name.
func NewSchema(entity string, defaultSort OrderBy, fields ...Field) *Schema {
	s := &Schema{
		entity:      entity,
		fields:      append([]Field(nil), fields...),
		byName:      make(map[string]Field, len(fields)*2),
		defaultSort: defaultSort,
	}
	for _, f := range fields {
		s.byName[f.Name] = f
		if f.Column != "" {
			s.byName[f.Column] = f
		}
	}
	return s
}

// Entity returns the entity name.
func (s *Schema) Entity() string { return s.entity }

// DefaultSort is the ordering applied when the descriptor has none.
func (s *Schema) DefaultSort() OrderBy { return s.defaultSort }

// Fields returns a copy of the allow list.
func (s *Schema) Fields() []Field { return append([]Field(nil), s.fields...) }

// Lookup resolves a field by API name or column name.
func (s *Schema) Lookup(name string) (Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// Bounds caps paging at the persistence layer.
type Bounds struct {
	DefaultLimit int
	MaxLimit     int
}

// DefaultBounds are used when the configuration leaves paging unset.
var DefaultBounds = Bounds{DefaultLimit: 50, MaxLimit: 200}

// Normalize resolves requested paging into effective values.
// Missing, zero or negative limits fall back to the default; limits above
// the max are clamped; negative offsets become zero.
func (b Bounds) Normalize(limit, offset *int) (int, int) {
	def := b.DefaultLimit
	if def <= 0 {
		def = DefaultBounds.DefaultLimit
	}
	maxLimit := b.MaxLimit
	if maxLimit <= 0 {
		maxLimit = DefaultBounds.MaxLimit
	}
	if def > maxLimit {
		def = maxLimit
	}

	effLimit := def
	if limit != nil && *limit > 0 {
		effLimit = *limit
	}
	if effLimit > maxLimit {
		effLimit = maxLimit
	}
	effOffset := 0
	if offset != nil && *offset > 0 {
		effOffset = *offset
	}
	return effLimit, effOffset
}

// Scope is a condition always applied by the caller, such as tenant ownership.
type Scope struct {
	Column string
	Value  any
}

// Compiled is a parameterized SQL fragment derived from a Descriptor.
type Compiled struct {
	Conditions []string
	Args       []any
	Order      string
	Limit      int
	Offset     int
}

// Where renders " WHERE a = ? AND b = ?" or an empty string.
func (c Compiled) Where() string {
	if len(c.Conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.Conditions, " AND ")
}

// Tail renders the ORDER BY, LIMIT and OFFSET clauses.
func (c Compiled) Tail() string {
	var b strings.Builder
	if c.Order != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(c.Order)
	}
	fmt.Fprintf(&b, " LIMIT %d OFFSET %d", c.Limit, c.Offset)
	return b.String()
}

// Compile validates the descriptor against the schema and builds SQL clauses.
// Filters are emitted in key order so the output is deterministic.
func (s *Schema) Compile(desc Descriptor, bounds Bounds, scopes ...Scope) (Compiled, error) {
	var out Compiled
	for _, scope := range scopes {
		out.Conditions = append(out.Conditions, scope.Column+" = ?")
		out.Args = append(out.Args, scope.Value)
	}

	keys := make([]string, 0, len(desc.Filter))
	for key := range desc.Filter {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		field, ok := s.Lookup(key)
		if !ok {
			return Compiled{}, fmt.Errorf("%w: %s.%s", ErrUnknownField, s.entity, key)
		}
		value, err := coerce(field, desc.Filter[key])
		if err != nil {
			return Compiled{}, err
		}
		out.Conditions = append(out.Conditions, field.Column+" = ?")
		out.Args = append(out.Args, value)
	}

	order := s.defaultSort
	if desc.OrderBy != nil {
		order = *desc.OrderBy
	}
	if order.Field != "" {
		field, ok := s.Lookup(order.Field)
		if !ok {
			return Compiled{}, fmt.Errorf("%w: %s.%s", ErrUnknownField, s.entity, order.Field)
		}
		dir := "ASC"
		if order.Direction == Descending {
			dir = "DESC"
		}
		// id breaks ties so pages stay stable.
		out.Order = field.Column + " " + dir
		if field.Column != "id" {
			out.Order += ", id " + dir
		}
	}

	out.Limit, out.Offset = bounds.Normalize(desc.Limit, desc.Offset)
	return out, nil
}

func coerce(field Field, raw string) (any, error) {
	switch field.Kind {
	case KindInt:
		value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects an integer", ErrInvalidValue, field.Name)
		}
		return value, nil
	case KindBool:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "1", "true", "yes", "on":
			return 1, nil
		case "0", "false", "no", "off":
			return 0, nil
		}
		return nil, fmt.Errorf("%w: %s expects a boolean", ErrInvalidValue, field.Name)
	default:
		return raw, nil
	}
}
