// Package query turns loose query-string parameters into a normalized list
// descriptor (ordering, paging, equality filters) and compiles it against a
// per-entity field schema.
package query

import (
	"maps"
	"net/url"
	"strconv"
	"strings"
)

// Reserved control parameters. Matching is exact and case-sensitive.
const (
	ParamSort   = "sort"
	ParamLimit  = "limit"
	ParamOffset = "offset"
)

// Direction 表示排序方向。
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// OrderBy is a single (field, direction) ordering pair.
type OrderBy struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// Request is the raw parameter bag received from a client.
type Request map[string]string

// FromValues flattens url.Values into a Request keeping the first value of each key.
func FromValues(values url.Values) Request {
	req := make(Request, len(values))
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		req[key] = vals[0]
	}
	return req
}

// Descriptor is the normalized form consumed by repositories.
type Descriptor struct {
	OrderBy *OrderBy          `json:"order_by,omitempty"`
	Limit   *int              `json:"limit,omitempty"`
	Offset  *int              `json:"offset,omitempty"`
	Filter  map[string]string `json:"filter"`
}

var defaultAliases = map[string]string{
	"created_date": "createdAt",
	"updated_date": "updatedAt",
	"featured":     "featured",
	"theme_name":   "themeName",
}

// Translator maps request parameters onto a Descriptor. It holds no mutable
// state after construction and is safe for concurrent use.
type Translator struct {
	aliases map[string]string
}

// NewTranslator builds a translator using the default sort aliases merged with extra.
func NewTranslator(extra map[string]string) *Translator {
	aliases := maps.Clone(defaultAliases)
	for from, to := range extra {
		from = strings.TrimSpace(from)
		if from == "" || to == "" {
			continue
		}
		aliases[from] = to
	}
	return &Translator{aliases: aliases}
}

// DefaultTranslator uses only the built-in alias table.
var DefaultTranslator = NewTranslator(nil)

// Translate is shorthand for DefaultTranslator.Translate.
func Translate(req Request) Descriptor {
	return DefaultTranslator.Translate(req)
}

// Translate splits control parameters from filters. It never fails: an
// unparsable limit or offset is simply left unset.
func (t *Translator) Translate(req Request) Descriptor {
	desc := Descriptor{Filter: make(map[string]string, len(req))}
	for key, raw := range req {
		switch key {
		case ParamSort:
			desc.OrderBy = t.parseSort(raw)
		case ParamLimit:
			desc.Limit = parseInt(raw)
		case ParamOffset:
			desc.Offset = parseInt(raw)
		default:
			desc.Filter[key] = raw
		}
	}
	return desc
}

// Alias resolves a client sort name to its field name.
func (t *Translator) Alias(name string) string {
	if mapped, ok := t.aliases[name]; ok {
		return mapped
	}
	return name
}

func (t *Translator) parseSort(raw string) *OrderBy {
	direction := Ascending
	name := raw
	if strings.HasPrefix(name, "-") {
		direction = Descending
		name = name[1:]
	}
	if name == "" {
		return nil
	}
	return &OrderBy{Field: t.Alias(name), Direction: direction}
}

func parseInt(raw string) *int {
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &value
}

// Values renders the descriptor back into query parameters, used for paging links.
func (d Descriptor) Values() url.Values {
	values := make(url.Values, len(d.Filter)+3)
	for key, value := range d.Filter {
		values.Set(key, value)
	}
	if d.OrderBy != nil {
		prefix := ""
		if d.OrderBy.Direction == Descending {
			prefix = "-"
		}
		values.Set(ParamSort, prefix+d.OrderBy.Field)
	}
	if d.Limit != nil {
		values.Set(ParamLimit, strconv.Itoa(*d.Limit))
	}
	if d.Offset != nil {
		values.Set(ParamOffset, strconv.Itoa(*d.Offset))
	}
	return values
}
