package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate_EmptyRequest(t *testing.T) {
	desc := Translate(Request{})

	assert.Nil(t, desc.OrderBy)
	assert.Nil(t, desc.Limit)
	assert.Nil(t, desc.Offset)
	require.NotNil(t, desc.Filter)
	assert.Empty(t, desc.Filter)
}

func TestTranslate_SortAliases(t *testing.T) {
	cases := []struct {
		raw       string
		field     string
		direction Direction
	}{
		{"-created_date", "createdAt", Descending},
		{"created_date", "createdAt", Ascending},
		{"-updated_date", "updatedAt", Descending},
		{"theme_name", "themeName", Ascending},
		{"featured", "featured", Ascending},
		{"-price", "price", Descending},
		{"title", "title", Ascending},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			desc := Translate(Request{"sort": tc.raw})
			require.NotNil(t, desc.OrderBy)
			assert.Equal(t, tc.field, desc.OrderBy.Field)
			assert.Equal(t, tc.direction, desc.OrderBy.Direction)
			assert.Empty(t, desc.Filter)
		})
	}
}

func TestTranslate_EmptySortIsIgnored(t *testing.T) {
	assert.Nil(t, Translate(Request{"sort": ""}).OrderBy)
	assert.Nil(t, Translate(Request{"sort": "-"}).OrderBy)
}

func TestTranslate_Paging(t *testing.T) {
	desc := Translate(Request{"limit": "10", "offset": "5"})
	require.NotNil(t, desc.Limit)
	require.NotNil(t, desc.Offset)
	assert.Equal(t, 10, *desc.Limit)
	assert.Equal(t, 5, *desc.Offset)
	assert.Empty(t, desc.Filter)
}

func TestTranslate_InvalidPagingIsOmitted(t *testing.T) {
	desc := Translate(Request{"limit": "abc", "offset": "1.5"})
	assert.Nil(t, desc.Limit)
	assert.Nil(t, desc.Offset)
	assert.Empty(t, desc.Filter)
}

func TestTranslate_NegativePagingPassesThrough(t *testing.T) {
	desc := Translate(Request{"limit": "-1", "offset": "-20"})
	require.NotNil(t, desc.Limit)
	require.NotNil(t, desc.Offset)
	assert.Equal(t, -1, *desc.Limit)
	assert.Equal(t, -20, *desc.Offset)
}

func TestTranslate_FiltersPassThrough(t *testing.T) {
	desc := Translate(Request{"category": "wedding", "featured": "true"})

	assert.Equal(t, map[string]string{"category": "wedding", "featured": "true"}, desc.Filter)
	assert.Nil(t, desc.OrderBy)
}

func TestTranslate_ControlKeysNeverFilter(t *testing.T) {
	inputs := []Request{
		{"sort": "-created_date", "limit": "3", "offset": "x", "status": "pending"},
		{"sort": "", "limit": "", "offset": ""},
		{"limit": "abc", "name": "Ada"},
	}
	for _, req := range inputs {
		desc := Translate(req)
		for _, key := range []string{ParamSort, ParamLimit, ParamOffset} {
			assert.NotContains(t, desc.Filter, key)
		}
	}
}

func TestTranslate_ControlKeysAreCaseSensitive(t *testing.T) {
	desc := Translate(Request{"Sort": "-created_date", "LIMIT": "5"})

	assert.Nil(t, desc.OrderBy)
	assert.Nil(t, desc.Limit)
	assert.Equal(t, map[string]string{"Sort": "-created_date", "LIMIT": "5"}, desc.Filter)
}

func TestTranslate_FilterIsIdempotent(t *testing.T) {
	first := Translate(Request{"category": "wedding", "sort": "-featured", "status": "ready", "limit": "2"})
	second := Translate(Request(first.Filter))

	assert.Equal(t, first.Filter, second.Filter)
	assert.Nil(t, second.OrderBy)
}

func TestTranslate_DoesNotMutateRequest(t *testing.T) {
	req := Request{"sort": "-created_date", "category": "cupcakes"}
	desc := Translate(req)
	desc.Filter["category"] = "changed"

	assert.Equal(t, Request{"sort": "-created_date", "category": "cupcakes"}, req)
}

func TestNewTranslator_ExtraAliases(t *testing.T) {
	tr := NewTranslator(map[string]string{"due_date": "dueDate", " ": "ignored"})

	desc := tr.Translate(Request{"sort": "-due_date"})
	require.NotNil(t, desc.OrderBy)
	assert.Equal(t, OrderBy{Field: "dueDate", Direction: Descending}, *desc.OrderBy)
	assert.Equal(t, "createdAt", tr.Alias("created_date"))

	// the default table is left untouched
	assert.Equal(t, "due_date", DefaultTranslator.Alias("due_date"))
}

func TestFromValues_FirstValueWins(t *testing.T) {
	values := url.Values{"status": {"ready", "pending"}, "empty": {}, "sort": {"-created_date"}}
	req := FromValues(values)

	assert.Equal(t, Request{"status": "ready", "sort": "-created_date"}, req)
}

func TestDescriptor_ValuesRoundTrip(t *testing.T) {
	desc := Translate(Request{"sort": "-createdAt", "limit": "10", "offset": "20", "category": "wedding"})
	back := Translate(FromValues(desc.Values()))

	assert.Equal(t, desc, back)
}
