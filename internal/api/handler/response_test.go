package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creamcroissant/bakehub/internal/api/requestctx"
	"github.com/creamcroissant/bakehub/internal/service"
	"github.com/creamcroissant/bakehub/internal/support/i18n"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
		key    string
	}{
		{service.ErrNotFound, http.StatusNotFound, "error.not_found"},
		{fmt.Errorf("%w: unknown field bakerId", service.ErrInvalidQuery), http.StatusBadRequest, "error.invalid_query"},
		{fmt.Errorf("%w: bad", service.ErrInvalidInput), http.StatusBadRequest, "error.invalid_input"},
		{service.ErrInvalidStatusTransition, http.StatusConflict, "error.invalid_status_transition"},
		{fmt.Errorf("%w: slug", service.ErrConflict), http.StatusConflict, "error.conflict"},
		{service.ErrRateLimited, http.StatusTooManyRequests, "error.rate_limited"},
		{service.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, "error.payload_too_large"},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError, "error.internal"},
	}
	for _, tc := range cases {
		status, key := statusFor(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.key, key, tc.err.Error())
	}
}

func TestRespondServiceErrorTranslates(t *testing.T) {
	mgr, err := i18n.NewManager()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(requestctx.WithLanguage(req.Context(), "en-US"))
	rec := httptest.NewRecorder()
	respondServiceError(rec, req, "baker.orders", fmt.Errorf("wrapped: %w", service.ErrNotFound), mgr)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "The resource was not found.", body["error"])
	assert.Equal(t, "baker.orders", body["action"])
}

func TestListDescriptorDropsLang(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?lang=zh-CN&sort=-created_date&limit=5&category=wedding", nil)
	desc := listDescriptor(req)
	require.NotNil(t, desc.OrderBy)
	assert.Equal(t, "createdAt", desc.OrderBy.Field)
	require.NotNil(t, desc.Limit)
	assert.Equal(t, 5, *desc.Limit)
	assert.Equal(t, map[string]string{"category": "wedding"}, desc.Filter)
}
