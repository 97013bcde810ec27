package handler

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/creamcroissant/bakehub/internal/query"
	"github.com/creamcroissant/bakehub/internal/service"
)

// 这些参数由中间件消费，不能当作过滤条件传给仓储层。
var reservedParams = []string{"lang"}

var errBadJSON = errors.New("handler: malformed json body / 请求体格式错误")

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(service.ErrInvalidInput, errBadJSON, err)
	}
	return nil
}

// listDescriptor translates the request's query string.
func listDescriptor(r *http.Request) query.Descriptor {
	values := r.URL.Query()
	for _, key := range reservedParams {
		values.Del(key)
	}
	return query.Translate(query.FromValues(values))
}

func parseInt64(raw string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
}

// pathID reads a positive numeric chi URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := parseInt64(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, service.ErrNotFound
	}
	return id, nil
}

func clientMeta(r *http.Request) service.ClientMeta {
	return service.ClientMeta{IP: clientIP(r), UserAgent: r.UserAgent()}
}

// clientIP relies on chi's RealIP having already rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
