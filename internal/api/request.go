package api

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// Request describes one call. It is built per call and discarded.
type Request struct {
	Method string
	Path   string
	// Query is flattened into the URL. Empty values are sent as-is; callers
	// omit them before reaching the client.
	Query map[string]string
	// Body is JSON-encoded when non-nil. Write verbs send {} when nil.
	Body    any
	Headers map[string]string
	// BypassAuthRedirect suppresses the credential clear and login redirect
	// a 401 would otherwise trigger.
	BypassAuthRedirect bool
}

// CallOption adjusts a single request.
type CallOption func(*Request)

// BypassAuthRedirect marks the call so a 401 leaves stored credentials alone
// and does not fire the unauthorized handler.
func BypassAuthRedirect() CallOption {
	return func(r *Request) {
		r.BypassAuthRedirect = true
	}
}

// WithHeader sets a header on top of the defaults.
func WithHeader(key, value string) CallOption {
	return func(r *Request) {
		if r.Headers == nil {
			r.Headers = make(map[string]string)
		}
		r.Headers[key] = value
	}
}

func (r Request) method() string {
	method := strings.ToUpper(strings.TrimSpace(r.Method))
	if method == "" {
		return http.MethodGet
	}
	return method
}

func (r Request) encodeQuery() string {
	if len(r.Query) == 0 {
		return ""
	}
	keys := make([]string, 0, len(r.Query))
	for key := range r.Query {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	values := url.Values{}
	for _, key := range keys {
		values.Set(key, r.Query[key])
	}
	return values.Encode()
}

func isWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	default:
		return false
	}
}
