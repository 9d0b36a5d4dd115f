package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"nestadmin/internal/logging"
	"nestadmin/internal/storage"
)

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	client, err := New(baseURL, opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return nil
}

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestNewRejectsRelativeBaseURL(t *testing.T) {
	for _, raw := range []string{"", "nellenest.example", "ftp://host", "/users"} {
		if _, err := New(raw); err == nil {
			t.Fatalf("expected error for base url %q", raw)
		}
	}
}

func TestDefaultHeadersAndBearerToken(t *testing.T) {
	var gotAuth, gotType, gotAccept, gotRequestID, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotAccept = r.Header.Get("Accept")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer server.Close()

	store := storage.NewMemoryStore()
	client := newTestClient(t, server.URL, WithCredentialStore(store), WithUserAgent("nestadmin-test"))

	if err := client.Get(context.Background(), "/admin/dashboard", nil, nil); err != nil {
		t.Fatalf("get: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no Authorization header without a token, got %q", gotAuth)
	}
	if gotType != "application/json" || gotAccept != "application/json" {
		t.Fatalf("unexpected default headers: content-type=%q accept=%q", gotType, gotAccept)
	}
	if gotRequestID == "" {
		t.Fatal("expected X-Request-ID header")
	}
	if gotAgent != "nestadmin-test" {
		t.Fatalf("unexpected user agent %q", gotAgent)
	}

	if err := store.Set(storage.KeyAuthToken, "abc.def.ghi"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if err := client.Get(context.Background(), "/admin/dashboard", nil, nil); err != nil {
		t.Fatalf("get: %v", err)
	}
	if gotAuth != "Bearer abc.def.ghi" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
}

func TestHeaderOverrideMergesOnTop(t *testing.T) {
	var gotAccept, gotExtra string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotExtra = r.Header.Get("X-Extra")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	err := client.Get(context.Background(), "/files", nil, nil,
		WithHeader("Accept", "text/plain"),
		WithHeader("X-Extra", "1"),
	)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if gotAccept != "text/plain" || gotExtra != "1" {
		t.Fatalf("overrides not applied: accept=%q extra=%q", gotAccept, gotExtra)
	}
}

func TestGetEncodesQueryAndDecodesBody(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `{"users":[{"_id":"u1"}]}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	var out struct {
		Users []map[string]string `json:"users"`
	}
	query := map[string]string{"page": "2", "search": "calm mind"}
	if err := client.Get(context.Background(), "/admin/users", query, &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if gotQuery != "page=2&search=calm+mind" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
	if len(out.Users) != 1 || out.Users[0]["_id"] != "u1" {
		t.Fatalf("unexpected body %#v", out)
	}
}

func TestWriteVerbsSendJSONBody(t *testing.T) {
	type seen struct {
		method string
		body   string
	}
	var calls []seen
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		calls = append(calls, seen{method: r.Method, body: string(data)})
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()
	payload := map[string]string{"name": "Breathe"}
	if err := client.Post(ctx, "/admin/courses", payload, nil); err != nil {
		t.Fatalf("post: %v", err)
	}
	if err := client.Put(ctx, "/admin/courses/1", payload, nil); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := client.Patch(ctx, "/admin/courses/1", nil, nil); err != nil {
		t.Fatalf("patch: %v", err)
	}
	if err := client.Delete(ctx, "/admin/courses/1", nil); err != nil {
		t.Fatalf("delete: %v", err)
	}

	want := []seen{
		{http.MethodPost, `{"name":"Breathe"}`},
		{http.MethodPut, `{"name":"Breathe"}`},
		{http.MethodPatch, `{}`},
		{http.MethodDelete, ``},
	}
	if len(calls) != len(want) {
		t.Fatalf("expected %d calls, got %d", len(want), len(calls))
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("call %d: got %+v want %+v", i, calls[i], want[i])
		}
	}
}

func TestDoReturnsNilForNoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	raw, err := client.Do(context.Background(), Request{Method: http.MethodDelete, Path: "/files/1"})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if raw != nil {
		t.Fatalf("expected nil body, got %s", raw)
	}
}

func TestDoSendsBodyForDelete(t *testing.T) {
	var got map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = io.WriteString(w, `{"success":true}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	raw, err := client.Do(context.Background(), Request{
		Method: http.MethodDelete,
		Path:   "/admin/users/bulk/delete",
		Body:   map[string][]string{"userIds": {"a", "b"}},
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if string(raw) != `{"success":true}` {
		t.Fatalf("unexpected raw body %s", raw)
	}
	if len(got["userIds"]) != 2 {
		t.Fatalf("body not delivered: %#v", got)
	}
}

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    Kind
		message string
		target  error
	}{
		{"forbidden", http.StatusForbidden, `{"message":"nope"}`, KindForbidden, MessageForbidden, ErrForbidden},
		{"not found", http.StatusNotFound, ``, KindNotFound, MessageNotFound, ErrNotFound},
		{"validation with message", http.StatusUnprocessableEntity, `{"message":"Name is required"}`, KindValidation, "Name is required", ErrValidation},
		{"validation default", http.StatusUnprocessableEntity, `not json`, KindValidation, MessageValidation, ErrValidation},
		{"server", http.StatusInternalServerError, `{"message":"boom"}`, KindServer, MessageServer, ErrServer},
		{"other with message", http.StatusBadRequest, `{"message":"Email already registered"}`, KindUnknown, "Email already registered", ErrUnknown},
		{"other default", http.StatusBadGateway, ``, KindUnknown, MessageDefault, ErrUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			client := newTestClient(t, server.URL, WithSleeper((&sleepRecorder{}).sleep))
			err := client.Get(context.Background(), "/admin/courses", nil, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if apiErr.Kind != tt.kind {
				t.Fatalf("kind = %v, want %v", apiErr.Kind, tt.kind)
			}
			if apiErr.Message != tt.message {
				t.Fatalf("message = %q, want %q", apiErr.Message, tt.message)
			}
			if apiErr.Status != tt.status {
				t.Fatalf("status = %d, want %d", apiErr.Status, tt.status)
			}
			if !errors.Is(err, tt.target) {
				t.Fatalf("errors.Is(%v) = false", tt.target)
			}
			if calls != 1 {
				t.Fatalf("http errors must not be retried, got %d calls", calls)
			}
		})
	}
}

func TestValidationFieldDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"message":"Invalid course","errors":[{"param":"name","msg":"required"},{"field":"difficulty","message":"unknown level"}]}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	err := client.Post(context.Background(), "/admin/courses", map[string]string{}, nil)
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Fields["name"] != "required" || apiErr.Fields["difficulty"] != "unknown level" {
		t.Fatalf("unexpected fields %#v", apiErr.Fields)
	}
	if !strings.Contains(err.Error(), "name: required") {
		t.Fatalf("error text should include field details, got %q", err.Error())
	}
}

func TestUnauthorizedClearsCredentialsAndRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	store := storage.NewMemoryStore()
	_ = store.Set(storage.KeyAuthToken, "abc.def.ghi")
	_ = store.Set(storage.KeyUserData, `{"name":"Ada"}`)
	redirects := 0
	client := newTestClient(t, server.URL,
		WithCredentialStore(store),
		WithUnauthorizedHandler(func(context.Context) { redirects++ }),
	)

	err := client.Get(context.Background(), "/admin/users", nil, nil)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err.Error() != MessageUnauthorized {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if redirects != 1 {
		t.Fatalf("expected one redirect, got %d", redirects)
	}
	for _, key := range []string{storage.KeyAuthToken, storage.KeyUserData} {
		if _, ok, _ := store.Get(key); ok {
			t.Fatalf("expected %s to be cleared", key)
		}
	}
}

func TestUnauthorizedBypassKeepsCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	store := storage.NewMemoryStore()
	_ = store.Set(storage.KeyAuthToken, "abc.def.ghi")
	redirects := 0
	client := newTestClient(t, server.URL,
		WithCredentialStore(store),
		WithUnauthorizedHandler(func(context.Context) { redirects++ }),
	)

	err := client.Get(context.Background(), "/users/me", nil, nil, BypassAuthRedirect())
	if KindOf(err) != KindUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if redirects != 0 {
		t.Fatalf("bypass must not redirect, got %d", redirects)
	}
	if token, ok, _ := store.Get(storage.KeyAuthToken); !ok || token != "abc.def.ghi" {
		t.Fatalf("bypass must keep the token, got %q ok=%v", token, ok)
	}
}

func TestConnectionFailuresRetryWithLinearDelay(t *testing.T) {
	calls := 0
	doer := doerFunc(func(req *http.Request) (*http.Response, error) {
		calls++
		if calls < 3 {
			return nil, &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
		}
		return jsonResponse(http.StatusOK, `{"ok":true}`), nil
	})
	recorder := &sleepRecorder{}
	client := newTestClient(t, "https://api.test",
		WithHTTPClient(doer),
		WithRetry(3, 100*time.Millisecond),
		WithSleeper(recorder.sleep),
	)

	var out map[string]bool
	if err := client.Get(context.Background(), "/admin/dashboard", nil, &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if !out["ok"] {
		t.Fatalf("unexpected body %#v", out)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}
	if len(recorder.delays) != len(want) {
		t.Fatalf("delays = %v, want %v", recorder.delays, want)
	}
	for i := range want {
		if recorder.delays[i] != want[i] {
			t.Fatalf("delays = %v, want %v", recorder.delays, want)
		}
	}
}

func TestRetryExhaustionSurfacesNetworkError(t *testing.T) {
	calls := 0
	cause := &net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET}
	doer := doerFunc(func(req *http.Request) (*http.Response, error) {
		calls++
		return nil, cause
	})
	recorder := &sleepRecorder{}
	client := newTestClient(t, "https://api.test",
		WithHTTPClient(doer),
		WithRetry(3, time.Second),
		WithSleeper(recorder.sleep),
	)

	err := client.Get(context.Background(), "/admin/dashboard", nil, nil)
	if KindOf(err) != KindNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
	if err.Error() != MessageNetwork {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, syscall.ECONNRESET) {
		t.Fatalf("expected the last transport error to be wrapped, got %v", err)
	}
	if calls != 4 {
		t.Fatalf("expected 1 attempt plus 3 retries, got %d", calls)
	}
	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}
	for i := range want {
		if i >= len(recorder.delays) || recorder.delays[i] != want[i] {
			t.Fatalf("delays = %v, want %v", recorder.delays, want)
		}
	}
}

func TestTimeoutIsNotRetried(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL,
		WithTimeout(50*time.Millisecond),
		WithSleeper((&sleepRecorder{}).sleep),
	)
	err := client.Get(context.Background(), "/admin/dashboard", nil, nil)
	if KindOf(err) != KindTimeout {
		t.Fatalf("expected timeout, got %v", err)
	}
	if err.Error() != MessageTimeout {
		t.Fatalf("unexpected message %q", err.Error())
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("timeouts must not be retried, got %d calls", calls)
	}
}

func TestCallerCancellationIsNetworkError(t *testing.T) {
	calls := 0
	doer := doerFunc(func(req *http.Request) (*http.Response, error) {
		calls++
		return nil, req.Context().Err()
	})
	client := newTestClient(t, "https://api.test", WithHTTPClient(doer), WithSleeper((&sleepRecorder{}).sleep))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := client.Get(ctx, "/admin/dashboard", nil, nil)
	if KindOf(err) != KindNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("cancellation must not be retried, got %d calls", calls)
	}
}

func TestInvalidJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	err := client.Get(context.Background(), "/admin/dashboard", nil, nil)
	if KindOf(err) != KindUnknown {
		t.Fatalf("expected unknown kind, got %v", err)
	}
	if !errors.Is(err, ErrUnknown) {
		t.Fatalf("expected ErrUnknown, got %v", err)
	}
}

func TestRequestIDFromContextIsForwarded(t *testing.T) {
	var got string
	client := newTestClient(t, "http://backend.test", WithHTTPClient(doerFunc(func(req *http.Request) (*http.Response, error) {
		got = req.Header.Get("X-Request-ID")
		return jsonResponse(http.StatusOK, `{}`), nil
	})))

	ctx := logging.WithRequestID(context.Background(), "req-7")
	if err := client.Get(ctx, "/users/me", nil, nil); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "req-7" {
		t.Fatalf("expected forwarded request id, got %q", got)
	}
}
