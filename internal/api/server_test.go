package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/addressbook/internal/addressbook"
	"github.com/nerrad567/addressbook/internal/infrastructure/config"
	"github.com/nerrad567/addressbook/internal/infrastructure/logging"
)

const testJWTSecret = "test-secret-key-at-least-32-characters-long"

// testServer creates a Server over a fresh manager with auth disabled.
func testServer(t *testing.T) (*Server, *addressbook.Manager) {
	t.Helper()
	return testServerWithSecurity(t, config.SecurityConfig{})
}

func testServerWithSecurity(t *testing.T, sec config.SecurityConfig) (*Server, *addressbook.Manager) {
	t.Helper()

	manager := addressbook.NewManager()
	srv, err := New(Deps{
		Config: config.APIConfig{
			Host:     "127.0.0.1",
			Port:     0,
			Timeouts: config.APITimeoutConfig{Read: 5, Write: 5, Idle: 5},
		},
		WS: config.WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Security: sec,
		Logger:   logging.Discard(),
		Manager:  manager,
		Version:  "test",
	})
	require.NoError(t, err)
	manager.SetNotifier(srv.Hub())

	return srv, manager
}

// do runs one request through the router and returns the recorder.
func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type listContactsResponse struct {
	Book     string            `json:"book"`
	Contacts []contactResponse `json:"contacts"`
	Count    int               `json:"count"`
}

type listBooksResponse struct {
	Books []string `json:"books"`
	Count int      `json:"count"`
}

func TestNew_RequiresDeps(t *testing.T) {
	_, err := New(Deps{Manager: addressbook.NewManager()})
	assert.Error(t, err)

	_, err = New(Deps{Logger: logging.Discard()})
	assert.Error(t, err)
}

func TestHandleHealth(t *testing.T) {
	srv, _ := testServer(t)

	rec := do(t, srv.Handler(), http.MethodGet, "/api/v1/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
	assert.NotContains(t, body, "checks")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

type checkerFunc func(ctx context.Context) error

func (f checkerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

func TestHandleHealth_DegradedBackend(t *testing.T) {
	srv, _ := testServer(t)
	srv.checks = map[string]HealthChecker{
		"mqtt":     checkerFunc(func(context.Context) error { return errors.New("mqtt: client not connected") }),
		"influxdb": checkerFunc(func(context.Context) error { return nil }),
	}

	rec := do(t, srv.Handler(), http.MethodGet, "/api/v1/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "degraded", body["status"])
	checks, ok := body["checks"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ok", checks["influxdb"])
	assert.Equal(t, "mqtt: client not connected", checks["mqtt"])
}

func TestRequestID_Propagated(t *testing.T) {
	srv, _ := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}

func TestBooks_CreateListDelete(t *testing.T) {
	srv, _ := testServer(t)
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/api/v1/books", createBookRequest{Name: "friends"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, bookResponse{Name: "friends"}, decode[bookResponse](t, rec))

	rec = do(t, h, http.MethodGet, "/api/v1/books", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, listBooksResponse{Books: []string{"default", "friends"}, Count: 2}, decode[listBooksResponse](t, rec))

	rec = do(t, h, http.MethodDelete, "/api/v1/books/friends", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Removing an unknown book is not an error.
	rec = do(t, h, http.MethodDelete, "/api/v1/books/friends", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/books/friends/contacts", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBooks_CreateBlankName(t *testing.T) {
	srv, manager := testServer(t)

	rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/books", createBookRequest{Name: "  "})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	apiErr := decode[Error](t, rec)
	assert.Equal(t, ErrCodeValidation, apiErr.Code)
	assert.Equal(t, "Name is mandatory", apiErr.Message)
	assert.Equal(t, []string{"default"}, manager.AddressBooks())
}

func TestBooks_InvalidJSON(t *testing.T) {
	srv, _ := testServer(t)

	rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/books", "{not json")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrCodeBadRequest, decode[Error](t, rec).Code)
}

func TestContacts_AddToBookCreatesBook(t *testing.T) {
	srv, manager := testServer(t)
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/api/v1/books/work/contacts", addContactRequest{Name: "Alice", Phone: "555-0001"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, contactResponse{Name: "Alice", Phone: "555-0001", Book: "work"}, decode[contactResponse](t, rec))
	assert.Contains(t, manager.AddressBooks(), "work")

	rec = do(t, h, http.MethodGet, "/api/v1/books/work/contacts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[listContactsResponse](t, rec)
	assert.Equal(t, "work", got.Book)
	assert.Equal(t, 1, got.Count)
	assert.Equal(t, []contactResponse{{Name: "Alice", Phone: "555-0001", Book: "work"}}, got.Contacts)
}

func TestContacts_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		req     addContactRequest
		wantMsg string
	}{
		{"missing name", addContactRequest{Phone: "555"}, "Name is mandatory"},
		{"blank name", addContactRequest{Name: " \t", Phone: "555"}, "Name is mandatory"},
		{"missing phone", addContactRequest{Name: "Alice"}, "Phone is mandatory"},
		{"both missing", addContactRequest{}, "Name is mandatory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, manager := testServer(t)

			rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/books/new-book/contacts", tt.req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			apiErr := decode[Error](t, rec)
			assert.Equal(t, ErrCodeValidation, apiErr.Code)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			assert.NotContains(t, manager.AddressBooks(), "new-book")
		})
	}
}

func TestContacts_DefaultBookRoutes(t *testing.T) {
	srv, manager := testServer(t)
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/api/v1/contacts", addContactRequest{Name: "Jane Doe", Phone: "1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "default", decode[contactResponse](t, rec).Book)

	rec = do(t, h, http.MethodDelete, "/api/v1/contacts/Jane%20Doe", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	contacts, err := manager.Contacts(addressbook.DefaultBook)
	require.NoError(t, err)
	assert.Equal(t, 0, contacts.Len())
}

func TestContacts_RemoveFromMissingBook(t *testing.T) {
	srv, _ := testServer(t)

	rec := do(t, srv.Handler(), http.MethodDelete, "/api/v1/books/nope/contacts/Alice", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	apiErr := decode[Error](t, rec)
	assert.Equal(t, ErrCodeNotFound, apiErr.Code)
	assert.Equal(t, "Address book not found: nope", apiErr.Message)
}

func TestContacts_RemoveAbsentContactIsNoop(t *testing.T) {
	srv, _ := testServer(t)

	rec := do(t, srv.Handler(), http.MethodDelete, "/api/v1/books/default/contacts/Nobody", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestContacts_AllUnique(t *testing.T) {
	srv, manager := testServer(t)
	for _, add := range []struct{ name, phone, book string }{
		{"Alice", "1", "friends"},
		{"Alice", "2", "family"},
		{"Bob", "3", "friends"},
	} {
		_, err := manager.AddContactTo(addressbook.NewContact(add.name, add.phone), add.book)
		require.NoError(t, err)
	}

	rec := do(t, srv.Handler(), http.MethodGet, "/api/v1/contacts", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[listContactsResponse](t, rec)
	assert.Equal(t, 2, got.Count)
	require.Len(t, got.Contacts, 2)
	assert.Equal(t, "Alice", got.Contacts[0].Name)
	assert.Equal(t, "family", got.Contacts[0].Book)
	assert.Equal(t, "Bob", got.Contacts[1].Name)
}

func TestHandleStats(t *testing.T) {
	srv, manager := testServer(t)
	_, err := manager.AddContactTo(addressbook.NewContact("Alice", "1"), "friends")
	require.NoError(t, err)
	_, err = manager.AddContact(addressbook.NewContact("Alice", "2"))
	require.NoError(t, err)

	rec := do(t, srv.Handler(), http.MethodGet, "/api/v1/stats", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[addressbook.Stats](t, rec)
	assert.Equal(t, 2, stats.Books)
	assert.Equal(t, 2, stats.Contacts)
	assert.Equal(t, 1, stats.UniqueContacts)
	assert.Equal(t, map[string]int{"default": 1, "friends": 1}, stats.ByBook)
}

func TestCORS_Preflight(t *testing.T) {
	srv, _ := testServer(t)
	srv.cfg.CORS.AllowedOrigins = []string{"https://panel.example"}

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/books", nil)
	req.Header.Set("Origin", "https://panel.example")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://panel.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/books", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoveryMiddleware(t *testing.T) {
	srv, _ := testServer(t)
	h := srv.recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := do(t, h, http.MethodGet, "/", nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, ErrCodeInternal, decode[Error](t, rec).Code)
}

func TestBodySizeLimit(t *testing.T) {
	srv, _ := testServer(t)
	big := `{"name":"` + string(bytes.Repeat([]byte("a"), maxRequestBodySize+1)) + `"}`

	rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/books", big)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPathParams_PercentAndSlashInNames(t *testing.T) {
	srv, manager := testServer(t)
	h := srv.Handler()
	for _, name := range []string{"A%41", "AA", "100%", "a/b"} {
		_, err := manager.AddContactTo(addressbook.NewContact(name, "1"), "work")
		require.NoError(t, err)
	}

	has := func(name string) bool {
		set, err := manager.Contacts("work")
		require.NoError(t, err)
		return set.Contains(*addressbook.LookupContact(name))
	}

	rec := do(t, h, http.MethodDelete, "/api/v1/books/work/contacts/A%2541", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, has("A%41"))
	assert.True(t, has("AA"), "literal %41 must not be decoded a second time")

	rec = do(t, h, http.MethodDelete, "/api/v1/books/work/contacts/100%25", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, has("100%"))

	rec = do(t, h, http.MethodDelete, "/api/v1/books/work/contacts/a%2Fb", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, has("a/b"))

	rec = do(t, h, http.MethodPost, "/api/v1/books/50%25off/contacts", addContactRequest{Name: "Zed", Phone: "9"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "50%off", decode[contactResponse](t, rec).Book)

	rec = do(t, h, http.MethodGet, "/api/v1/books/50%25off/contacts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[listContactsResponse](t, rec)
	assert.Equal(t, "50%off", got.Book)
	assert.Equal(t, 1, got.Count)

	rec = do(t, h, http.MethodPost, "/api/v1/books/x%2Fy/contacts", addContactRequest{Name: "Yan", Phone: "8"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, manager.AddressBooks(), "x/y")
}
