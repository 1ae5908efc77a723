package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grocerymarts/backend/internal/auth"
	"github.com/grocerymarts/backend/internal/config"
	"github.com/grocerymarts/backend/internal/models"
	"github.com/grocerymarts/backend/internal/notify"
	"github.com/grocerymarts/backend/internal/rewards"
)

// newTestServer wires a server with no database; the covered paths are the
// ones that fail validation or authorization before any query runs.
func newTestServer(t *testing.T) (*Server, *auth.TokenManager) {
	t.Helper()

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	notifier := notify.NewNotifier(config.SMTPConfig{}, log.New())
	return NewServer(nil, &config.Config{}, tokens, notifier, rewards.DefaultPolicy()), tokens
}

func TestRegisterValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	cases := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{"name":`},
		{"missing name", `{"email":"a@b.com","password":"longenough"}`},
		{"missing email", `{"name":"A","password":"longenough"}`},
		{"short password", `{"name":"A","email":"a@b.com","password":"abc"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsGarbageToken(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesRejectRegularUsers(t *testing.T) {
	srv, tokens := newTestServer(t)
	router := srv.Router()

	token, err := tokens.Generate(1, models.RoleUser)
	require.NoError(t, err)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/orders/admin/all"},
		{http.MethodGet, "/api/returns/admin/all"},
		{http.MethodGet, "/api/users"},
		{http.MethodPost, "/api/products"},
	}

	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", p.method, p.path)
	}
}

func TestCreateOrderRejectsMalformedBody(t *testing.T) {
	srv, tokens := newTestServer(t)
	router := srv.Router()

	token, err := tokens.Generate(1, models.RoleUser)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"items":`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvalidIDParamRejected(t *testing.T) {
	srv, tokens := newTestServer(t)
	router := srv.Router()

	token, err := tokens.Generate(1, models.RoleUser)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/abc", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateUserRoleRejectsUnknownRole(t *testing.T) {
	srv, tokens := newTestServer(t)
	router := srv.Router()

	token, err := tokens.Generate(1, models.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/users/5/role", strings.NewReader(`{"role":"superuser"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
