package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/rpgroster-go/internal/api/apierr"
	"github.com/mcoot/rpgroster-go/internal/dependencies/mocks"
	"github.com/mcoot/rpgroster-go/internal/services/auth"
	"github.com/mcoot/rpgroster-go/internal/storage/memory"
	"github.com/mcoot/rpgroster-go/internal/testutil"
)

func newAuthService() *auth.Service {
	cfg := auth.DefaultConfig()
	cfg.Secret = []byte("middleware-test")
	cfg.BcryptCost = bcrypt.MinCost
	clock := mocks.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return auth.New(memory.New(), clock, mocks.NewMockIDs(), testutil.NopLogger(), cfg)
}

func TestAuthAcceptsBearerToken(t *testing.T) {
	svc := newAuthService()
	token, err := svc.IssueToken(auth.Claims{UserID: "user-1", Username: "alice", Email: "alice@x.com"})
	require.NoError(t, err)

	var got *auth.Claims
	handler := Auth(svc, apierr.NewWriter(testutil.NopLogger(), false))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = MustGetClaims(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)
}

func TestAuthRejects(t *testing.T) {
	svc := newAuthService()
	handler := Auth(svc, apierr.NewWriter(testutil.NopLogger(), false))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))

	for _, header := range []string{"", "Token abc", "Bearer ", "Bearer garbage"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		var body apierr.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, apierr.CodeUnauthorized, body.Code)
	}
}

func TestRecoveryWritesEnvelope(t *testing.T) {
	handler := Recovery(testutil.NopLogger(), apierr.NewWriter(testutil.NopLogger(), false))(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }),
	)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body apierr.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, apierr.CodeInternalError, body.Code)
}
